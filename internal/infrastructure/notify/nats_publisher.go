package notify

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/nats-io/nats.go"
	"github.com/panjf2000/ants/v2"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/platform/logging"
	"github.com/dtrask/scorebook/internal/platform/resilience"
	"github.com/dtrask/scorebook/internal/usecase"
)

type NATSNotifierConfig struct {
	URL            string
	SubjectPrefix  string
	Workers        int
	ConnectTimeout time.Duration
	Breaker        resilience.CircuitBreakerConfig
}

// NATSNotifier fans change messages out to NATS, one subject per game, so
// connected scorekeepers converge without polling. Publishes run on a worker
// pool: a slow broker never stalls the mutation path, and the breaker stops
// hammering a broker that keeps failing.
type NATSNotifier struct {
	conn          *nats.Conn
	subjectPrefix string
	pool          *ants.Pool
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewNATSNotifier(cfg NATSNotifierConfig, logger *logging.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = logging.Default()
	}
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, crerr.New("nats url is required")
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.SubjectPrefix), ".")
	if prefix == "" {
		prefix = "scorebook.games"
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}

	conn, err := nats.Connect(url,
		nats.Name("scorebook"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "connect nats")
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		conn.Close()
		return nil, crerr.Wrap(err, "create notifier worker pool")
	}

	breaker := resilience.NormalizeCircuitBreakerConfig(cfg.Breaker)

	return &NATSNotifier{
		conn:          conn,
		subjectPrefix: prefix,
		pool:          pool,
		breaker:       resilience.NewCircuitBreaker(breaker.FailureThreshold, breaker.OpenTimeout, breaker.HalfOpenMaxReq),
		logger:        logger,
	}, nil
}

// Publish encodes the message and hands it to the pool. The returned error
// covers encoding and admission only; broker failures are recorded on the
// breaker and logged by the worker.
func (n *NATSNotifier) Publish(ctx context.Context, msg usecase.ChangeMessage) error {
	if err := n.breaker.Allow(); err != nil {
		return crerr.Wrap(err, "change feed circuit")
	}

	subject := n.subjectFor(msg.GameID)
	body, err := sonic.Marshal(changePayloadFrom(msg))
	if err != nil {
		return crerr.Wrap(err, "encode change message")
	}

	if err := n.pool.Submit(func() {
		if err := n.conn.Publish(subject, body); err != nil {
			n.breaker.RecordFailure()
			n.logger.WarnContext(ctx, "publish change message failed",
				"subject", subject,
				"action", string(msg.Action),
				"error", err,
			)
			return
		}
		n.breaker.RecordSuccess()
	}); err != nil {
		return crerr.Wrap(err, "submit change message")
	}

	return nil
}

// Close drains in-flight publishes before shutting the connection.
func (n *NATSNotifier) Close() {
	n.pool.Release()
	if err := n.conn.Drain(); err != nil {
		n.logger.Warn("drain nats connection failed", "error", err)
	}
}

func (n *NATSNotifier) subjectFor(gameID string) string {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return n.subjectPrefix + ".unrouted"
	}
	return n.subjectPrefix + "." + sanitizeToken(gameID)
}

// sanitizeToken keeps game ids safe as subject tokens: NATS treats '.', '*'
// and '>' as structural.
func sanitizeToken(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ':
			return '-'
		default:
			return r
		}
	}, raw)
}

type changePayload struct {
	Action         string           `json:"action"`
	GameID         string           `json:"gameId"`
	Event          *eventPayload    `json:"event,omitempty"`
	DeletedEventID string           `json:"deletedEventId,omitempty"`
	Conflict       *conflictPayload `json:"conflict,omitempty"`
}

type conflictPayload struct {
	ConflictID string         `json:"conflictId"`
	Events     []eventPayload `json:"events"`
}

type eventPayload struct {
	ID               string            `json:"id"`
	GameID           string            `json:"gameId"`
	GameTeamID       string            `json:"gameTeamId"`
	Kind             string            `json:"kind"`
	PlayerID         string            `json:"playerId,omitempty"`
	ExternalName     string            `json:"externalName,omitempty"`
	ExternalNumber   string            `json:"externalNumber,omitempty"`
	Position         string            `json:"position,omitempty"`
	Period           string            `json:"period"`
	PeriodSecond     int               `json:"periodSecond"`
	RecordedByUserID string            `json:"recordedByUserId,omitempty"`
	ParentEventID    string            `json:"parentEventId,omitempty"`
	ConflictID       string            `json:"conflictId,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

func changePayloadFrom(msg usecase.ChangeMessage) changePayload {
	payload := changePayload{
		Action:         string(msg.Action),
		GameID:         msg.GameID,
		DeletedEventID: msg.DeletedEventID,
	}
	if msg.Event != nil {
		e := eventPayloadFrom(*msg.Event)
		payload.Event = &e
	}
	if msg.Conflict != nil {
		conflict := conflictPayload{
			ConflictID: msg.Conflict.ConflictID,
			Events:     make([]eventPayload, 0, len(msg.Conflict.Events)),
		}
		for _, e := range msg.Conflict.Events {
			conflict.Events = append(conflict.Events, eventPayloadFrom(e))
		}
		payload.Conflict = &conflict
	}
	return payload
}

func eventPayloadFrom(e event.GameEvent) eventPayload {
	return eventPayload{
		ID:               e.ID,
		GameID:           e.GameID,
		GameTeamID:       e.GameTeamID,
		Kind:             string(e.Kind),
		PlayerID:         e.Player.PlayerID,
		ExternalName:     e.Player.ExternalName,
		ExternalNumber:   e.Player.ExternalNumber,
		Position:         e.Position,
		Period:           e.Period,
		PeriodSecond:     e.PeriodSecond,
		RecordedByUserID: e.RecordedByUserID,
		ParentEventID:    e.ParentEventID,
		ConflictID:       e.ConflictID,
		Metadata:         e.Metadata,
		CreatedAt:        e.CreatedAt,
	}
}
