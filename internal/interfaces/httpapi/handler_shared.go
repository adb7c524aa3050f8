package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/dtrask/scorebook/internal/domain/event"
	"github.com/dtrask/scorebook/internal/domain/gameteam"
	"github.com/dtrask/scorebook/internal/usecase"
)

func decodeRequest(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type identityDTO struct {
	PlayerID       string `json:"playerId,omitempty"`
	ExternalName   string `json:"externalName,omitempty"`
	ExternalNumber string `json:"externalNumber,omitempty"`
}

func (d identityDTO) toDomain() event.Identity {
	return event.Identity{
		PlayerID:       d.PlayerID,
		ExternalName:   d.ExternalName,
		ExternalNumber: d.ExternalNumber,
	}
}

func identityToDTO(v event.Identity) identityDTO {
	return identityDTO{
		PlayerID:       v.PlayerID,
		ExternalName:   v.ExternalName,
		ExternalNumber: v.ExternalNumber,
	}
}

type eventDTO struct {
	ID               string            `json:"id"`
	GameID           string            `json:"gameId"`
	GameTeamID       string            `json:"gameTeamId"`
	Kind             string            `json:"kind"`
	Player           *identityDTO      `json:"player,omitempty"`
	Position         string            `json:"position,omitempty"`
	Period           string            `json:"period"`
	PeriodSecond     int               `json:"periodSecond"`
	RecordedByUserID string            `json:"recordedByUserId,omitempty"`
	ParentEventID    string            `json:"parentEventId,omitempty"`
	ConflictID       string            `json:"conflictId,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAtUTC     string            `json:"createdAtUtc"`
}

func eventToDTO(v event.GameEvent) eventDTO {
	dto := eventDTO{
		ID:               v.ID,
		GameID:           v.GameID,
		GameTeamID:       v.GameTeamID,
		Kind:             string(v.Kind),
		Position:         v.Position,
		Period:           v.Period,
		PeriodSecond:     v.PeriodSecond,
		RecordedByUserID: v.RecordedByUserID,
		ParentEventID:    v.ParentEventID,
		ConflictID:       v.ConflictID,
		Metadata:         v.Metadata,
		CreatedAtUTC:     v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !v.Player.IsZero() {
		player := identityToDTO(v.Player)
		dto.Player = &player
	}
	return dto
}

func eventsToDTOs(events []event.GameEvent) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, eventToDTO(e))
	}
	return out
}

type conflictGroupDTO struct {
	ConflictID string     `json:"conflictId"`
	Events     []eventDTO `json:"events"`
}

func conflictGroupToDTO(v usecase.ConflictGroup) conflictGroupDTO {
	return conflictGroupDTO{
		ConflictID: v.ConflictID,
		Events:     eventsToDTOs(v.Events),
	}
}

type gameTeamDTO struct {
	ID          string `json:"id"`
	GameID      string `json:"gameId"`
	TeamID      string `json:"teamId"`
	Name        string `json:"name"`
	Formation   string `json:"formation,omitempty"`
	FinalScore  int    `json:"finalScore"`
	PlayedAtUTC string `json:"playedAtUtc"`
}

func gameTeamToDTO(v gameteam.GameTeam) gameTeamDTO {
	return gameTeamDTO{
		ID:          v.ID,
		GameID:      v.GameID,
		TeamID:      v.TeamID,
		Name:        v.Name,
		Formation:   v.Formation,
		FinalScore:  v.FinalScore,
		PlayedAtUTC: v.PlayedAt.UTC().Format(time.RFC3339),
	}
}

type periodResultDTO struct {
	Boundary eventDTO   `json:"boundary"`
	Entries  []eventDTO `json:"entries"`
}

func periodResultToDTO(v usecase.PeriodResult) periodResultDTO {
	return periodResultDTO{
		Boundary: eventToDTO(v.Boundary),
		Entries:  eventsToDTOs(v.Entries),
	}
}
