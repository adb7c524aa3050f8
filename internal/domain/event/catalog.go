package event

import "fmt"

// Catalog maps event-kind names to their stored identifiers. It is built once
// at startup from the event_kinds relation and passed to whichever component
// needs it; it never changes afterwards.
type Catalog struct {
	idByKind map[Kind]int64
	kindByID map[int64]Kind
}

func NewCatalog(idByKind map[Kind]int64) (*Catalog, error) {
	if len(idByKind) == 0 {
		return nil, fmt.Errorf("catalog cannot be empty")
	}

	c := &Catalog{
		idByKind: make(map[Kind]int64, len(idByKind)),
		kindByID: make(map[int64]Kind, len(idByKind)),
	}
	for kind, id := range idByKind {
		if !kind.Valid() {
			return nil, fmt.Errorf("catalog kind %q is unknown", kind)
		}
		if existing, ok := c.kindByID[id]; ok {
			return nil, fmt.Errorf("catalog id %d assigned to both %s and %s", id, existing, kind)
		}
		c.idByKind[kind] = id
		c.kindByID[id] = kind
	}

	for _, kind := range Kinds() {
		if _, ok := c.idByKind[kind]; !ok {
			return nil, fmt.Errorf("catalog is missing kind %s", kind)
		}
	}

	return c, nil
}

// DefaultCatalog assigns sequential ids in declaration order. The memory
// repositories and tests use it; production loads ids from the store.
func DefaultCatalog() *Catalog {
	idByKind := make(map[Kind]int64, len(Kinds()))
	for i, kind := range Kinds() {
		idByKind[kind] = int64(i + 1)
	}
	c, err := NewCatalog(idByKind)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) IDFor(kind Kind) (int64, error) {
	id, ok := c.idByKind[kind]
	if !ok {
		return 0, fmt.Errorf("kind %q is not in the catalog", kind)
	}
	return id, nil
}

func (c *Catalog) KindFor(id int64) (Kind, error) {
	kind, ok := c.kindByID[id]
	if !ok {
		return "", fmt.Errorf("kind id %d is not in the catalog", id)
	}
	return kind, nil
}
