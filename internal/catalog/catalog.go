// Package catalog holds the immutable list of events offered at the symposium.
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"symposium/internal/domain"
)

// Catalog is built once at process start and never mutated afterwards.
// Returned records are shared and must be treated as read-only.
type Catalog struct {
	events   []*domain.EventRecord
	byName   map[string]*domain.EventRecord
	byFolded map[string]string
}

var _ domain.Catalog = (*Catalog)(nil)

// New validates events and builds a Catalog. IDs and names must be unique, and names must stay
// unique after case folding so that loose lookups resolve to exactly one event.
func New(events []*domain.EventRecord) (*Catalog, error) {
	c := &Catalog{
		events:   make([]*domain.EventRecord, 0, len(events)),
		byName:   make(map[string]*domain.EventRecord, len(events)),
		byFolded: make(map[string]string, len(events)),
	}
	ids := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event id %q", domain.ErrInvalidInput, e.ID)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate event name %q", domain.ErrInvalidInput, e.Name)
		}
		key := Fold(e.Name)
		if other, dup := c.byFolded[key]; dup {
			return nil, fmt.Errorf("%w: event names %q and %q differ only in case", domain.ErrInvalidInput, other, e.Name)
		}
		rec := *e
		ids[rec.ID] = struct{}{}
		c.events = append(c.events, &rec)
		c.byName[rec.Name] = &rec
		c.byFolded[key] = rec.Name
	}
	return c, nil
}

// Events returns every event in catalog order.
func (c *Catalog) Events() []*domain.EventRecord {
	out := make([]*domain.EventRecord, len(c.events))
	copy(out, c.events)
	return out
}

// ByCategory returns the events of one category in catalog order.
func (c *Catalog) ByCategory(cat domain.Category) []*domain.EventRecord {
	var out []*domain.EventRecord
	for _, e := range c.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	if out == nil {
		out = []*domain.EventRecord{}
	}
	return out
}

// Lookup finds an event by exact name.
func (c *Catalog) Lookup(name string) (*domain.EventRecord, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Canonical maps any casing of an event name to the catalog's spelling.
func (c *Catalog) Canonical(name string) (string, bool) {
	if _, ok := c.byName[name]; ok {
		return name, true
	}
	canon, ok := c.byFolded[Fold(name)]
	return canon, ok
}

// Len returns the number of events.
func (c *Catalog) Len() int { return len(c.events) }

// Fold returns the comparison key for loose name matching.
func Fold(name string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}
