package domain

import "fmt"

// Category classifies a catalog event.
type Category string

const (
	CategoryTechnical Category = "technical"
	CategoryWorkshop  Category = "workshop"
	CategoryPaper     Category = "paper"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategoryWorkshop, CategoryPaper:
		return true
	}
	return false
}

// EventRecord is an offerable symposium event. Name is the join key used by both the
// selection store and the registration store, so it must be unique and stable.
// swagger:model EventRecord
type EventRecord struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    Category `json:"category" yaml:"category"`
	Price       int64    `json:"price" yaml:"price"` // minor currency units, 0 = free
	Description string   `json:"description,omitempty" yaml:"description"`
	Day         int      `json:"day,omitempty" yaml:"day"`
}

// Validate checks the fields a catalog entry must carry.
func (e *EventRecord) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if e.Name == "" {
		return fmt.Errorf("%w: event %q has no name", ErrInvalidInput, e.ID)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: event %q has unknown category %q", ErrInvalidInput, e.Name, e.Category)
	}
	if e.Price < 0 {
		return fmt.Errorf("%w: event %q has negative price", ErrInvalidInput, e.Name)
	}
	return nil
}

// Catalog is the read-only list of offerable events.
type Catalog interface {
	// Events returns all events in catalog order.
	Events() []*EventRecord
	// Lookup finds an event by its exact, case-sensitive name.
	Lookup(name string) (*EventRecord, bool)
	// Canonical resolves a loosely written name (any casing, surrounding spaces) to the catalog name.
	Canonical(name string) (string, bool)
}
