package domain

import (
	"context"
	"time"
)

// RegistrationRecord is the durable, per-identity set of paid event names.
// Events only ever grow: names are appended, never removed.
// swagger:model RegistrationRecord
type RegistrationRecord struct {
	Identity  string     `json:"identity"`
	Email     string     `json:"email"`
	Events    []string   `json:"events"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// EventSet returns the registered names as a set.
func (r *RegistrationRecord) EventSet() SelectionSet {
	if r == nil {
		return NewSelectionSet()
	}
	return NewSelectionSet(r.Events...)
}

// Document is a schemaless record held by a DocumentStore.
type Document map[string]any

// DocumentStore is the minimal document database contract the registration store relies on.
type DocumentStore interface {
	// Get returns ErrNotFound when no document exists for key.
	Get(ctx context.Context, collection, key string) (Document, error)
	// Create returns ErrAlreadyExists when a document already exists for key.
	Create(ctx context.Context, collection, key string, fields Document) error
	// AppendToSet adds values to the array field, skipping values already present, and returns
	// the values this call added. Concurrent calls never both report the same value.
	// Returns ErrNotFound when no document exists for key.
	AppendToSet(ctx context.Context, collection, key, field string, values []string) (added []string, err error)
}

// RegistrationRepository reads and merges registration records.
type RegistrationRepository interface {
	// Get returns ErrNotFound when the identity has never committed.
	Get(ctx context.Context, identity string) (*RegistrationRecord, error)
	// Merge creates the record when absent or appends names to it. It returns the persisted
	// record and the names this call registered; names already in the record are not in added.
	Merge(ctx context.Context, identity, email string, names []string) (rec *RegistrationRecord, added []string, err error)
}
