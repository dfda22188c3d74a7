// Package selection persists the events a visitor has picked but not yet paid for.
package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"symposium/internal/domain"
)

const keyPrefix = "selection:"

// Key returns the storage key for a visitor's selection.
func Key(visitorID string) string {
	return keyPrefix + visitorID
}

// Store reads and writes one visitor's selection through a flat key-value store.
// Every mutation writes the whole set back before returning.
type Store struct {
	kv     domain.KeyValueStore
	key    string
	logger *slog.Logger
}

var _ domain.SelectionStore = (*Store)(nil)

// NewStore returns the selection store for visitorID.
func NewStore(kv domain.KeyValueStore, visitorID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, key: Key(visitorID), logger: logger}
}

// Load returns the persisted set. Missing, unreadable or corrupt storage yields an empty set.
func (s *Store) Load(ctx context.Context) domain.SelectionSet {
	raw, ok, err := s.kv.ReadString(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, "read selection failed, starting empty", "key", s.key, "err", err)
		return domain.NewSelectionSet()
	}
	if !ok || raw == "" {
		return domain.NewSelectionSet()
	}
	set, err := Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt selection", "key", s.key, "err", err)
		return domain.NewSelectionSet()
	}
	return set
}

// Add inserts name unless it is already selected or registered.
func (s *Store) Add(ctx context.Context, name string, registered domain.SelectionSet) (domain.SelectionSet, error) {
	set := s.Load(ctx)
	if set.Has(name) || registered.Has(name) {
		return set, nil
	}
	set[name] = struct{}{}
	if err := s.write(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// Remove deletes name if present. Registered names cannot be removed.
func (s *Store) Remove(ctx context.Context, name string, registered domain.SelectionSet) (domain.SelectionSet, error) {
	if registered.Has(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrRegisteredImmutable, name)
	}
	set := s.Load(ctx)
	if !set.Has(name) {
		return set, nil
	}
	delete(set, name)
	if err := s.write(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}

// Replace overwrites the persisted set.
func (s *Store) Replace(ctx context.Context, set domain.SelectionSet) error {
	return s.write(ctx, set)
}

// Clear empties the set. Only called after a successful commit.
func (s *Store) Clear(ctx context.Context) error {
	return s.write(ctx, domain.NewSelectionSet())
}

func (s *Store) write(ctx context.Context, set domain.SelectionSet) error {
	raw, err := Encode(set)
	if err != nil {
		return err
	}
	if err := s.kv.WriteString(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// Encode serializes a set as a JSON array of strings.
func Encode(set domain.SelectionSet) (string, error) {
	b, err := json.Marshal(set.Names())
	if err != nil {
		return "", fmt.Errorf("encode selection: %w", err)
	}
	return string(b), nil
}

// Decode parses a JSON array of strings. Any other shape is reported as ErrCorruptLocalState.
func Decode(raw string) (domain.SelectionSet, error) {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptLocalState, err)
	}
	return domain.NewSelectionSet(names...), nil
}
