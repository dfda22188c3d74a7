package domain

import (
	"context"
	"encoding/json"
	"sort"
)

// SelectionSet is an unordered set of event names.
type SelectionSet map[string]struct{}

// NewSelectionSet builds a set from names, ignoring duplicates.
func NewSelectionSet(names ...string) SelectionSet {
	s := make(SelectionSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s SelectionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s SelectionSet) Len() int { return len(s) }

// Names returns the members sorted, so output is deterministic.
func (s SelectionSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s SelectionSet) Clone() SelectionSet {
	c := make(SelectionSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

// Union returns a new set holding the members of s and other.
func (s SelectionSet) Union(other SelectionSet) SelectionSet {
	u := s.Clone()
	for n := range other {
		u[n] = struct{}{}
	}
	return u
}

// Minus returns a new set holding the members of s that are not in other.
func (s SelectionSet) Minus(other SelectionSet) SelectionSet {
	d := make(SelectionSet)
	for n := range s {
		if !other.Has(n) {
			d[n] = struct{}{}
		}
	}
	return d
}

// Equal reports whether both sets hold the same names.
func (s SelectionSet) Equal(other SelectionSet) bool {
	if len(s) != len(other) {
		return false
	}
	for n := range s {
		if !other.Has(n) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted JSON array of strings.
func (s SelectionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON decodes a JSON array of strings.
func (s *SelectionSet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	*s = NewSelectionSet(names...)
	return nil
}

// KeyValueStore is the flat per-browser persistence used by the selection store.
type KeyValueStore interface {
	// ReadString returns the stored value and whether the key exists.
	ReadString(ctx context.Context, key string) (string, bool, error)
	WriteString(ctx context.Context, key, value string) error
}

// SelectionStore holds the unpaid event names chosen by one visitor.
type SelectionStore interface {
	Load(ctx context.Context) SelectionSet
	Add(ctx context.Context, name string, registered SelectionSet) (SelectionSet, error)
	Remove(ctx context.Context, name string, registered SelectionSet) (SelectionSet, error)
	Replace(ctx context.Context, set SelectionSet) error
	Clear(ctx context.Context) error
}
