package services

import (
	"sort"

	"symposium/internal/domain"
)

// ComputeViews derives the cart, registered list and totals from the catalog, the visitor's
// cached selection and the identity's confirmed registrations.
//
// A name that is both selected and registered only counts as registered, so an event paid for
// elsewhere never shows up as pending. Names missing from the catalog contribute nothing.
func ComputeViews(catalog domain.Catalog, selection, registered domain.SelectionSet) *domain.CartViews {
	views := &domain.CartViews{
		CartEvents:       []*domain.EventRecord{},
		RegisteredEvents: []*domain.EventRecord{},
	}
	for _, e := range catalog.Events() {
		switch {
		case registered.Has(e.Name):
			views.RegisteredEvents = append(views.RegisteredEvents, e)
			views.Totals.AlreadyPaid += e.Price
		case selection.Has(e.Name):
			views.CartEvents = append(views.CartEvents, e)
			views.Totals.AmountPending += e.Price
		}
	}
	views.Totals.Count = selection.Union(registered).Len()
	return views
}

// PendingNames returns the selected names that are not yet registered, sorted.
func PendingNames(selection, registered domain.SelectionSet) []string {
	return selection.Minus(registered).Names()
}

// AmountFor sums the catalog price of names. Unknown names are ignored.
func AmountFor(catalog domain.Catalog, names []string) int64 {
	var total int64
	for _, n := range names {
		if e, ok := catalog.Lookup(n); ok {
			total += e.Price
		}
	}
	return total
}

// NormalizeSelection rewrites raw names to their catalog spelling, matching case-insensitively.
// Names with no catalog match are dropped and returned sorted in dropped.
func NormalizeSelection(catalog domain.Catalog, raw domain.SelectionSet) (normalized domain.SelectionSet, dropped []string) {
	normalized = domain.NewSelectionSet()
	for name := range raw {
		canon, ok := catalog.Canonical(name)
		if !ok {
			dropped = append(dropped, name)
			continue
		}
		normalized[canon] = struct{}{}
	}
	sort.Strings(dropped)
	return normalized, dropped
}
