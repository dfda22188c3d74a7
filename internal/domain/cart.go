package domain

import "context"

// Totals are derived on every read and never persisted.
// swagger:model Totals
type Totals struct {
	AlreadyPaid   int64 `json:"amount_already_paid"`
	AmountPending int64 `json:"amount_pending"`
	Count         int   `json:"total_event_count"`
}

// CartViews is what the Events, Cart and Register pages render.
// swagger:model CartViews
type CartViews struct {
	CartEvents       []*EventRecord `json:"cart_events"`
	RegisteredEvents []*EventRecord `json:"registered_events"`
	Totals           Totals         `json:"totals"`
}

// CommitResult describes a successful cart commit.
// swagger:model CommitResult
type CommitResult struct {
	Registered SelectionSet `json:"registered" swaggertype:"array,string"`
	Committed  []string     `json:"committed"`
	Charged    int64        `json:"charged"`
}

// CartService is the single entry point presentation layers use to read and mutate a visitor's cart.
// identity is nil for anonymous visitors.
type CartService interface {
	Views(ctx context.Context, visitorID string, identity *Identity) (*CartViews, error)
	Add(ctx context.Context, visitorID string, identity *Identity, name string) (*CartViews, error)
	Remove(ctx context.Context, visitorID string, identity *Identity, name string) (*CartViews, error)
	Commit(ctx context.Context, visitorID string, identity *Identity) (*CommitResult, error)
}
