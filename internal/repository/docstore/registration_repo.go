// Package docstore stores registration records in a DocumentStore.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"symposium/internal/domain"
)

// Collection is where registration records live, keyed by identity.
const Collection = "registrations"

// Document field names.
const (
	FieldIdentity  = "identity"
	FieldEmail     = "email"
	FieldEvents    = "events"
	FieldCreatedAt = "created_at"
)

type registrationRepository struct {
	store domain.DocumentStore
	now   func() time.Time
}

// NewRegistrationRepository returns a RegistrationRepository backed by store.
func NewRegistrationRepository(store domain.DocumentStore) domain.RegistrationRepository {
	return &registrationRepository{store: store, now: time.Now}
}

func (r *registrationRepository) Get(ctx context.Context, identity string) (*domain.RegistrationRecord, error) {
	doc, err := r.store.Get(ctx, Collection, identity)
	if err != nil {
		return nil, err
	}
	return decodeRecord(identity, doc)
}

// Merge appends names to the identity's record, creating it on first use. A concurrent first
// commit that wins the create race is handled by falling back to the append. added comes from
// the store's own write, so two devices merging the same name never both see it as new.
func (r *registrationRepository) Merge(ctx context.Context, identity, email string, names []string) (*domain.RegistrationRecord, []string, error) {
	ctx, span := otel.Tracer("symposium/docstore").Start(ctx, "registrations.merge")
	defer span.End()
	span.SetAttributes(attribute.String("identity.id", identity), attribute.Int("merge.names", len(names)))

	names = domain.NewSelectionSet(names...).Names()

	_, err := r.store.Get(ctx, Collection, identity)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created := r.now().UTC().Truncate(time.Second)
		doc := domain.Document{
			FieldIdentity:  identity,
			FieldEmail:     email,
			FieldEvents:    names,
			FieldCreatedAt: created.Format(time.RFC3339),
		}
		err = r.store.Create(ctx, Collection, identity, doc)
		if err == nil {
			span.SetAttributes(attribute.Int("merge.added", len(names)))
			return &domain.RegistrationRecord{Identity: identity, Email: email, Events: names, CreatedAt: &created}, names, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, nil, fmt.Errorf("create registration: %w", err)
		}
	case err != nil:
		return nil, nil, fmt.Errorf("get registration: %w", err)
	}

	var added []string
	if len(names) > 0 {
		added, err = r.store.AppendToSet(ctx, Collection, identity, FieldEvents, names)
		if err != nil {
			return nil, nil, fmt.Errorf("append registration events: %w", err)
		}
		added = domain.NewSelectionSet(added...).Names()
	}
	span.SetAttributes(attribute.Int("merge.added", len(added)))
	rec, err := r.Get(ctx, identity)
	if err != nil {
		return nil, nil, fmt.Errorf("reload registration: %w", err)
	}
	return rec, added, nil
}

func decodeRecord(identity string, doc domain.Document) (*domain.RegistrationRecord, error) {
	rec := &domain.RegistrationRecord{Identity: identity}
	if v, ok := doc[FieldEmail].(string); ok {
		rec.Email = v
	}
	events, err := stringSlice(doc[FieldEvents])
	if err != nil {
		return nil, fmt.Errorf("decode registration %q: %w", identity, err)
	}
	rec.Events = domain.NewSelectionSet(events...).Names()
	if v, ok := doc[FieldCreatedAt].(string); ok && v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			rec.CreatedAt = &t
		}
	}
	return rec, nil
}

func stringSlice(v any) ([]string, error) {
	switch vals := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return vals, nil
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("events entry has type %T", item)
			}
			out = append(out, s)
		}
		sort.Strings(out)
		return out, nil
	default:
		return nil, fmt.Errorf("events field has type %T", v)
	}
}
