package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"symposium/internal/domain"
)

const tracerName = "symposium/services"

// CartSession is the cart state of one visitor. It is created on the visitor's first request,
// bound to at most one identity at a time, and thrown away when the registry expires it.
//
// All operations are serialized by mu. Commit is additionally single-flight: a second commit,
// or a switch to another identity, is rejected while one is running.
type CartSession struct {
	visitorID     string
	catalog       domain.Catalog
	selection     domain.SelectionStore
	registrations domain.RegistrationRepository
	profiles      domain.ProfileOracle
	emails        domain.EmailService
	logger        *slog.Logger
	metrics       *Metrics

	committing atomic.Bool
	boundID    atomic.Pointer[string]

	mu         sync.Mutex
	bound      bool
	identity   *domain.Identity
	registered domain.SelectionSet
}

func newCartSession(
	visitorID string,
	catalog domain.Catalog,
	selection domain.SelectionStore,
	registrations domain.RegistrationRepository,
	profiles domain.ProfileOracle,
	emails domain.EmailService,
	logger *slog.Logger,
	metrics *Metrics,
) *CartSession {
	return &CartSession{
		visitorID:     visitorID,
		catalog:       catalog,
		selection:     selection,
		registrations: registrations,
		profiles:      profiles,
		emails:        emails,
		logger:        logger.With("visitor_id", visitorID),
		metrics:       metrics,
		registered:    domain.NewSelectionSet(),
	}
}

func identityID(identity *domain.Identity) string {
	if identity == nil {
		return ""
	}
	return identity.ID
}

// enter locks the session for identity. Callers must call s.mu.Unlock when done.
func (s *CartSession) enter(ctx context.Context, identity *domain.Identity) error {
	if s.committing.Load() {
		if bound := s.boundID.Load(); bound == nil || *bound != identityID(identity) {
			return domain.ErrCommitInProgress
		}
	}
	s.mu.Lock()
	if err := s.bindLocked(ctx, identity); err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

// bindLocked switches the session to identity. On a change the cached registrations are
// dropped, re-fetched for the new identity, and the selection is re-normalized against them.
func (s *CartSession) bindLocked(ctx context.Context, identity *domain.Identity) error {
	if s.bound && identityID(s.identity) == identityID(identity) {
		return nil
	}
	s.bound = false
	s.identity = nil
	s.registered = domain.NewSelectionSet()
	s.boundID.Store(nil)

	registered := domain.NewSelectionSet()
	if identity != nil {
		rec, err := s.registrations.Get(ctx, identity.ID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("fetch registrations: %w", err)
		default:
			registered = rec.EventSet()
		}
	}

	id := identityID(identity)
	s.identity = identity
	s.registered = registered
	s.bound = true
	s.boundID.Store(&id)
	s.logger.DebugContext(ctx, "cart session bound", "identity", id, "registered", registered.Len())

	s.normalizeLocked(ctx)
	return nil
}

// normalizeLocked rewrites the cached selection to catalog spelling, drops unknown names and
// names already registered, and persists the result when it changed.
func (s *CartSession) normalizeLocked(ctx context.Context) {
	raw := s.selection.Load(ctx)
	normalized, dropped := NormalizeSelection(s.catalog, raw)
	normalized = normalized.Minus(s.registered)
	if normalized.Equal(raw) {
		return
	}
	if len(dropped) > 0 {
		s.logger.InfoContext(ctx, "dropped unknown events from selection", "names", dropped)
	}
	if err := s.selection.Replace(ctx, normalized); err != nil {
		s.logger.WarnContext(ctx, "persist normalized selection failed", "err", err)
	}
}

func (s *CartSession) viewsLocked(ctx context.Context) *domain.CartViews {
	return ComputeViews(s.catalog, s.selection.Load(ctx), s.registered)
}

// Views returns the derived cart, registered list and totals.
func (s *CartSession) Views(ctx context.Context, identity *domain.Identity) (*domain.CartViews, error) {
	if err := s.enter(ctx, identity); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.viewsLocked(ctx), nil
}

// Add selects the event. name may use any casing; it is stored under the catalog spelling.
func (s *CartSession) Add(ctx context.Context, identity *domain.Identity, name string) (*domain.CartViews, error) {
	canon, ok := s.catalog.Canonical(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, name)
	}
	if err := s.enter(ctx, identity); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if _, err := s.selection.Add(ctx, canon, s.registered); err != nil {
		return nil, err
	}
	s.metrics.cartMutation("add")
	return s.viewsLocked(ctx), nil
}

// Remove deselects the event. Registered events cannot be removed.
func (s *CartSession) Remove(ctx context.Context, identity *domain.Identity, name string) (*domain.CartViews, error) {
	if canon, ok := s.catalog.Canonical(name); ok {
		name = canon
	}
	if err := s.enter(ctx, identity); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	if _, err := s.selection.Remove(ctx, name, s.registered); err != nil {
		return nil, err
	}
	s.metrics.cartMutation("remove")
	return s.viewsLocked(ctx), nil
}

// Commit moves every pending selection into the identity's registration record.
//
// Preconditions are checked before any write. The record update is an additive union, so
// retrying after a failure, or a duplicate submission that slips through, never removes or
// duplicates a name. Once dispatched the commit ignores request cancellation.
func (s *CartSession) Commit(ctx context.Context, identity *domain.Identity) (*domain.CommitResult, error) {
	if identity == nil {
		s.metrics.commit("unauthenticated")
		return nil, domain.ErrUnauthenticated
	}
	if !s.committing.CompareAndSwap(false, true) {
		s.metrics.commit("in_progress")
		return nil, domain.ErrCommitInProgress
	}
	defer s.committing.Store(false)

	ctx = context.WithoutCancel(ctx)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cart.commit")
	defer span.End()
	span.SetAttributes(attribute.String("identity.id", identity.ID))

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.commitLocked(ctx, identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.commit(commitOutcome(err))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("commit.events", len(res.Committed)),
		attribute.Int64("commit.charged", res.Charged),
	)
	s.metrics.commit("success")
	s.metrics.charged(res.Charged)
	return res, nil
}

func (s *CartSession) commitLocked(ctx context.Context, identity *domain.Identity) (*domain.CommitResult, error) {
	if err := s.bindLocked(ctx, identity); err != nil {
		return nil, &domain.CommitError{Cause: err}
	}

	complete, err := s.profiles.IsProfileComplete(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("check profile: %w", err)
	}
	if !complete {
		return nil, domain.ErrProfileIncomplete
	}

	toRegister := PendingNames(s.selection.Load(ctx), s.registered)
	if len(toRegister) == 0 {
		return nil, domain.ErrNothingToPay
	}

	rec, added, err := s.registrations.Merge(ctx, identity.ID, identity.Email, toRegister)
	if err != nil {
		s.logger.ErrorContext(ctx, "commit failed", "identity", identity.ID, "events", toRegister, "err", err)
		return nil, &domain.CommitError{Cause: err}
	}

	s.registered = s.registered.Union(rec.EventSet()).Union(domain.NewSelectionSet(toRegister...))
	if err := s.selection.Clear(ctx); err != nil {
		// Already-registered names are excluded from the cart, so a stale cache cannot double charge.
		s.logger.WarnContext(ctx, "clear selection after commit failed", "err", err)
	}

	// Another device bound to the same identity may have registered some of these first.
	// Only names this merge actually added are charged.
	if len(added) == 0 {
		s.logger.InfoContext(ctx, "commit added nothing", "identity", identity.ID, "events", toRegister)
		return nil, domain.ErrNothingToPay
	}
	charged := AmountFor(s.catalog, added)
	s.logger.InfoContext(ctx, "commit succeeded", "identity", identity.ID, "events", added, "charged", charged)
	s.sendConfirmation(ctx, identity, added, charged)

	return &domain.CommitResult{
		Registered: s.registered.Clone(),
		Committed:  added,
		Charged:    charged,
	}, nil
}

func (s *CartSession) sendConfirmation(ctx context.Context, identity *domain.Identity, committed []string, charged int64) {
	if s.emails == nil || identity.Email == "" {
		return
	}
	events := make([]*domain.EventRecord, 0, len(committed))
	for _, n := range committed {
		if e, ok := s.catalog.Lookup(n); ok {
			events = append(events, e)
		}
	}
	data := &domain.RegistrationConfirmedEmailData{
		Email:      identity.Email,
		Committed:  events,
		Registered: s.registered.Names(),
		Charged:    FormatAmount(charged),
	}
	if err := s.emails.SendRegistrationConfirmed(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation email failed", "identity", identity.ID, "err", err)
	}
}

// Registered returns a copy of the registered set of the bound identity.
func (s *CartSession) Registered() domain.SelectionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered.Clone()
}

func commitOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrProfileIncomplete):
		return "profile_incomplete"
	case errors.Is(err, domain.ErrNothingToPay):
		return "nothing_to_pay"
	case errors.Is(err, domain.ErrCommitFailed):
		return "failed"
	default:
		return "error"
	}
}

// FormatAmount renders minor units as rupees, e.g. 9900 -> "₹99.00".
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s₹%d.%02d", sign, minor/100, minor%100)
}
