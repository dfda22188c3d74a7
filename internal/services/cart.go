package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"symposium/internal/domain"
	"symposium/internal/selection"
)

// DefaultSessionIdleTimeout is how long an untouched cart session stays in memory.
const DefaultSessionIdleTimeout = 2 * time.Hour

type cartService struct {
	catalog       domain.Catalog
	kv            domain.KeyValueStore
	registrations domain.RegistrationRepository
	profiles      domain.ProfileOracle
	emails        domain.EmailService
	logger        *slog.Logger
	metrics       *Metrics

	mu          sync.Mutex
	sessions    *gocache.Cache
	pinned      map[string]*pinnedSession
	idleTimeout time.Duration
}

// pinnedSession holds a session with a commit in flight. Idle expiry of the cache entry
// must not hand the visitor a fresh session that would accept a second commit.
type pinnedSession struct {
	sess *CartSession
	refs int
}

// NewCartService creates the CartService. Sessions are keyed by visitor ID and expire after
// idleTimeout without use; the selection itself outlives them in kv.
func NewCartService(
	catalog domain.Catalog,
	kv domain.KeyValueStore,
	registrations domain.RegistrationRepository,
	profiles domain.ProfileOracle,
	emails domain.EmailService,
	idleTimeout time.Duration,
	logger *slog.Logger,
	metrics *Metrics,
) domain.CartService {
	return newCartService(catalog, kv, registrations, profiles, emails, idleTimeout, logger, metrics)
}

func newCartService(
	catalog domain.Catalog,
	kv domain.KeyValueStore,
	registrations domain.RegistrationRepository,
	profiles domain.ProfileOracle,
	emails domain.EmailService,
	idleTimeout time.Duration,
	logger *slog.Logger,
	metrics *Metrics,
) *cartService {
	if idleTimeout <= 0 {
		idleTimeout = DefaultSessionIdleTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{
		catalog:       catalog,
		kv:            kv,
		registrations: registrations,
		profiles:      profiles,
		emails:        emails,
		logger:        logger,
		metrics:       metrics,
		sessions:      gocache.New(idleTimeout, idleTimeout/2),
		pinned:        make(map[string]*pinnedSession),
		idleTimeout:   idleTimeout,
	}
}

// session returns the visitor's session, creating it on first use and extending its lifetime.
func (s *cartService) session(visitorID string) *CartSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(visitorID)
}

func (s *cartService) sessionLocked(visitorID string) *CartSession {
	if p, ok := s.pinned[visitorID]; ok {
		s.sessions.SetDefault(visitorID, p.sess)
		return p.sess
	}
	if v, ok := s.sessions.Get(visitorID); ok {
		sess := v.(*CartSession)
		s.sessions.SetDefault(visitorID, sess)
		return sess
	}
	sess := newCartSession(
		visitorID,
		s.catalog,
		selection.NewStore(s.kv, visitorID, s.logger),
		s.registrations,
		s.profiles,
		s.emails,
		s.logger,
		s.metrics,
	)
	s.sessions.SetDefault(visitorID, sess)
	return sess
}

// pin returns the visitor's session and keeps it reachable until release is called.
func (s *cartService) pin(visitorID string) (sess *CartSession, release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess = s.sessionLocked(visitorID)
	p, ok := s.pinned[visitorID]
	if !ok {
		p = &pinnedSession{sess: sess}
		s.pinned[visitorID] = p
	}
	p.refs++
	return sess, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if p.refs--; p.refs == 0 {
			delete(s.pinned, visitorID)
		}
	}
}

func (s *cartService) Views(ctx context.Context, visitorID string, identity *domain.Identity) (*domain.CartViews, error) {
	return s.session(visitorID).Views(ctx, identity)
}

func (s *cartService) Add(ctx context.Context, visitorID string, identity *domain.Identity, name string) (*domain.CartViews, error) {
	return s.session(visitorID).Add(ctx, identity, name)
}

func (s *cartService) Remove(ctx context.Context, visitorID string, identity *domain.Identity, name string) (*domain.CartViews, error) {
	return s.session(visitorID).Remove(ctx, identity, name)
}

func (s *cartService) Commit(ctx context.Context, visitorID string, identity *domain.Identity) (*domain.CommitResult, error) {
	sess, release := s.pin(visitorID)
	defer release()
	return sess.Commit(ctx, identity)
}
