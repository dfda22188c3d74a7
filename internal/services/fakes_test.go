package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"symposium/internal/catalog"
	"symposium/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestCatalog builds a catalog from name/price pairs.
func newTestCatalog(t testing.TB, entries ...any) *catalog.Catalog {
	t.Helper()
	var events []*domain.EventRecord
	for i := 0; i+1 < len(entries); i += 2 {
		name := entries[i].(string)
		events = append(events, &domain.EventRecord{
			ID:       "ev-" + name,
			Name:     name,
			Category: domain.CategoryTechnical,
			Price:    int64(entries[i+1].(int)),
		})
	}
	c, err := catalog.New(events)
	require.NoError(t, err)
	return c
}

// memKV is an in-memory domain.KeyValueStore that can be told to fail.
type memKV struct {
	mu       sync.Mutex
	data     map[string]string
	writes   int
	readErr  error
	writeErr error
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) ReadString(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return "", false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) WriteString(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.data[key] = value
	return nil
}

func (m *memKV) setWriteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

func (m *memKV) raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *memKV) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// fakeRegistrations is an in-memory domain.RegistrationRepository.
type fakeRegistrations struct {
	mu       sync.Mutex
	records  map[string]domain.SelectionSet
	getErr   error
	mergeErr error
	gets     int
	merges   int

	// When set, Merge signals entered and waits for release.
	entered chan struct{}
	release chan struct{}
}

func newFakeRegistrations() *fakeRegistrations {
	return &fakeRegistrations{records: make(map[string]domain.SelectionSet)}
}

func (f *fakeRegistrations) seed(identity string, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[identity] = domain.NewSelectionSet(names...)
}

func (f *fakeRegistrations) Get(_ context.Context, identity string) (*domain.RegistrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	set, ok := f.records[identity]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.RegistrationRecord{Identity: identity, Events: set.Names()}, nil
}

func (f *fakeRegistrations) Merge(ctx context.Context, identity, email string, names []string) (*domain.RegistrationRecord, []string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.merges++
	if f.mergeErr != nil {
		return nil, nil, f.mergeErr
	}
	incoming := domain.NewSelectionSet(names...)
	added := incoming.Minus(f.records[identity]).Names()
	set := f.records[identity].Union(incoming)
	f.records[identity] = set
	return &domain.RegistrationRecord{Identity: identity, Email: email, Events: set.Names()}, added, nil
}

func (f *fakeRegistrations) mergeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.merges
}

func (f *fakeRegistrations) registered(identity string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[identity].Names()
}

// fakeProfiles implements domain.ProfileOracle.
type fakeProfiles struct {
	complete map[string]bool
	err      error
}

func (f *fakeProfiles) IsProfileComplete(_ context.Context, identity *domain.Identity) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.complete[identity.ID], nil
}

// fakeEmailService records the emails it was asked to send.
type fakeEmailService struct {
	mu         sync.Mutex
	loginCodes []*domain.LoginCodeEmailData
	confirmed  []*domain.RegistrationConfirmedEmailData
	err        error
}

func (f *fakeEmailService) SendLoginCode(_ context.Context, data *domain.LoginCodeEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCodes = append(f.loginCodes, data)
	return f.err
}

func (f *fakeEmailService) SendRegistrationConfirmed(_ context.Context, data *domain.RegistrationConfirmedEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, data)
	return f.err
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.token != "" {
		return f.token, nil
	}
	return "token-" + userID, nil
}

var errStoreDown = errors.New("store unavailable")
