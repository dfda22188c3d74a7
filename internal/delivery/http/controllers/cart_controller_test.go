package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"symposium/internal/delivery/http/helpers"
	"symposium/internal/delivery/http/middleware"
	"symposium/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartCall struct {
	op        string
	visitorID string
	identity  *domain.Identity
	name      string
}

// fakeCartService records calls and replays canned results.
type fakeCartService struct {
	views  *domain.CartViews
	result *domain.CommitResult
	err    error
	calls  []cartCall
}

func (f *fakeCartService) record(op, visitorID string, identity *domain.Identity, name string) {
	f.calls = append(f.calls, cartCall{op: op, visitorID: visitorID, identity: identity, name: name})
}

func (f *fakeCartService) Views(ctx context.Context, visitorID string, identity *domain.Identity) (*domain.CartViews, error) {
	f.record("views", visitorID, identity, "")
	return f.views, f.err
}

func (f *fakeCartService) Add(ctx context.Context, visitorID string, identity *domain.Identity, name string) (*domain.CartViews, error) {
	f.record("add", visitorID, identity, name)
	return f.views, f.err
}

func (f *fakeCartService) Remove(ctx context.Context, visitorID string, identity *domain.Identity, name string) (*domain.CartViews, error) {
	f.record("remove", visitorID, identity, name)
	return f.views, f.err
}

func (f *fakeCartService) Commit(ctx context.Context, visitorID string, identity *domain.Identity) (*domain.CommitResult, error) {
	f.record("commit", visitorID, identity, "")
	return f.result, f.err
}

const testVisitor = "5b0f1b52-2a44-4a8f-9d43-0c1f6f1f7c11"

func cartRequest(method, target, body string, identity *domain.Identity) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	ctx := middleware.SetVisitorID(req.Context(), testVisitor)
	if identity != nil {
		ctx = middleware.SetIdentity(ctx, identity)
	}
	return req.WithContext(ctx)
}

func sampleViews() *domain.CartViews {
	return &domain.CartViews{
		CartEvents:       []*domain.EventRecord{{ID: "e2", Name: "B", Category: domain.CategoryWorkshop, Price: 200}},
		RegisteredEvents: []*domain.EventRecord{{ID: "e1", Name: "A", Category: domain.CategoryTechnical, Price: 100}},
		Totals:           domain.Totals{AlreadyPaid: 100, AmountPending: 200, Count: 2},
	}
}

func TestCartController_GetCart(t *testing.T) {
	fake := &fakeCartService{views: sampleViews()}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	alice := &domain.Identity{ID: "alice", Email: "alice@example.com"}
	rr := httptest.NewRecorder()

	ctrl.GetCart(rr, cartRequest(http.MethodGet, "http://test/cart", "", alice))

	require.Equal(t, http.StatusOK, rr.Code)
	var views domain.CartViews
	envelope := decodeEnvelope(t, rr, &views)
	require.Nil(t, envelope.Error)
	assert.Equal(t, domain.Totals{AlreadyPaid: 100, AmountPending: 200, Count: 2}, views.Totals)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, testVisitor, fake.calls[0].visitorID)
	assert.Equal(t, alice, fake.calls[0].identity)
}

func TestCartController_AnonymousVisitorPassesNilIdentity(t *testing.T) {
	fake := &fakeCartService{views: sampleViews()}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	rr := httptest.NewRecorder()

	ctrl.AddItem(rr, cartRequest(http.MethodPost, "http://test/cart/items", `{"name":"b"}`, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "add", fake.calls[0].op)
	assert.Equal(t, "b", fake.calls[0].name)
	assert.Nil(t, fake.calls[0].identity)
}

func TestCartController_MissingVisitor(t *testing.T) {
	fake := &fakeCartService{views: sampleViews()}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	rr := httptest.NewRecorder()

	ctrl.GetCart(rr, httptest.NewRequest(http.MethodGet, "http://test/cart", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, fake.calls)
}

func TestCartController_AddItemValidation(t *testing.T) {
	fake := &fakeCartService{views: sampleViews()}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	rr := httptest.NewRecorder()

	ctrl.AddItem(rr, cartRequest(http.MethodPost, "http://test/cart/items", `{"name":"  "}`, nil))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr, nil)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "name is required")
	assert.Empty(t, fake.calls)
}

func TestCartController_RemoveItem(t *testing.T) {
	fake := &fakeCartService{views: sampleViews()}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	req := cartRequest(http.MethodDelete, "http://test/cart/items/B", "", nil)
	req.SetPathValue("name", "B")
	rr := httptest.NewRecorder()

	ctrl.RemoveItem(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "remove", fake.calls[0].op)
	assert.Equal(t, "B", fake.calls[0].name)
}

func TestCartController_Commit(t *testing.T) {
	fake := &fakeCartService{result: &domain.CommitResult{
		Registered: domain.NewSelectionSet("A", "B"),
		Committed:  []string{"B"},
		Charged:    200,
	}}
	ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
	rr := httptest.NewRecorder()

	ctrl.Commit(rr, cartRequest(http.MethodPost, "http://test/cart/commit", "", &domain.Identity{ID: "alice"}))

	require.Equal(t, http.StatusOK, rr.Code)
	var res struct {
		Registered []string `json:"registered"`
		Committed  []string `json:"committed"`
		Charged    int64    `json:"charged"`
	}
	envelope := decodeEnvelope(t, rr, &res)
	require.Nil(t, envelope.Error)
	assert.ElementsMatch(t, []string{"A", "B"}, res.Registered)
	assert.Equal(t, []string{"B"}, res.Committed)
	assert.Equal(t, int64(200), res.Charged)
}

func TestCartController_ErrorMapping(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantStatus      int
		wantCode        string
		wantRemediation string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, helpers.RemediationLogin},
		{"profile incomplete", domain.ErrProfileIncomplete, http.StatusConflict, helpers.ErrCodeProfileRequired, helpers.RemediationCompleteProfile},
		{"nothing to pay", domain.ErrNothingToPay, http.StatusUnprocessableEntity, helpers.ErrCodeNothingToPay, ""},
		{"commit in progress", domain.ErrCommitInProgress, http.StatusConflict, helpers.ErrCodeCommitInFlight, ""},
		{"commit failed", &domain.CommitError{Cause: assert.AnError}, http.StatusBadGateway, helpers.ErrCodeCommitFailed, helpers.RemediationRetry},
		{"unknown event", fmt.Errorf("%w: chess", domain.ErrUnknownEvent), http.StatusNotFound, helpers.ErrCodeNotFound, ""},
		{"registered immutable", domain.ErrRegisteredImmutable, http.StatusConflict, helpers.ErrCodeConflict, ""},
		{"unexpected", assert.AnError, http.StatusInternalServerError, helpers.ErrCodeInternalError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCartService{err: tt.err}
			ctrl := NewCartController(testLogger, fake, middleware.ContextIdentity{})
			rr := httptest.NewRecorder()

			ctrl.Commit(rr, cartRequest(http.MethodPost, "http://test/cart/commit", "", &domain.Identity{ID: "alice"}))

			require.Equal(t, tt.wantStatus, rr.Code)
			envelope := decodeEnvelope(t, rr, nil)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Equal(t, tt.wantRemediation, envelope.Error.Remediation)
		})
	}
}
