package helpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addRequest struct {
	Name string `json:"name"`
}

func (a addRequest) Validate() []string {
	if a.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantSubstr string
	}{
		{name: "valid", body: `{"name":"Quiz Quest"}`, wantOK: true},
		{name: "empty body", body: ``, wantSubstr: "empty"},
		{name: "malformed", body: `{invalid`, wantSubstr: "invalid"},
		{name: "unknown field", body: `{"name":"x","price":0}`, wantSubstr: "unknown field"},
		{name: "validation", body: `{}`, wantSubstr: "name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			var dest addRequest

			ok := DecodeAndValidate(rr, req, &dest)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "Quiz Quest", dest.Name)
				return
			}
			require.Equal(t, http.StatusBadRequest, rr.Code)
			var env APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
			require.NotNil(t, env.Error)
			assert.Equal(t, ErrCodeBadRequest, env.Error.Code)
			assert.Contains(t, env.Error.Message, tt.wantSubstr)
		})
	}
}

func TestWriteJSONErrorWithRemediation(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONErrorWithRemediation(rr, http.StatusUnauthorized, ErrCodeUnauthorized, "sign in to register", RemediationLogin)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":null,"error":{"code":"unauthorized","message":"sign in to register","remediation":"login"}}`, rr.Body.String())
}

func TestWriteJSONError_OmitsEmptyRemediation(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusNotFound, ErrCodeNotFound, "event not found")

	assert.JSONEq(t, `{"data":null,"error":{"code":"not_found","message":"event not found"}}`, rr.Body.String())
}

func TestWriteJSONSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONSuccess(rr, http.StatusCreated, map[string]int{"count": 2})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"data":{"count":2},"error":null}`, rr.Body.String())
}
