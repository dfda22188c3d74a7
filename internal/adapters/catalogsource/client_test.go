package catalogsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   bool
		wantCount int
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      `{"events":[{"id":"t1","name":"Pixel Reforge","category":"technical","price":9900},{"id":"w1","name":"Rust Lab","category":"workshop","price":0}]}`,
			wantCount: 2,
		},
		{
			name:    "non 200 status",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"events":`,
			wantErr: true,
		},
		{
			name:    "display string price is rejected",
			status:  http.StatusOK,
			body:    `{"events":[{"id":"t1","name":"Pixel Reforge","category":"technical","price":"FREE"}]}`,
			wantErr: true,
		},
		{
			name:    "duplicate names rejected",
			status:  http.StatusOK,
			body:    `{"events":[{"id":"t1","name":"A","category":"technical","price":1},{"id":"t2","name":"A","category":"paper","price":1}]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewHTTPFetcher(srv.Client()).Fetch(context.Background(), srv.URL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got.Len())
		})
	}
}
