// Package catalogsource fetches the event catalog from a remote JSON endpoint at start-up.
package catalogsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"symposium/internal/catalog"
	"symposium/internal/domain"
)

// Response is the JSON document served by the catalog endpoint.
type Response struct {
	Events []*domain.EventRecord `json:"events"`
}

type httpFetcher struct {
	client *http.Client
}

// Fetcher loads a catalog from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*catalog.Catalog, error)
}

// NewHTTPFetcher returns a fetcher that calls the catalog endpoint.
func NewHTTPFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, url string) (*catalog.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog endpoint returned status: %d", resp.StatusCode)
	}

	var data Response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return catalog.New(data.Events)
}
