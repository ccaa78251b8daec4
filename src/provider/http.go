// Package provider implements the external listings boundary. The catalog
// does not care how listings are obtained; anything that can answer
// Fetch(query) with raw listings works, and each listing may be individually
// malformed.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"shopfinder/src/types"
)

// HTTPProvider talks to a scraper sidecar that exposes collected map listings
// as JSON. Scraping is slow, so the timeout is generous; callers treat any
// failure as "nothing new this round".
type HTTPProvider struct {
	baseURL string
	http    *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context, query string) ([]types.RawListing, error) {
	u := p.baseURL + "/listings?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listings for %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listings for %q: unexpected status %d", query, resp.StatusCode)
	}

	var listings []types.RawListing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("fetch listings for %q: decode: %w", query, err)
	}
	return listings, nil
}
