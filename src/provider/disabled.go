package provider

import (
	"context"

	"shopfinder/src/types"
)

// Disabled stands in when no scraper is configured. Every acquisition round
// finds nothing, so searches run on the existing catalog only.
type Disabled struct{}

func (Disabled) Fetch(ctx context.Context, query string) ([]types.RawListing, error) {
	return nil, nil
}
