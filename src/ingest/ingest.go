// Package ingest turns raw provider listings into catalog records. The whole
// pipeline is best-effort: a broken listing is dropped, a duplicate is a skip,
// and a provider failure means "nothing new this round". None of it may fail
// a search running on whatever catalog already exists.
package ingest

import (
	"context"
	"errors"
	"log/slog"

	"shopfinder/src/events"
	"shopfinder/src/metrics"
	"shopfinder/src/normalize"
	"shopfinder/src/types"
)

// Summary accumulates per-listing outcomes of one acquisition round.
type Summary struct {
	Query       string `json:"query"`
	Seen        int    `json:"seen"`
	Normalized  int    `json:"normalized"`
	Inserted    int    `json:"inserted"`
	Duplicates  int    `json:"duplicates"`
	Discarded   int    `json:"discarded"`
	ProviderErr string `json:"providerErr,omitempty"`
}

type Pipeline struct {
	Provider types.ListingsProvider
	Store    types.CatalogStore
	Metrics  *metrics.Registry
	Events   *events.Publisher
}

func New(provider types.ListingsProvider, store types.CatalogStore, reg *metrics.Registry, pub *events.Publisher) *Pipeline {
	return &Pipeline{Provider: provider, Store: store, Metrics: reg, Events: pub}
}

// Acquire fetches listings for one search phrase and persists whatever
// normalizes cleanly and is not already known. The provider is queried every
// time; dedup happens at the store, not here. The returned error reports a
// provider or store breakdown; the Summary is valid either way and callers
// are expected to log the error and carry on.
func (p *Pipeline) Acquire(ctx context.Context, searchQuery string) (Summary, error) {
	summary := Summary{Query: searchQuery}

	listings, err := p.Provider.Fetch(ctx, searchQuery)
	if err != nil {
		summary.ProviderErr = err.Error()
		p.count(func(r *metrics.Registry) { r.ProviderFailures.Inc() })
		p.publish(ctx, searchQuery, summary)
		return summary, err
	}

	var storeErr error
	for _, listing := range listings {
		summary.Seen++
		p.count(func(r *metrics.Registry) { r.ListingsSeen.Inc() })

		rec, err := normalize.Listing(listing, searchQuery)
		if err != nil {
			summary.Discarded++
			p.count(func(r *metrics.Registry) { r.ListingsDiscarded.Inc() })
			slog.Debug("discarded listing", "query", searchQuery, "name", listing.Name, "reason", err)
			continue
		}
		summary.Normalized++

		switch err := p.Store.Insert(ctx, *rec); {
		case err == nil:
			summary.Inserted++
			p.count(func(r *metrics.Registry) { r.ShopsInserted.Inc() })
			slog.Info("inserted shop", "name", rec.Name, "shopType", rec.ShopType)
		case errors.Is(err, types.ErrDuplicateShop):
			summary.Duplicates++
			p.count(func(r *metrics.Registry) { r.DuplicatesSkipped.Inc() })
			slog.Debug("duplicate skipped", "name", rec.Name)
		default:
			storeErr = err
			slog.Error("insert failed", "name", rec.Name, "err", err)
		}
	}

	p.publish(ctx, searchQuery, summary)
	slog.Info("acquisition finished",
		"query", searchQuery,
		"seen", summary.Seen,
		"inserted", summary.Inserted,
		"duplicates", summary.Duplicates,
		"discarded", summary.Discarded)

	return summary, storeErr
}

func (p *Pipeline) count(fn func(*metrics.Registry)) {
	if p.Metrics != nil {
		fn(p.Metrics)
	}
}

func (p *Pipeline) publish(ctx context.Context, query string, summary Summary) {
	if p.Events == nil {
		return
	}
	if err := p.Events.PublishAcquisition(ctx, query, summary); err != nil {
		slog.Warn("publish acquisition event failed", "query", query, "err", err)
	}
}
