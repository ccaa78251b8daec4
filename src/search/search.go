package search

import (
	"context"
	"log/slog"

	"shopfinder/src/ingest"
	"shopfinder/src/metrics"
	"shopfinder/src/query"
	"shopfinder/src/types"
)

// Service runs the full proximity search pipeline: interpret the phrase,
// refresh the catalog for it, geocode the place, query the store. Acquisition
// failures are logged and swallowed; the search proceeds against whatever
// catalog state exists. Only a malformed query, an unresolvable place, or a
// store failure surface to the caller.
type Service struct {
	Pipeline *ingest.Pipeline
	Geocoder types.Geocoder
	Store    types.CatalogStore
	Metrics  *metrics.Registry
}

func New(pipeline *ingest.Pipeline, geocoder types.Geocoder, store types.CatalogStore, reg *metrics.Registry) *Service {
	return &Service{Pipeline: pipeline, Geocoder: geocoder, Store: store, Metrics: reg}
}

func (s *Service) Search(ctx context.Context, searchText string, distanceKm float64) (types.SearchResult, error) {
	intent, err := query.Interpret(searchText, distanceKm)
	if err != nil {
		return types.SearchResult{}, err
	}

	if _, err := s.Pipeline.Acquire(ctx, searchText); err != nil {
		slog.Warn("acquisition degraded, searching existing catalog", "query", searchText, "err", err)
	}

	center, err := s.Geocoder.Geocode(ctx, intent.PlaceText)
	if err != nil {
		if s.Metrics != nil {
			s.Metrics.GeocodeFailures.Inc()
		}
		return types.SearchResult{}, err
	}

	shops, err := s.Store.FindNear(ctx, center, intent.RadiusKm*1000, intent.Hint)
	if err != nil {
		return types.SearchResult{}, err
	}
	if shops == nil {
		shops = []types.ShopRecord{}
	}

	if s.Metrics != nil {
		s.Metrics.SearchesServed.Inc()
	}

	return types.SearchResult{
		PlaceUsed: intent.PlaceText,
		RadiusKm:  intent.RadiusKm,
		Count:     len(shops),
		Shops:     shops,
	}, nil
}
