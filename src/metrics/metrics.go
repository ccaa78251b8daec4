package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the acquisition and search counters. Per-listing failures
// are swallowed by design, so the counters are the only place failure rates
// stay visible.
type Registry struct {
	reg *prometheus.Registry

	ListingsSeen      prometheus.Counter
	ShopsInserted     prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	ListingsDiscarded prometheus.Counter
	ProviderFailures  prometheus.Counter
	SearchesServed    prometheus.Counter
	GeocodeFailures   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	seen := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_listings_seen_total"})
	inserted := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_shops_inserted_total"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_duplicates_skipped_total"})
	discarded := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_listings_discarded_total"})
	providerFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_provider_failures_total"})
	searches := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_searches_served_total"})
	geocodeFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "shopfinder_geocode_failures_total"})

	r.MustRegister(seen, inserted, duplicates, discarded, providerFailures, searches, geocodeFailures)

	return &Registry{
		reg:               r,
		ListingsSeen:      seen,
		ShopsInserted:     inserted,
		DuplicatesSkipped: duplicates,
		ListingsDiscarded: discarded,
		ProviderFailures:  providerFailures,
		SearchesServed:    searches,
		GeocodeFailures:   geocodeFailures,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
