package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfinder/src/db"
	"shopfinder/src/types"
)

type fakeProvider struct {
	listings []types.RawListing
	err      error
	calls    int
}

func (f *fakeProvider) Fetch(ctx context.Context, query string) ([]types.RawListing, error) {
	f.calls++
	return f.listings, f.err
}

func listing(name string, lat, lon float64) types.RawListing {
	return types.RawListing{
		Name:     name,
		Category: "Grocery",
		Location: &types.GeoPoint{Lat: lat, Lon: lon},
	}
}

func TestAcquireInsertsNormalizedListings(t *testing.T) {
	store := db.NewInMemoryStore()
	prov := &fakeProvider{listings: []types.RawListing{
		listing("Kirana One", 28.61, 77.20),
		listing("Kirana Two", 28.62, 77.21),
	}}
	p := New(prov, store, nil, nil)

	summary, err := p.Acquire(context.Background(), "grocery near delhi")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Seen)
	assert.Equal(t, 2, summary.Normalized)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 0, summary.Duplicates)
	assert.Equal(t, 0, summary.Discarded)

	_, total, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

// Re-running acquisition for an overlapping phrase is idempotent: known shops
// become counted skips, the store grows by at most the genuinely new records.
func TestAcquireIsIdempotent(t *testing.T) {
	store := db.NewInMemoryStore()
	prov := &fakeProvider{listings: []types.RawListing{
		listing("Kirana One", 28.61, 77.20),
	}}
	p := New(prov, store, nil, nil)

	first, err := p.Acquire(context.Background(), "grocery near delhi")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := p.Acquire(context.Background(), "kirana near delhi")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Duplicates)

	_, total, err := store.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestAcquireDiscardsMalformedListings(t *testing.T) {
	store := db.NewInMemoryStore()
	prov := &fakeProvider{listings: []types.RawListing{
		listing("Good", 28.61, 77.20),
		{Name: "No Coordinate", Category: "Grocery"},
		{Name: "", Category: "Grocery", Location: &types.GeoPoint{Lat: 1, Lon: 1}},
	}}
	p := New(prov, store, nil, nil)

	summary, err := p.Acquire(context.Background(), "grocery near delhi")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Seen)
	assert.Equal(t, 1, summary.Normalized)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 2, summary.Discarded)
}

func TestAcquireProviderFailureDegradesToZero(t *testing.T) {
	store := db.NewInMemoryStore()
	prov := &fakeProvider{err: errors.New("scraper timeout")}
	p := New(prov, store, nil, nil)

	summary, err := p.Acquire(context.Background(), "grocery near delhi")
	require.Error(t, err)

	assert.Equal(t, 0, summary.Inserted)
	assert.NotEmpty(t, summary.ProviderErr)

	_, total, listErr := store.List(context.Background(), 10, 0)
	require.NoError(t, listErr)
	assert.Equal(t, 0, total)
}

// Every acquisition queries the provider again; there is no caching of
// provider results in the pipeline.
func TestAcquireAlwaysQueriesProvider(t *testing.T) {
	store := db.NewInMemoryStore()
	prov := &fakeProvider{listings: []types.RawListing{listing("Kirana", 28.61, 77.20)}}
	p := New(prov, store, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := p.Acquire(context.Background(), "grocery near delhi")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, prov.calls)
}
