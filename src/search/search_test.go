package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfinder/src/db"
	"shopfinder/src/geocode"
	"shopfinder/src/ingest"
	"shopfinder/src/normalize"
	"shopfinder/src/query"
	"shopfinder/src/types"
)

type fakeProvider struct {
	listings []types.RawListing
	err      error
	calls    int
}

func (f *fakeProvider) Fetch(ctx context.Context, q string) ([]types.RawListing, error) {
	f.calls++
	return f.listings, f.err
}

type fakeGeocoder struct {
	point types.GeoPoint
	err   error
	calls int
	last  string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, place string) (types.GeoPoint, error) {
	f.calls++
	f.last = place
	return f.point, f.err
}

// recordingStore wraps the in-memory store and captures FindNear arguments.
type recordingStore struct {
	*db.InMemoryStore
	findNearCalls int
	lastRadius    float64
	lastFilter    types.ShopType
}

func (r *recordingStore) FindNear(ctx context.Context, center types.GeoPoint, radiusMeters float64, filter types.ShopType) ([]types.ShopRecord, error) {
	r.findNearCalls++
	r.lastRadius = radiusMeters
	r.lastFilter = filter
	return r.InMemoryStore.FindNear(ctx, center, radiusMeters, filter)
}

func newService(prov *fakeProvider, geo *fakeGeocoder, store types.CatalogStore) *Service {
	return New(ingest.New(prov, store, nil, nil), geo, store, nil)
}

func seedShop(t *testing.T, store types.CatalogStore, name string, lat, lon float64, category string) {
	t.Helper()
	rec, err := normalize.Listing(types.RawListing{
		Name:     name,
		Category: category,
		Location: &types.GeoPoint{Lat: lat, Lon: lon},
	}, "seed")
	require.NoError(t, err)
	require.NoError(t, store.Insert(context.Background(), *rec))
}

func TestSearchHappyPath(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	seedShop(t, store, "Apollo Pharmacy", 28.6149, 77.209, "Pharmacy")
	seedShop(t, store, "Big Kirana", 28.6159, 77.209, "Kirana Store")

	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(&fakeProvider{}, geo, store)

	result, err := svc.Search(context.Background(), "medical shop near delhi", 4)
	require.NoError(t, err)

	assert.Equal(t, "delhi", result.PlaceUsed)
	assert.Equal(t, 4.0, result.RadiusKm)
	assert.Equal(t, 1, result.Count)
	require.Len(t, result.Shops, 1)
	assert.Equal(t, "Apollo Pharmacy", result.Shops[0].Name)

	// The derived place text, not the raw phrase, goes to the geocoder.
	assert.Equal(t, "delhi", geo.last)
}

// distanceKm converts to meters exactly once: a 4 km request queries the
// store with a 4000 m radius.
func TestSearchRadiusConversion(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(&fakeProvider{}, geo, store)

	_, err := svc.Search(context.Background(), "grocery near delhi", 4)
	require.NoError(t, err)
	assert.Equal(t, 4000.0, store.lastRadius)
	assert.Equal(t, types.TypeGrocery, store.lastFilter)
}

func TestSearchNoHintMeansNoFilter(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(&fakeProvider{}, geo, store)

	_, err := svc.Search(context.Background(), "shops around karol bagh", 4)
	require.NoError(t, err)
	assert.Equal(t, types.TypeNone, store.lastFilter)
}

// An invalid query fails before any collaborator is contacted.
func TestSearchRejectsEmptyQueryEarly(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	prov := &fakeProvider{}
	geo := &fakeGeocoder{}
	svc := newService(prov, geo, store)

	_, err := svc.Search(context.Background(), "   ", 4)
	assert.ErrorIs(t, err, query.ErrInvalidQuery)
	assert.Equal(t, 0, prov.calls)
	assert.Equal(t, 0, geo.calls)
	assert.Equal(t, 0, store.findNearCalls)
}

// An unresolvable place surfaces LocationNotFound and skips the store query.
func TestSearchLocationNotFound(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	geo := &fakeGeocoder{err: geocode.ErrLocationNotFound}
	svc := newService(&fakeProvider{}, geo, store)

	_, err := svc.Search(context.Background(), "grocery near atlantis", 4)
	assert.ErrorIs(t, err, geocode.ErrLocationNotFound)
	assert.Equal(t, 0, store.findNearCalls)
}

// A provider breakdown never fails the search; it runs against whatever the
// catalog already holds.
func TestSearchProceedsWhenAcquisitionFails(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	seedShop(t, store, "Old Kirana", 28.6149, 77.209, "Kirana Store")

	prov := &fakeProvider{err: errors.New("scraper down")}
	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(prov, geo, store)

	result, err := svc.Search(context.Background(), "grocery near delhi", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 1, prov.calls)
}

// Zero matches is a valid outcome, distinct from any error, with an empty
// (not absent) shops array.
func TestSearchZeroResults(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(&fakeProvider{}, geo, store)

	result, err := svc.Search(context.Background(), "grocery near delhi", 4)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotNil(t, result.Shops)
	assert.Empty(t, result.Shops)
}

// New insertions from this request's acquisition are visible to this
// request's store query.
func TestSearchSeesOwnAcquisition(t *testing.T) {
	store := &recordingStore{InMemoryStore: db.NewInMemoryStore()}
	prov := &fakeProvider{listings: []types.RawListing{{
		Name:     "Fresh Kirana",
		Category: "Kirana Store",
		Location: &types.GeoPoint{Lat: 28.6149, Lon: 77.209},
	}}}
	geo := &fakeGeocoder{point: types.GeoPoint{Lat: 28.6139, Lon: 77.209}}
	svc := newService(prov, geo, store)

	result, err := svc.Search(context.Background(), "grocery near delhi", 4)
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.Equal(t, "Fresh Kirana", result.Shops[0].Name)
}
