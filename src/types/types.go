package types

import (
	"context"
	"errors"
	"math"
)

// ShopType is the canonical category a shop is classified into.
type ShopType string

const (
	TypeMedical     ShopType = "medical"
	TypeGrocery     ShopType = "grocery"
	TypeBakery      ShopType = "bakery"
	TypeRestaurant  ShopType = "restaurant"
	TypeElectronics ShopType = "electronics"
	TypeOther       ShopType = "other"

	// TypeNone marks "no category filter"; distinct from TypeOther,
	// which is a real catalog category.
	TypeNone ShopType = ""
)

// ErrDuplicateShop is returned by CatalogStore.Insert when a record with the
// same (name, coordinates) pair already exists. It is an expected outcome of
// re-acquisition, not a failure.
var ErrDuplicateShop = errors.New("shop already exists")

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is a finite, in-range coordinate pair.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// GeoJSONPoint is the persisted point encoding: longitude first.
type GeoJSONPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewGeoJSONPoint(p GeoPoint) GeoJSONPoint {
	return GeoJSONPoint{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}}
}

func (g GeoJSONPoint) Point() GeoPoint {
	return GeoPoint{Lon: g.Coordinates[0], Lat: g.Coordinates[1]}
}

// ShopRecord is the canonical persisted description of one physical shop.
// Records are insert-only: a (name, location) pair is never updated or merged.
type ShopRecord struct {
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	ShopType      ShopType     `json:"shopType"`
	ContactNumber string       `json:"contactNumber"`
	Address       string       `json:"address"`
	Image         string       `json:"image"`
	Location      GeoJSONPoint `json:"location"`
	SearchQuery   string       `json:"searchQuery"`
}

// RawListing is one listing as reported by the external provider. Any field
// except Name and Location may be missing; a listing missing those is
// discarded during normalization without aborting the batch.
type RawListing struct {
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Phone    string    `json:"phone"`
	Address  string    `json:"address"`
	Image    string    `json:"image"`
	Location *GeoPoint `json:"location"`
}

// QueryIntent is the parsed form of one incoming search phrase.
type QueryIntent struct {
	Hint      ShopType
	PlaceText string
	RadiusKm  float64
}

type SearchResult struct {
	PlaceUsed string       `json:"placeUsed"`
	RadiusKm  float64      `json:"radiusKm"`
	Count     int          `json:"count"`
	Shops     []ShopRecord `json:"shops"`
}

// CatalogStore persists shop records under the (name, coordinates) uniqueness
// invariant and answers radius queries ordered by increasing geodesic
// distance.
type CatalogStore interface {
	Insert(ctx context.Context, rec ShopRecord) error
	FindNear(ctx context.Context, center GeoPoint, radiusMeters float64, filter ShopType) ([]ShopRecord, error)
	List(ctx context.Context, limit, offset int) ([]ShopRecord, int, error)
}

// ListingsProvider yields raw listings for a search phrase. Implementations
// wrap whatever mechanism obtains them (scraper sidecar, API, fixture file).
type ListingsProvider interface {
	Fetch(ctx context.Context, query string) ([]RawListing, error)
}

// Geocoder resolves free text to a single best-match coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (GeoPoint, error)
}
