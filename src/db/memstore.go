package db

import (
	"context"
	"math"
	"sort"
	"sync"

	"shopfinder/src/types"
)

const earthRadiusMeters = 6371000.0

// haversineMeters is the great-circle distance between two points.
func haversineMeters(a, b types.GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// InMemoryStore implements the catalog interface without Elasticsearch. It
// backs the pipeline tests and local runs; semantics (uniqueness, geodesic
// ordering, radius cutoff) match the real store.
type InMemoryStore struct {
	mu    sync.RWMutex
	shops []types.ShopRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Insert(ctx context.Context, rec types.ShopRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.shops {
		if existing.Name == rec.Name && existing.Location.Coordinates == rec.Location.Coordinates {
			return types.ErrDuplicateShop
		}
	}
	s.shops = append(s.shops, rec)
	return nil
}

func (s *InMemoryStore) FindNear(ctx context.Context, center types.GeoPoint, radiusMeters float64, filter types.ShopType) ([]types.ShopRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		rec  types.ShopRecord
		dist float64
	}

	var hits []scored
	for _, rec := range s.shops {
		if filter != types.TypeNone && rec.ShopType != filter {
			continue
		}
		d := haversineMeters(center, rec.Location.Point())
		if d > radiusMeters {
			continue
		}
		hits = append(hits, scored{rec, d})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	shops := make([]types.ShopRecord, 0, len(hits))
	for _, h := range hits {
		shops = append(shops, h.rec)
	}
	return shops, nil
}

func (s *InMemoryStore) List(ctx context.Context, limit, offset int) ([]types.ShopRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.shops)
	if offset >= total {
		return []types.ShopRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]types.ShopRecord, end-offset)
	copy(page, s.shops[offset:end])
	return page, total, nil
}
