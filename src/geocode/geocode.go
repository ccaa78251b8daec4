package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"shopfinder/src/types"
)

// ErrLocationNotFound means the upstream returned no candidate for the text.
var ErrLocationNotFound = errors.New("location not found")

const cacheTTL = 24 * time.Hour

// candidate mirrors the relevant part of the Nominatim search payload.
// Lat/lon arrive as strings.
type candidate struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Client resolves free text against a Nominatim-compatible search endpoint.
// Only the first (highest-confidence) candidate is used; no disambiguation is
// attempted. That is a deliberate simplification, not an oversight.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     *redis.Client
}

// New builds a geocoder client. cache may be nil, in which case every lookup
// goes upstream.
func New(baseURL, userAgent string, cache *redis.Client) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		cache:     cache,
	}
}

func (c *Client) Geocode(ctx context.Context, place string) (types.GeoPoint, error) {
	if place == "" {
		return types.GeoPoint{}, ErrLocationNotFound
	}

	if pt, ok := c.cached(ctx, place); ok {
		return pt, nil
	}

	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return types.GeoPoint{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	// Upstream breakdowns (timeout, bad status, unreadable payload) resolve
	// to ErrLocationNotFound: the place is unresolvable for this request and
	// that is a client-facing outcome, not a server fault. The cause stays in
	// the log.
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("geocode upstream call failed", "place", place, "err", err)
		return types.GeoPoint{}, ErrLocationNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("geocode upstream returned bad status", "place", place, "status", resp.StatusCode)
		return types.GeoPoint{}, ErrLocationNotFound
	}

	var candidates []candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		slog.Warn("geocode response unreadable", "place", place, "err", err)
		return types.GeoPoint{}, ErrLocationNotFound
	}
	if len(candidates) == 0 {
		return types.GeoPoint{}, ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(candidates[0].Lat, 64)
	if err != nil {
		slog.Warn("geocode candidate has bad latitude", "place", place, "err", err)
		return types.GeoPoint{}, ErrLocationNotFound
	}
	lon, err := strconv.ParseFloat(candidates[0].Lon, 64)
	if err != nil {
		slog.Warn("geocode candidate has bad longitude", "place", place, "err", err)
		return types.GeoPoint{}, ErrLocationNotFound
	}

	pt := types.GeoPoint{Lat: lat, Lon: lon}
	if !pt.Valid() {
		return types.GeoPoint{}, ErrLocationNotFound
	}

	c.store(ctx, place, pt)
	return pt, nil
}

func cacheKey(place string) string { return "geocode:" + place }

func (c *Client) cached(ctx context.Context, place string) (types.GeoPoint, bool) {
	if c.cache == nil {
		return types.GeoPoint{}, false
	}
	raw, err := c.cache.Get(ctx, cacheKey(place)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("geocode cache get failed", "place", place, "err", err)
		}
		return types.GeoPoint{}, false
	}
	var pt types.GeoPoint
	if err := json.Unmarshal([]byte(raw), &pt); err != nil {
		return types.GeoPoint{}, false
	}
	return pt, true
}

func (c *Client) store(ctx context.Context, place string, pt types.GeoPoint) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(pt)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(place), raw, cacheTTL).Err(); err != nil {
		slog.Warn("geocode cache set failed", "place", place, "err", err)
	}
}
