package db

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/olivere/elastic/v7"

	"shopfinder/src/types"
)

// findNearWindow caps how many hits one radius query can return. Searches are
// a few kilometers wide; anything past this is noise.
const findNearWindow = 1000

// ElasticStore is the Elasticsearch-backed catalog. The (name, coordinates)
// uniqueness invariant is enforced by addressing every record with a
// deterministic document ID and indexing with op_type=create: the losing side
// of a race gets a version conflict, which maps to types.ErrDuplicateShop.
type ElasticStore struct {
	Client *elastic.Client
	Index  string
}

func NewElasticStore(url string) (*ElasticStore, error) {
	client, err := elastic.NewClient(elastic.SetURL(url), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &ElasticStore{Client: client}, nil
}

// CreateIndexWithMapping ensures the shops index exists with the mapping from
// pathStruct. Safe to call on every startup.
func (es *ElasticStore) CreateIndexWithMapping(ctx context.Context, index, pathStruct string) error {
	exists, err := es.Client.IndexExists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %q: %w", index, err)
	}

	if exists {
		slog.Info("index already exists", "index", index)
		es.Index = index
		return nil
	}

	schemaBytes, err := os.ReadFile(pathStruct)
	if err != nil {
		return fmt.Errorf("read index mapping: %w", err)
	}

	createIndex, err := es.Client.CreateIndex(index).BodyString(string(schemaBytes)).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %q: %w", index, err)
	}
	if !createIndex.Acknowledged {
		slog.Warn("create index was not acknowledged", "index", index)
	}

	slog.Info("index created", "index", index)
	es.Index = index
	return nil
}

// recordID derives the document ID from the uniqueness key. FormatFloat with
// -1 precision keeps the shortest exact representation, so the same
// coordinates always hash the same.
func recordID(rec types.ShopRecord) string {
	key := rec.Name + "|" +
		strconv.FormatFloat(rec.Location.Coordinates[0], 'f', -1, 64) + "|" +
		strconv.FormatFloat(rec.Location.Coordinates[1], 'f', -1, 64)
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Insert persists one record. refresh=wait_for makes the record visible to
// the FindNear issued later in the same request pipeline.
func (es *ElasticStore) Insert(ctx context.Context, rec types.ShopRecord) error {
	_, err := es.Client.Index().
		Index(es.Index).
		Id(recordID(rec)).
		OpType("create").
		BodyJson(rec).
		Refresh("wait_for").
		Do(ctx)
	if err != nil {
		if elastic.IsConflict(err) {
			return types.ErrDuplicateShop
		}
		return fmt.Errorf("insert shop %q: %w", rec.Name, err)
	}
	return nil
}

// FindNear returns all shops within radiusMeters of center, nearest first.
// Distance is arc (geodesic), not planar; at kilometer scale that matters.
func (es *ElasticStore) FindNear(ctx context.Context, center types.GeoPoint, radiusMeters float64, filter types.ShopType) ([]types.ShopRecord, error) {
	radius := strconv.FormatFloat(radiusMeters, 'f', -1, 64) + "m"

	query := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery("location").
			Point(center.Lat, center.Lon).
			Distance(radius),
	)
	if filter != types.TypeNone {
		query = query.Filter(elastic.NewTermQuery("shopType", string(filter)))
	}

	searchResult, err := es.Client.Search().
		Index(es.Index).
		Query(query).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(center.Lat, center.Lon).
			Asc().
			Unit("m").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		Size(findNearWindow).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("find near (%f, %f): %w", center.Lat, center.Lon, err)
	}

	shops := make([]types.ShopRecord, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var rec types.ShopRecord
		if err := json.Unmarshal(hit.Source, &rec); err != nil {
			slog.Warn("skipping unreadable hit", "id", hit.Id, "err", err)
			continue
		}
		shops = append(shops, rec)
	}

	return shops, nil
}

// List pages through the whole catalog for the browse endpoints.
func (es *ElasticStore) List(ctx context.Context, limit, offset int) ([]types.ShopRecord, int, error) {
	searchResult, err := es.Client.Search().
		Index(es.Index).
		Query(elastic.NewMatchAllQuery()).
		Sort("name", true).
		Size(limit).
		From(offset).
		Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list shops: %w", err)
	}

	shops := make([]types.ShopRecord, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		var rec types.ShopRecord
		if err := json.Unmarshal(hit.Source, &rec); err != nil {
			slog.Warn("skipping unreadable hit", "id", hit.Id, "err", err)
			continue
		}
		shops = append(shops, rec)
	}

	count, err := es.Client.Count().Index(es.Index).Do(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count shops: %w", err)
	}

	return shops, int(count), nil
}

// Close releases the underlying client.
func (es *ElasticStore) Close() {
	es.Client.Stop()
}
