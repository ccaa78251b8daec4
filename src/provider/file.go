package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"shopfinder/src/types"
)

// FileProvider reads listings from a tab-separated seed file with a header
// row and columns: name, category, phone, address, image, lon, lat. It exists
// for startup seeding and tests; rows with unparseable coordinates come back
// without a location and get discarded by normalization like any other
// malformed listing.
type FileProvider struct {
	Path string
}

func NewFile(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Fetch(ctx context.Context, query string) ([]types.RawListing, error) {
	file, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var listings []types.RawListing
	for i, record := range records {
		if i == 0 {
			continue
		}
		if len(record) < 7 {
			continue
		}

		listing := types.RawListing{
			Name:     record[0],
			Category: record[1],
			Phone:    record[2],
			Address:  record[3],
			Image:    record[4],
		}

		lon, lonErr := strconv.ParseFloat(record[5], 64)
		lat, latErr := strconv.ParseFloat(record[6], 64)
		if lonErr == nil && latErr == nil {
			listing.Location = &types.GeoPoint{Lat: lat, Lon: lon}
		}

		listings = append(listings, listing)
	}

	return listings, nil
}
