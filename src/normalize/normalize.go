package normalize

import (
	"errors"
	"strings"
	"unicode"

	"shopfinder/src/classify"
	"shopfinder/src/types"
)

var (
	ErrMissingName       = errors.New("listing has no name")
	ErrMissingCoordinate = errors.New("listing has no valid coordinate")
)

// Phone strips everything but digits. Numbers longer than ten digits keep the
// last ten: local numbers are right-aligned, so this drops country-code
// prefixes deterministically.
func Phone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// Listing turns one raw provider listing into a persistable shop record.
// A listing without a usable name or coordinate is discarded with an error the
// pipeline counts and logs; it never aborts the batch. Optional fields
// normalize to empty strings so the record shape stays uniform.
func Listing(raw types.RawListing, searchQuery string) (*types.ShopRecord, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, ErrMissingName
	}
	if raw.Location == nil || !raw.Location.Valid() {
		return nil, ErrMissingCoordinate
	}

	return &types.ShopRecord{
		Name:          name,
		Category:      strings.TrimSpace(raw.Category),
		ShopType:      classify.Classify(raw.Category),
		ContactNumber: Phone(raw.Phone),
		Address:       strings.TrimSpace(raw.Address),
		Image:         strings.TrimSpace(raw.Image),
		Location:      types.NewGeoJSONPoint(*raw.Location),
		SearchQuery:   searchQuery,
	}, nil
}
