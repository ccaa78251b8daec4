package query

import (
	"errors"
	"math"
	"strings"

	"shopfinder/src/types"
)

// ErrInvalidQuery marks a search phrase that is empty after trimming or a
// radius that is not a positive finite number.
var ErrInvalidQuery = errors.New("invalid search query")

type hintRule struct {
	shopType types.ShopType
	keywords []string
}

// hintRules is the request-level keyword table. It is narrower than the
// classifier's table on purpose: the two sets serve different inputs (a search
// phrase vs. a scraped category label) and are kept separate.
var hintRules = []hintRule{
	{types.TypeMedical, []string{"medical", "pharmacy", "chemist"}},
	{types.TypeGrocery, []string{"grocery", "kirana", "supermarket"}},
}

// stopPhrases are removed from the phrase to leave the place text. Multi-word
// phrases come before their constituent words: stripping "medical" before
// "medical shop" would leave a stray "shop" behind.
var stopPhrases = []string{
	"medical shop",
	"grocery store",
	"medical",
	"grocery",
	"pharmacy",
	"near",
}

// Interpret parses one incoming search phrase into a category hint, the place
// text to geocode, and the search radius. The hint stays unset (TypeNone) when
// no request-level keyword matches; an unset hint means "no filter", which is
// not the same as classifying the phrase as "other".
func Interpret(searchText string, distanceKm float64) (types.QueryIntent, error) {
	lowered := strings.ToLower(strings.TrimSpace(searchText))
	if lowered == "" {
		return types.QueryIntent{}, ErrInvalidQuery
	}
	if distanceKm <= 0 || math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return types.QueryIntent{}, ErrInvalidQuery
	}

	hint := types.TypeNone
	for _, r := range hintRules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				hint = r.shopType
				break
			}
		}
		if hint != types.TypeNone {
			break
		}
	}

	place := lowered
	for _, phrase := range stopPhrases {
		place = strings.ReplaceAll(place, phrase, "")
	}
	place = strings.TrimSpace(place)

	return types.QueryIntent{
		Hint:      hint,
		PlaceText: place,
		RadiusKm:  distanceKm,
	}, nil
}
