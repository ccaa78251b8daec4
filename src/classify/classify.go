package classify

import (
	"strings"

	"shopfinder/src/types"
)

type rule struct {
	shopType types.ShopType
	keywords []string
}

// rules is ordered: the first matching category wins, so a label like
// "pharmacy and provision store" classifies as medical. The order is part of
// the classifier's contract.
var rules = []rule{
	{types.TypeMedical, []string{"pharmacy", "medical", "chemist", "drug"}},
	{types.TypeGrocery, []string{"grocery", "supermarket", "kirana", "provision"}},
	{types.TypeBakery, []string{"bakery"}},
	{types.TypeRestaurant, []string{"restaurant", "cafe", "food"}},
	{types.TypeElectronics, []string{"electronics", "mobile", "computer"}},
}

// Classify maps a provider-reported category label to a canonical shop type.
// Unrecognized labels fall back to "other".
func Classify(text string) types.ShopType {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.shopType
			}
		}
	}
	return types.TypeOther
}
