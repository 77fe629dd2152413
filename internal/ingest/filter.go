package ingest

import (
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal"
	"github.com/smartquote-rcs/smartquote-backend-sub003/internal/util"
)

// FilterByPrice keeps the items whose normalized price lies within [min, max].
// A nil bound is open. Items without a readable price are always kept.
func FilterByPrice(items []internal.DiscoveredProduct, min, max *float64) []internal.DiscoveredProduct {
	if min == nil && max == nil {
		return items
	}

	out := make([]internal.DiscoveredProduct, 0, len(items))
	for _, item := range items {
		price := util.NormalizePrice(item.Price)
		if price != nil {
			if min != nil && *price < *min {
				continue
			}
			if max != nil && *price > *max {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
