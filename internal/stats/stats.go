// Package stats computes dashboard counts and reorder suggestions from
// already-loaded records. It has no storage dependency, so the same numbers
// come out whichever backend produced the records.
package stats

import (
	"math"

	"github.com/vbonduro/kitchzone/internal/domain"
)

// UnknownZone is the zone name reported for items whose zone cannot be found.
const UnknownZone = "Unknown Zone"

// IsLowStock reports whether the item has fallen to or below its reorder
// threshold. A missing threshold counts as 0.
func IsLowStock(item domain.InventoryItem) bool {
	return item.Quantity <= item.Threshold()
}

// SuggestedQuantity is the restock target for a given reorder threshold.
func SuggestedQuantity(threshold float64) float64 {
	return math.Max(2*threshold, threshold+10)
}

// Compute counts the collections. ReorderSuggestions currently equals
// LowStockItems.
func Compute(images []domain.Image, zones []domain.Zone, items []domain.InventoryItem) domain.Stats {
	low := 0
	for _, item := range items {
		if IsLowStock(item) {
			low++
		}
	}
	return domain.Stats{
		TotalImages:        len(images),
		TotalZones:         len(zones),
		TotalItems:         len(items),
		LowStockItems:      low,
		ReorderSuggestions: low,
	}
}

// ReorderSuggestions returns one pre-selected candidate per low-stock item, in
// item order. The input slices are not modified.
func ReorderSuggestions(items []domain.InventoryItem, zones []domain.Zone) []domain.ReorderCandidate {
	names := make(map[string]string, len(zones))
	for _, z := range zones {
		names[z.ID] = z.Name
	}

	candidates := make([]domain.ReorderCandidate, 0)
	for _, item := range items {
		if !IsLowStock(item) {
			continue
		}
		name, ok := names[item.ZoneID]
		if !ok {
			name = UnknownZone
		}
		candidates = append(candidates, domain.ReorderCandidate{
			Item:              item,
			ZoneName:          name,
			SuggestedQuantity: SuggestedQuantity(item.Threshold()),
			Selected:          true,
		})
	}
	return candidates
}
