package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/kitchzone/internal/domain"
)

func ptr(f float64) *float64 { return &f }

func TestIsLowStock(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		threshold *float64
		want      bool
	}{
		{name: "below threshold", quantity: 5, threshold: ptr(10), want: true},
		{name: "at threshold", quantity: 10, threshold: ptr(10), want: true},
		{name: "above threshold", quantity: 11, threshold: ptr(10), want: false},
		{name: "no threshold with stock", quantity: 3, threshold: nil, want: false},
		{name: "no threshold and empty", quantity: 0, threshold: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.InventoryItem{Quantity: tt.quantity, ReorderThreshold: tt.threshold}
			assert.Equal(t, tt.want, IsLowStock(item))
		})
	}
}

func TestSuggestedQuantity(t *testing.T) {
	assert.Equal(t, 13.0, SuggestedQuantity(3))
	assert.Equal(t, 40.0, SuggestedQuantity(20))
	assert.Equal(t, 10.0, SuggestedQuantity(0))
}

func TestCompute(t *testing.T) {
	images := []domain.Image{{ID: "img1"}}
	zones := []domain.Zone{{ID: "z1", ImageID: "img1"}, {ID: "z2", ImageID: "img1"}}
	items := []domain.InventoryItem{
		{ID: "i1", ZoneID: "z1", Quantity: 2, ReorderThreshold: ptr(5)},
		{ID: "i2", ZoneID: "z1", Quantity: 8, ReorderThreshold: ptr(5)},
		{ID: "i3", ZoneID: "z2", Quantity: 0},
	}

	got := Compute(images, zones, items)
	assert.Equal(t, domain.Stats{
		TotalImages:        1,
		TotalZones:         2,
		TotalItems:         3,
		LowStockItems:      2,
		ReorderSuggestions: 2,
	}, got)
}

func TestCompute_Empty(t *testing.T) {
	assert.Equal(t, domain.Stats{}, Compute(nil, nil, nil))
}

func TestReorderSuggestions(t *testing.T) {
	zones := []domain.Zone{{ID: "z1", Name: "Top Shelf"}}
	items := []domain.InventoryItem{
		{ID: "i1", ZoneID: "z1", Name: "Rice", Quantity: 1, ReorderThreshold: ptr(3)},
		{ID: "i2", ZoneID: "z1", Name: "Pasta", Quantity: 9, ReorderThreshold: ptr(3)},
		{ID: "i3", ZoneID: "gone", Name: "Flour", Quantity: 20, ReorderThreshold: ptr(20)},
	}

	got := ReorderSuggestions(items, zones)
	require.Len(t, got, 2)

	assert.Equal(t, "i1", got[0].Item.ID)
	assert.Equal(t, "Top Shelf", got[0].ZoneName)
	assert.Equal(t, 13.0, got[0].SuggestedQuantity)
	assert.True(t, got[0].Selected)

	assert.Equal(t, "i3", got[1].Item.ID)
	assert.Equal(t, UnknownZone, got[1].ZoneName)
	assert.Equal(t, 40.0, got[1].SuggestedQuantity)

	// Source records are untouched.
	assert.Equal(t, 1.0, items[0].Quantity)
}

func TestReorderSuggestions_NoneLow(t *testing.T) {
	items := []domain.InventoryItem{{ID: "i1", Quantity: 4, ReorderThreshold: ptr(1)}}
	assert.Empty(t, ReorderSuggestions(items, nil))
}
