package domain

import (
	"math"
	"time"
)

// Image is an uploaded photograph of a kitchen space.
type Image struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	ImageURL  string    `json:"image_url" validate:"required"`
	UserID    string    `json:"user_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Zone is a named rectangle drawn over an image. X, Y, Width and Height are
// pixel offsets relative to the rendered image; Width and Height keep the sign
// of the drag direction.
type Zone struct {
	ID        string    `json:"id" validate:"required"`
	ImageID   string    `json:"image_id" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Color     string    `json:"color"`
	UserID    string    `json:"user_id" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Rect is an axis-aligned rectangle with non-negative size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Bounds returns the zone rectangle with its origin at the top-left corner
// and absolute width and height.
func (z Zone) Bounds() Rect {
	r := Rect{X: z.X, Y: z.Y, Width: math.Abs(z.Width), Height: math.Abs(z.Height)}
	if z.Width < 0 {
		r.X = z.X + z.Width
	}
	if z.Height < 0 {
		r.Y = z.Y + z.Height
	}
	return r
}

// InventoryItem is a stocked product anchored to a zone.
type InventoryItem struct {
	ID               string    `json:"id" validate:"required"`
	ZoneID           string    `json:"zone_id" validate:"required"`
	Name             string    `json:"name" validate:"required"`
	Quantity         float64   `json:"quantity" validate:"gte=0"`
	Unit             string    `json:"unit"`
	CostPerUnit      *float64  `json:"cost_per_unit,omitempty" validate:"omitempty,gte=0"`
	ReorderThreshold *float64  `json:"reorder_threshold,omitempty" validate:"omitempty,gte=0"`
	Notes            string    `json:"notes,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	UserID           string    `json:"user_id" validate:"required"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Threshold returns the reorder threshold, or 0 when none is set.
func (i InventoryItem) Threshold() float64 {
	if i.ReorderThreshold == nil {
		return 0
	}
	return *i.ReorderThreshold
}

func (i Image) RecordID() string         { return i.ID }
func (z Zone) RecordID() string          { return z.ID }
func (i InventoryItem) RecordID() string { return i.ID }

// Stats is the dashboard aggregate. It is derived on demand and never stored.
type Stats struct {
	TotalImages        int `json:"total_images"`
	TotalZones         int `json:"total_zones"`
	TotalItems         int `json:"total_items"`
	LowStockItems      int `json:"low_stock_items"`
	ReorderSuggestions int `json:"reorder_suggestions"`
}

// ReorderCandidate is a low-stock item proposed for restocking.
type ReorderCandidate struct {
	Item              InventoryItem `json:"item"`
	ZoneName          string        `json:"zone_name"`
	SuggestedQuantity float64       `json:"suggested_quantity"`
	Selected          bool          `json:"selected"`
}

// User is the authenticated owner of every record.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
