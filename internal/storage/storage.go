// Package storage is the single persistence capability the services use.
// Remote routes to the backend-as-a-service, Local to the on-device store.
// The two never exchange records: each holds its own data.
package storage

import (
	"context"
	"errors"

	"github.com/vbonduro/kitchzone/internal/domain"
)

// Backend names, also used as metric labels.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// ErrNotFound is returned by updates of records that do not exist.
var ErrNotFound = errors.New("record not found")

// ErrCascade wraps a failure to delete a zone's items after the zone itself
// was deleted. The zone delete is not rolled back.
var ErrCascade = errors.New("cascade delete incomplete")

// Storage reads and writes one user's records. Every List returns records of
// userID only; filters are ignored when empty.
type Storage interface {
	Name() string

	ListImages(ctx context.Context, userID string) ([]domain.Image, error)
	CreateImage(ctx context.Context, img domain.Image) (domain.Image, error)
	// DeleteImage leaves the image's zones in place.
	DeleteImage(ctx context.Context, userID, id string) error

	ListZones(ctx context.Context, userID, imageID string) ([]domain.Zone, error)
	CreateZone(ctx context.Context, z domain.Zone) (domain.Zone, error)
	UpdateZone(ctx context.Context, z domain.Zone) (domain.Zone, error)
	// DeleteZone also deletes every item anchored to the zone.
	DeleteZone(ctx context.Context, userID, id string) error

	ListItems(ctx context.Context, userID, zoneID string) ([]domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	// UpdateItem refreshes UpdatedAt and keeps the stored CreatedAt.
	UpdateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	DeleteItem(ctx context.Context, userID, id string) error

	Stats(ctx context.Context, userID string) (domain.Stats, error)
}
