package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/localstore"
)

// Local keeps records in the on-device store.
type Local struct {
	store *localstore.Store
}

func NewLocal(store *localstore.Store) *Local {
	return &Local{store: store}
}

func (l *Local) Name() string { return BackendLocal }

func (l *Local) ListImages(ctx context.Context, userID string) ([]domain.Image, error) {
	return l.store.ListImages(ctx, userID)
}

func (l *Local) CreateImage(ctx context.Context, img domain.Image) (domain.Image, error) {
	return l.store.UpsertImage(ctx, img.UserID, img)
}

func (l *Local) DeleteImage(ctx context.Context, userID, id string) error {
	return l.store.DeleteImage(ctx, userID, id)
}

func (l *Local) ListZones(ctx context.Context, userID, imageID string) ([]domain.Zone, error) {
	return l.store.ListZones(ctx, userID, imageID)
}

func (l *Local) CreateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	return l.store.UpsertZone(ctx, z.UserID, z)
}

func (l *Local) UpdateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	out, err := l.store.ReplaceZone(ctx, z.UserID, z)
	return out, notFound(err)
}

func (l *Local) DeleteZone(ctx context.Context, userID, id string) error {
	return l.store.DeleteZone(ctx, userID, id)
}

func (l *Local) ListItems(ctx context.Context, userID, zoneID string) ([]domain.InventoryItem, error) {
	return l.store.ListItems(ctx, userID, zoneID)
}

func (l *Local) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	return l.store.UpsertItem(ctx, item.UserID, item)
}

func (l *Local) UpdateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	out, err := l.store.ReplaceItem(ctx, item.UserID, item)
	return out, notFound(err)
}

func (l *Local) DeleteItem(ctx context.Context, userID, id string) error {
	return l.store.DeleteItem(ctx, userID, id)
}

func (l *Local) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	return l.store.Stats(ctx, userID)
}

func notFound(err error) error {
	if errors.Is(err, localstore.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
