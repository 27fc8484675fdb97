package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/stats"
)

// Remote keeps records in the backend-as-a-service. The backend does not
// cascade, so DeleteZone removes the zone's items itself.
type Remote struct {
	gw     remote.Gateway
	logger *slog.Logger
	now    func() time.Time
}

func NewRemote(gw remote.Gateway, logger *slog.Logger) *Remote {
	return &Remote{gw: gw, logger: logger, now: time.Now}
}

func (r *Remote) Name() string { return BackendRemote }

func ownedBy(userID string) map[string]string {
	return map[string]string{remote.FieldUserID: userID}
}

func (r *Remote) ListImages(ctx context.Context, userID string) ([]domain.Image, error) {
	return r.gw.Images().List(ctx, remote.Query{Filter: ownedBy(userID), OrderBy: remote.FieldCreatedAt, Desc: true})
}

func (r *Remote) CreateImage(ctx context.Context, img domain.Image) (domain.Image, error) {
	return r.gw.Images().Create(ctx, img)
}

func (r *Remote) DeleteImage(ctx context.Context, userID, id string) error {
	return r.gw.Images().Delete(ctx, id)
}

func (r *Remote) ListZones(ctx context.Context, userID, imageID string) ([]domain.Zone, error) {
	filter := ownedBy(userID)
	if imageID != "" {
		filter[remote.FieldImageID] = imageID
	}
	return r.gw.Zones().List(ctx, remote.Query{Filter: filter, OrderBy: remote.FieldCreatedAt})
}

func (r *Remote) CreateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	return r.gw.Zones().Create(ctx, z)
}

func (r *Remote) UpdateZone(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	err := r.gw.Zones().Update(ctx, z.ID, remote.Fields{
		"image_id": z.ImageID,
		"name":     z.Name,
		"x":        z.X,
		"y":        z.Y,
		"width":    z.Width,
		"height":   z.Height,
		"color":    z.Color,
	})
	if err != nil {
		return domain.Zone{}, notFoundRemote(err)
	}
	return fetchOne(ctx, r.gw.Zones(), z.UserID, z.ID)
}

// DeleteZone deletes the zone, then its items one by one. A failure during
// the item cleanup is reported as ErrCascade; the zone stays deleted.
func (r *Remote) DeleteZone(ctx context.Context, userID, id string) error {
	if err := r.gw.Zones().Delete(ctx, id); err != nil {
		return err
	}

	items, err := r.gw.Items().List(ctx, remote.Query{Filter: map[string]string{
		remote.FieldUserID: userID,
		remote.FieldZoneID: id,
	}})
	if err != nil {
		return fmt.Errorf("%w: zone %s: %w", ErrCascade, id, err)
	}
	for _, item := range items {
		if err := r.gw.Items().Delete(ctx, item.ID); err != nil {
			return fmt.Errorf("%w: zone %s item %s: %w", ErrCascade, id, item.ID, err)
		}
	}
	if len(items) > 0 {
		r.logger.Debug("cascade deleted items", "user_id", userID, "zone_id", id, "count", len(items))
	}
	return nil
}

func (r *Remote) ListItems(ctx context.Context, userID, zoneID string) ([]domain.InventoryItem, error) {
	filter := ownedBy(userID)
	if zoneID != "" {
		filter[remote.FieldZoneID] = zoneID
	}
	return r.gw.Items().List(ctx, remote.Query{Filter: filter, OrderBy: remote.FieldCreatedAt, Desc: true})
}

func (r *Remote) CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	return r.gw.Items().Create(ctx, item)
}

func (r *Remote) UpdateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	err := r.gw.Items().Update(ctx, item.ID, remote.Fields{
		"zone_id":           item.ZoneID,
		"name":              item.Name,
		"quantity":          item.Quantity,
		"unit":              item.Unit,
		"cost_per_unit":     item.CostPerUnit,
		"reorder_threshold": item.ReorderThreshold,
		"notes":             item.Notes,
		"image_url":         item.ImageURL,
		"updated_at":        r.now().UTC(),
	})
	if err != nil {
		return domain.InventoryItem{}, notFoundRemote(err)
	}
	return fetchOne(ctx, r.gw.Items(), item.UserID, item.ID)
}

func (r *Remote) DeleteItem(ctx context.Context, userID, id string) error {
	return r.gw.Items().Delete(ctx, id)
}

// Stats loads the three collections concurrently and aggregates them.
func (r *Remote) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	var (
		images []domain.Image
		zones  []domain.Zone
		items  []domain.InventoryItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		images, err = r.ListImages(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		zones, err = r.ListZones(gctx, userID, "")
		return err
	})
	g.Go(func() (err error) {
		items, err = r.ListItems(gctx, userID, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Stats{}, err
	}
	return stats.Compute(images, zones, items), nil
}

func fetchOne[T any](ctx context.Context, recs remote.Records[T], userID, id string) (T, error) {
	var zero T
	out, err := recs.List(ctx, remote.Query{Filter: map[string]string{"id": id, remote.FieldUserID: userID}, Limit: 1})
	if err != nil {
		return zero, err
	}
	if len(out) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return out[0], nil
}

func notFoundRemote(err error) error {
	if errors.Is(err, remote.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
