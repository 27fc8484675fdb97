// Package localstore keeps images, zones and inventory items on the device
// when the remote backend cannot be used.
//
// Each (collection, user) pair is stored as one JSON array under a namespaced
// key. Every write is a full read-modify-write of that array; writes to the
// same key are serialized by a per-key lock.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/metrics"
	"github.com/vbonduro/kitchzone/internal/stats"
)

// Namespace prefixes every key written by the store.
const Namespace = "kitchzone"

const keySeparator = ":"

// Collection names.
const (
	CollectionImages    = "images"
	CollectionZones     = "zones"
	CollectionInventory = "inventory"
)

// ErrCorruptRecord is returned when a stored collection cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt local record")

// ErrNotFound is returned by the Replace operations when no record has the
// given id.
var ErrNotFound = errors.New("local record not found")

// ErrMissingUser is returned when an operation is not scoped to a user.
var ErrMissingUser = errors.New("user id required")

// Medium is the byte-level key-value storage the store writes to.
// A missing key is reported with ok == false, not an error. Deleting a
// missing key is not an error either.
type Medium interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type record interface {
	domain.Image | domain.Zone | domain.InventoryItem
	RecordID() string
}

// Store is the local persistence store. It is safe for concurrent use.
type Store struct {
	medium Medium
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(medium Medium, logger *slog.Logger) *Store {
	return &Store{
		medium: medium,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Key returns the storage key for a user's collection.
func Key(collection, userID string) string {
	return strings.Join([]string{Namespace, collection, userID}, keySeparator)
}

// lock acquires the write lock for key and returns its release func.
func (s *Store) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func load[T record](ctx context.Context, s *Store, key string) ([]T, error) {
	raw, ok, err := s.medium.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// save writes the collection. An empty collection drops its key, which reads
// back the same as never written.
func save[T record](ctx context.Context, s *Store, key string, records []T) error {
	if len(records) == 0 {
		if err := s.medium.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
		return nil
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.medium.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func list[T record](ctx context.Context, s *Store, collection, userID string, keep func(T) bool) ([]T, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	metrics.LocalStoreOps.WithLabelValues(collection, "list").Inc()

	records, err := load[T](ctx, s, Key(collection, userID))
	if err != nil {
		return nil, err
	}
	if keep == nil {
		return records, nil
	}

	filtered := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// placement says where upsert puts a record whose id is not stored yet.
type placement int

const (
	atHead placement = iota
	atTail
	// mustExist rejects the write with ErrNotFound instead of inserting.
	mustExist
)

// upsert replaces the record with the same id in place, or places it
// according to where. replace, when set, derives the stored value from the
// previous and new record.
func upsert[T record](ctx context.Context, s *Store, collection, userID string, rec T, where placement, replace func(old, rec T) T) (T, error) {
	var zero T
	if userID == "" {
		return zero, ErrMissingUser
	}
	metrics.LocalStoreOps.WithLabelValues(collection, "upsert").Inc()

	key := Key(collection, userID)
	unlock := s.lock(key)
	defer unlock()

	records, err := load[T](ctx, s, key)
	if err != nil {
		return zero, err
	}

	found := false
	for i := range records {
		if records[i].RecordID() == rec.RecordID() {
			if replace != nil {
				rec = replace(records[i], rec)
			}
			records[i] = rec
			found = true
			break
		}
	}
	if !found {
		switch where {
		case atHead:
			records = append([]T{rec}, records...)
		case atTail:
			records = append(records, rec)
		default:
			return zero, fmt.Errorf("%w: %s %s", ErrNotFound, collection, rec.RecordID())
		}
	}

	if err := save(ctx, s, key, records); err != nil {
		return zero, err
	}
	return rec, nil
}

// remove drops every record matching drop. It does not write when nothing
// matched.
func remove[T record](ctx context.Context, s *Store, collection, userID string, drop func(T) bool) (int, error) {
	if userID == "" {
		return 0, ErrMissingUser
	}
	metrics.LocalStoreOps.WithLabelValues(collection, "delete").Inc()

	key := Key(collection, userID)
	unlock := s.lock(key)
	defer unlock()

	records, err := load[T](ctx, s, key)
	if err != nil {
		return 0, err
	}

	kept := make([]T, 0, len(records))
	for _, r := range records {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := save(ctx, s, key, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) ListImages(ctx context.Context, userID string) ([]domain.Image, error) {
	return list[domain.Image](ctx, s, CollectionImages, userID, nil)
}

// UpsertImage stores img, newest first.
func (s *Store) UpsertImage(ctx context.Context, userID string, img domain.Image) (domain.Image, error) {
	img.UserID = userID
	return upsert(ctx, s, CollectionImages, userID, img, atHead, nil)
}

// DeleteImage removes the image only. Zones that reference it are kept.
func (s *Store) DeleteImage(ctx context.Context, userID, id string) error {
	_, err := remove(ctx, s, CollectionImages, userID, func(img domain.Image) bool { return img.ID == id })
	return err
}

// ListZones returns the user's zones, restricted to imageID when it is set.
func (s *Store) ListZones(ctx context.Context, userID, imageID string) ([]domain.Zone, error) {
	var keep func(domain.Zone) bool
	if imageID != "" {
		keep = func(z domain.Zone) bool { return z.ImageID == imageID }
	}
	return list(ctx, s, CollectionZones, userID, keep)
}

// UpsertZone stores z, oldest first.
func (s *Store) UpsertZone(ctx context.Context, userID string, z domain.Zone) (domain.Zone, error) {
	z.UserID = userID
	return upsert(ctx, s, CollectionZones, userID, z, atTail, nil)
}

// ReplaceZone overwrites an existing zone, keeping its position and
// CreatedAt.
func (s *Store) ReplaceZone(ctx context.Context, userID string, z domain.Zone) (domain.Zone, error) {
	z.UserID = userID
	return upsert(ctx, s, CollectionZones, userID, z, mustExist, func(old, rec domain.Zone) domain.Zone {
		rec.CreatedAt = old.CreatedAt
		return rec
	})
}

// DeleteZone removes the zone and then every item anchored to it.
func (s *Store) DeleteZone(ctx context.Context, userID, id string) error {
	if _, err := remove(ctx, s, CollectionZones, userID, func(z domain.Zone) bool { return z.ID == id }); err != nil {
		return err
	}
	if err := s.DeleteItemsByZone(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to cascade zone %s: %w", id, err)
	}
	return nil
}

// ListItems returns the user's items, restricted to zoneID when it is set.
func (s *Store) ListItems(ctx context.Context, userID, zoneID string) ([]domain.InventoryItem, error) {
	var keep func(domain.InventoryItem) bool
	if zoneID != "" {
		keep = func(i domain.InventoryItem) bool { return i.ZoneID == zoneID }
	}
	return list(ctx, s, CollectionInventory, userID, keep)
}

// UpsertItem stores item, newest first. Replacing an existing item stamps
// UpdatedAt and keeps the original CreatedAt; a fresh insert is stored as given.
func (s *Store) UpsertItem(ctx context.Context, userID string, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.UserID = userID
	return upsert(ctx, s, CollectionInventory, userID, item, atHead, s.stampItem)
}

// ReplaceItem overwrites an existing item the same way UpsertItem does, but
// returns ErrNotFound instead of inserting.
func (s *Store) ReplaceItem(ctx context.Context, userID string, item domain.InventoryItem) (domain.InventoryItem, error) {
	item.UserID = userID
	return upsert(ctx, s, CollectionInventory, userID, item, mustExist, s.stampItem)
}

func (s *Store) stampItem(old, rec domain.InventoryItem) domain.InventoryItem {
	rec.CreatedAt = old.CreatedAt
	rec.UpdatedAt = s.now()
	return rec
}

func (s *Store) DeleteItem(ctx context.Context, userID, id string) error {
	_, err := remove(ctx, s, CollectionInventory, userID, func(i domain.InventoryItem) bool { return i.ID == id })
	return err
}

// DeleteItemsByZone removes every item anchored to zoneID.
func (s *Store) DeleteItemsByZone(ctx context.Context, userID, zoneID string) error {
	n, err := remove(ctx, s, CollectionInventory, userID, func(i domain.InventoryItem) bool { return i.ZoneID == zoneID })
	if err != nil {
		return err
	}
	if n > 0 && s.logger != nil {
		s.logger.Debug("cascade deleted items", "user_id", userID, "zone_id", zoneID, "count", n)
	}
	return nil
}

// Stats aggregates the user's three collections.
func (s *Store) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	images, err := s.ListImages(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	zones, err := s.ListZones(ctx, userID, "")
	if err != nil {
		return domain.Stats{}, err
	}
	items, err := s.ListItems(ctx, userID, "")
	if err != nil {
		return domain.Stats{}, err
	}
	return stats.Compute(images, zones, items), nil
}
