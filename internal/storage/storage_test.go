package storage

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/kitchzone/internal/db"
	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/kv"
	"github.com/vbonduro/kitchzone/internal/localstore"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/remote/fake"
	"github.com/vbonduro/kitchzone/internal/remote/sqlgateway"
)

const user = "u1"

func ptr(f float64) *float64 { return &f }

func newLocal(t *testing.T) Storage {
	t.Helper()
	db, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewLocal(localstore.New(db, slog.Default()))
}

func newRemote(t *testing.T) Storage {
	t.Helper()
	return NewRemote(fake.New(nil), slog.Default())
}

// backends runs fn against both implementations.
func backends(t *testing.T, fn func(t *testing.T, s Storage)) {
	t.Run("local", func(t *testing.T) { fn(t, newLocal(t)) })
	t.Run("remote", func(t *testing.T) { fn(t, newRemote(t)) })
}

func seed(t *testing.T, ctx context.Context, s Storage) {
	t.Helper()
	created := time.Date(2020, 4, 1, 9, 0, 0, 0, time.UTC)

	_, err := s.CreateImage(ctx, domain.Image{ID: "img1", Name: "Pantry", ImageURL: "https://files.test/u1/img1.jpg", UserID: user, CreatedAt: created})
	require.NoError(t, err)
	_, err = s.CreateZone(ctx, domain.Zone{ID: "z1", ImageID: "img1", Name: "Top Shelf", UserID: user, CreatedAt: created})
	require.NoError(t, err)
	_, err = s.CreateItem(ctx, domain.InventoryItem{ID: "i1", ZoneID: "z1", Name: "Rice", Quantity: 2, ReorderThreshold: ptr(5), UserID: user, CreatedAt: created, UpdatedAt: created})
	require.NoError(t, err)
}

func TestEndToEndScenario(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seed(t, context.Background(), s)

		got, err := s.Stats(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, domain.Stats{TotalImages: 1, TotalZones: 1, TotalItems: 1, LowStockItems: 1, ReorderSuggestions: 1}, got)

		require.NoError(t, s.DeleteZone(ctx, user, "z1"))

		items, err := s.ListItems(ctx, user, "")
		require.NoError(t, err)
		assert.Empty(t, items)

		got, err = s.Stats(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, domain.Stats{TotalImages: 1}, got)
	})
}

func TestDeleteImage_ZonesSurvive(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seed(t, context.Background(), s)

		require.NoError(t, s.DeleteImage(ctx, user, "img1"))

		zones, err := s.ListZones(ctx, user, "img1")
		require.NoError(t, err)
		assert.Len(t, zones, 1)
	})
}

func TestDeleteTwice(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seed(t, context.Background(), s)

		require.NoError(t, s.DeleteItem(ctx, user, "i1"))
		require.NoError(t, s.DeleteItem(ctx, user, "i1"))
	})
}

func TestUpdateItem(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seed(t, context.Background(), s)

		updated, err := s.UpdateItem(ctx, domain.InventoryItem{ID: "i1", ZoneID: "z1", Name: "Rice", Quantity: 15, ReorderThreshold: ptr(5), UserID: user})
		require.NoError(t, err)
		assert.Equal(t, 15.0, updated.Quantity)
		assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
		assert.Equal(t, 2020, updated.CreatedAt.Year(), "created_at is kept")

		_, err = s.UpdateItem(ctx, domain.InventoryItem{ID: "missing", UserID: user})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateZone(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		ctx := context.Background()
		seed(t, context.Background(), s)

		z, err := s.UpdateZone(ctx, domain.Zone{ID: "z1", ImageID: "img1", Name: "Bottom Shelf", Width: -30, UserID: user})
		require.NoError(t, err)
		assert.Equal(t, "Bottom Shelf", z.Name)
		assert.Equal(t, -30.0, z.Width)

		_, err = s.UpdateZone(ctx, domain.Zone{ID: "nope", UserID: user})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListIsScopedToUser(t *testing.T) {
	backends(t, func(t *testing.T, s Storage) {
		seed(t, context.Background(), s)

		images, err := s.ListImages(context.Background(), "someone-else")
		require.NoError(t, err)
		assert.Empty(t, images)
	})
}

func TestRemoteDeleteZone_CascadeFailureKeepsZoneDeleted(t *testing.T) {
	gw := fake.New(nil)
	s := NewRemote(gw, slog.Default())
	seed(t, context.Background(), s)
	gw.ItemRecs.DeleteErr = errors.New("boom")

	err := s.DeleteZone(context.Background(), user, "z1")
	assert.ErrorIs(t, err, ErrCascade)
	assert.Empty(t, gw.ZoneRecs.All())
	assert.Len(t, gw.ItemRecs.All(), 1)
}

func TestRemoteOverSQL_UsersCannotTouchEachOthersRecords(t *testing.T) {
	d, err := db.Open(filepath.Join(t.TempDir(), "kitchzone.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	s := NewRemote(sqlgateway.New(d, nil, map[string]domain.User{
		"tok-u1":  {ID: user},
		"tok-bob": {ID: "bob"},
	}), slog.Default())
	owner := remote.WithToken(context.Background(), "tok-u1")
	bob := remote.WithToken(context.Background(), "tok-bob")

	seed(t, owner, s)

	_, err = s.UpdateZone(bob, domain.Zone{ID: "z1", ImageID: "img1", Name: "pwned", UserID: "bob"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.DeleteImage(bob, "bob", "img1"))
	require.NoError(t, s.DeleteItem(bob, "bob", "i1"))

	zones, err := s.ListZones(owner, user, "")
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Top Shelf", zones[0].Name)

	got, err := s.Stats(owner, user)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalImages)
	assert.Equal(t, 1, got.TotalItems)
}
