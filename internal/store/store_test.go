package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/kitchzone/internal/db"
	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func ptr(f float64) *float64 { return &f }

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestImageStoreListOrderAndFilter(t *testing.T) {
	images := NewImageStore(openTestDB(t))
	ctx := context.Background()

	for i, name := range []string{"Pantry", "Fridge", "Freezer"} {
		_, err := images.Create(ctx, domain.Image{
			ID: name, Name: name, ImageURL: "https://files.test/" + name, UserID: "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := images.Create(ctx, domain.Image{ID: "other", Name: "Other", ImageURL: "x", UserID: "u2", CreatedAt: base})
	require.NoError(t, err)

	list, err := images.List(ctx, "u1", remote.Query{
		OrderBy: remote.FieldCreatedAt,
		Desc:    true,
	})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Freezer", list[0].Name)
	assert.Equal(t, "Pantry", list[2].Name)
	assert.True(t, base.Equal(list[2].CreatedAt))

	limited, err := images.List(ctx, "u1", remote.Query{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Pantry", limited[0].Name, "insertion order without OrderBy")
}

func TestImageStoreCreateDuplicate(t *testing.T) {
	images := NewImageStore(openTestDB(t))
	img := domain.Image{ID: "img1", Name: "Pantry", ImageURL: "x", UserID: "u1", CreatedAt: base}

	_, err := images.Create(context.Background(), img)
	require.NoError(t, err)
	_, err = images.Create(context.Background(), img)
	assert.Error(t, err)
}

func TestItemStoreRoundTripNullables(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	_, err := items.Create(ctx, domain.InventoryItem{
		ID: "i1", ZoneID: "z1", Name: "Rice", Quantity: 2, Unit: "kg",
		ReorderThreshold: ptr(5), UserID: "u1", CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)

	list, err := items.List(ctx, "u1", remote.Query{Filter: map[string]string{remote.FieldZoneID: "z1"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CostPerUnit)
	require.NotNil(t, list[0].ReorderThreshold)
	assert.Equal(t, 5.0, *list[0].ReorderThreshold)
	assert.Equal(t, "kg", list[0].Unit)
}

func TestItemStoreUpdate(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	_, err := items.Create(ctx, domain.InventoryItem{ID: "i1", ZoneID: "z1", Name: "Rice", UserID: "u1", CreatedAt: base, UpdatedAt: base})
	require.NoError(t, err)

	later := base.Add(time.Hour)
	require.NoError(t, items.Update(ctx, "u1", "i1", remote.Fields{"quantity": 7.5, "updated_at": later}))

	list, err := items.List(ctx, "u1", remote.Query{Filter: map[string]string{"id": "i1"}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7.5, list[0].Quantity)
	assert.True(t, later.Equal(list[0].UpdatedAt))

	assert.ErrorIs(t, items.Update(ctx, "u1", "missing", remote.Fields{"quantity": 1.0}), remote.ErrRecordNotFound)
}

func TestItemStoreUpdateRejectsReadOnlyColumns(t *testing.T) {
	items := NewItemStore(openTestDB(t))
	ctx := context.Background()

	for _, fields := range []remote.Fields{
		{"user_id": "u2"},
		{"created_at": base},
		{"id": "i2"},
		{"colour": "red"},
		{},
	} {
		assert.Error(t, items.Update(ctx, "u1", "i1", fields))
	}
}

func TestZoneStoreUnknownFilterColumn(t *testing.T) {
	zones := NewZoneStore(openTestDB(t))

	_, err := zones.List(context.Background(), "u1", remote.Query{Filter: map[string]string{"shelf": "top"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = zones.List(context.Background(), "u1", remote.Query{OrderBy: "shelf"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestZoneStoreDeleteIsIdempotent(t *testing.T) {
	zones := NewZoneStore(openTestDB(t))
	ctx := context.Background()

	_, err := zones.Create(ctx, domain.Zone{ID: "z1", ImageID: "img1", Name: "Top Shelf", Width: 10, UserID: "u1", CreatedAt: base})
	require.NoError(t, err)

	require.NoError(t, zones.Delete(ctx, "u1", "z1"))
	require.NoError(t, zones.Delete(ctx, "u1", "z1"))

	list, err := zones.List(ctx, "u1", remote.Query{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSelectQuery(t *testing.T) {
	query, args, err := zonesTable.selectQuery("u1", remote.Query{
		Filter:  map[string]string{"image_id": "img1"},
		OrderBy: "created_at",
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, image_id, name, x, y, width, height, color, user_id, created_at FROM zones"+
			" WHERE image_id = ? AND user_id = ? ORDER BY created_at ASC, rowid ASC LIMIT ?",
		query)
	assert.Equal(t, []any{"img1", "u1", 2}, args)
}

func TestOwnerScoping(t *testing.T) {
	d := openTestDB(t)
	zones := NewZoneStore(d)
	images := NewImageStore(d)
	ctx := context.Background()

	_, err := images.Create(ctx, domain.Image{ID: "imgA", Name: "Pantry", ImageURL: "x", UserID: "alice", CreatedAt: base})
	require.NoError(t, err)
	_, err = zones.Create(ctx, domain.Zone{ID: "zA", ImageID: "imgA", Name: "Top Shelf", UserID: "alice", CreatedAt: base})
	require.NoError(t, err)

	err = zones.Update(ctx, "bob", "zA", remote.Fields{"name": "renamed"})
	assert.ErrorIs(t, err, remote.ErrRecordNotFound)
	require.NoError(t, images.Delete(ctx, "bob", "imgA"))
	require.NoError(t, zones.Delete(ctx, "bob", "zA"))

	list, err := zones.List(ctx, "alice", remote.Query{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Top Shelf", list[0].Name)

	imgs, err := images.List(ctx, "alice", remote.Query{})
	require.NoError(t, err)
	assert.Len(t, imgs, 1)

	imgs, err = images.List(ctx, "bob", remote.Query{Filter: map[string]string{remote.FieldUserID: "alice"}})
	require.NoError(t, err)
	assert.Empty(t, imgs)
}

func TestUpdateQueryScopesOwner(t *testing.T) {
	query, args, err := zonesTable.updateQuery("u1", "z1", remote.Fields{"name": "Shelf"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE zones SET name = ? WHERE id = ? AND user_id = ?", query)
	assert.Equal(t, []any{"Shelf", "z1", "u1"}, args)
}
