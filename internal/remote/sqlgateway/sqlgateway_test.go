package sqlgateway

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
	"github.com/vbonduro/kitchzone/internal/filestore/local"
	"github.com/vbonduro/kitchzone/internal/remote"
)

func newTestGateway(t *testing.T) (*Gateway, *sql.DB) {
	t.Helper()
	dir := t.TempDir()
	d, err := db.Open(filepath.Join(dir, "kitchzone.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	files, err := local.NewFileStore(filepath.Join(dir, "files"), "http://localhost/files")
	require.NoError(t, err)

	tokens := map[string]domain.User{
		"tok":     {ID: "owner", Email: "owner@example.com"},
		"tok-bob": {ID: "bob", Email: "bob@example.com"},
	}
	return New(d, files, tokens), d
}

func TestCurrentUser(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	user, err := g.Auth().CurrentUser(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "owner", user.ID)

	_, err = g.Auth().CurrentUser(ctx, "nope")
	assert.Equal(t, remote.KindUnauthenticated, remote.KindOf(err))
}

func TestRecordsRoundTrip(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := remote.WithToken(context.Background(), "tok")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := g.Zones().Create(ctx, domain.Zone{ID: "z1", ImageID: "img1", Name: "Top Shelf", Width: -40, Height: 20, UserID: "owner", CreatedAt: now})
	require.NoError(t, err)

	zones, err := g.Zones().List(ctx, remote.Query{Filter: map[string]string{remote.FieldUserID: "owner", remote.FieldImageID: "img1"}})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, -40.0, zones[0].Width)
	assert.True(t, now.Equal(zones[0].CreatedAt))

	require.NoError(t, g.Zones().Update(ctx, "z1", remote.Fields{"name": "Bottom Shelf"}))
	err = g.Zones().Update(ctx, "missing", remote.Fields{"name": "x"})
	assert.ErrorIs(t, err, remote.ErrRecordNotFound)

	require.NoError(t, g.Zones().Delete(ctx, "z1"))
	require.NoError(t, g.Zones().Delete(ctx, "z1"))
}

func TestMissingTableIsClassified(t *testing.T) {
	g, d := newTestGateway(t)
	_, err := d.Exec("DROP TABLE images")
	require.NoError(t, err)

	_, err = g.Images().List(remote.WithToken(context.Background(), "tok"), remote.Query{Limit: 1})
	require.Error(t, err)
	assert.Equal(t, remote.KindRelationMissing, remote.KindOf(err))
}

func TestRecords_RequireToken(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.Images().List(context.Background(), remote.Query{})
	assert.Equal(t, remote.KindUnauthenticated, remote.KindOf(err))

	err = g.Zones().Delete(remote.WithToken(context.Background(), "stale"), "z1")
	assert.Equal(t, remote.KindUnauthenticated, remote.KindOf(err))
}

func TestRecords_ScopedToTokenOwner(t *testing.T) {
	g, _ := newTestGateway(t)
	owner := remote.WithToken(context.Background(), "tok")
	bob := remote.WithToken(context.Background(), "tok-bob")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := g.Images().Create(owner, domain.Image{ID: "imgA", Name: "Pantry", ImageURL: "x", UserID: "owner", CreatedAt: now})
	require.NoError(t, err)
	_, err = g.Zones().Create(owner, domain.Zone{ID: "zA", ImageID: "imgA", Name: "Top Shelf", UserID: "owner", CreatedAt: now})
	require.NoError(t, err)

	_, err = g.Zones().Create(bob, domain.Zone{ID: "zB", ImageID: "imgA", Name: "Sneaky", UserID: "owner", CreatedAt: now})
	assert.Error(t, err, "cannot create rows for another user")

	zones, err := g.Zones().List(bob, remote.Query{})
	require.NoError(t, err)
	assert.Empty(t, zones)
	zones, err = g.Zones().List(bob, remote.Query{Filter: map[string]string{remote.FieldUserID: "owner"}})
	require.NoError(t, err)
	assert.Empty(t, zones)

	err = g.Zones().Update(bob, "zA", remote.Fields{"name": "renamed"})
	assert.ErrorIs(t, err, remote.ErrRecordNotFound)
	require.NoError(t, g.Images().Delete(bob, "imgA"))

	zones, err = g.Zones().List(owner, remote.Query{})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Equal(t, "Top Shelf", zones[0].Name)

	images, err := g.Images().List(owner, remote.Query{})
	require.NoError(t, err)
	assert.Len(t, images, 1)
}
