package store

import (
	"context"
	"database/sql"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
)

var zonesTable = table{
	name:     "zones",
	columns:  []string{"id", "image_id", "name", "x", "y", "width", "height", "color", "user_id", "created_at"},
	readOnly: []string{"user_id", "created_at"},
}

type ZoneStore struct {
	db *sql.DB
}

func NewZoneStore(db *sql.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

func (s *ZoneStore) List(ctx context.Context, userID string, q remote.Query) ([]domain.Zone, error) {
	return list(ctx, s.db, zonesTable, userID, q, scanZone)
}

func (s *ZoneStore) Create(ctx context.Context, z domain.Zone) (domain.Zone, error) {
	err := insert(ctx, s.db, zonesTable,
		z.ID, z.ImageID, z.Name, z.X, z.Y, z.Width, z.Height, z.Color, z.UserID, z.CreatedAt.UTC())
	if err != nil {
		return domain.Zone{}, err
	}
	return z, nil
}

func (s *ZoneStore) Update(ctx context.Context, userID, id string, fields remote.Fields) error {
	return update(ctx, s.db, zonesTable, userID, id, fields)
}

// Delete removes the zone only. Its items are cleaned up by the caller.
func (s *ZoneStore) Delete(ctx context.Context, userID, id string) error {
	return remove(ctx, s.db, zonesTable, userID, id)
}

func scanZone(sc scanner) (domain.Zone, error) {
	var z domain.Zone
	err := sc.Scan(&z.ID, &z.ImageID, &z.Name, &z.X, &z.Y, &z.Width, &z.Height, &z.Color, &z.UserID, &z.CreatedAt)
	return z, err
}
