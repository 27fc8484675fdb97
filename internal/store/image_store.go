package store

import (
	"context"
	"database/sql"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
)

var imagesTable = table{
	name:     "images",
	columns:  []string{"id", "name", "image_url", "user_id", "created_at"},
	readOnly: []string{"user_id", "created_at"},
}

type ImageStore struct {
	db *sql.DB
}

func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

func (s *ImageStore) List(ctx context.Context, userID string, q remote.Query) ([]domain.Image, error) {
	return list(ctx, s.db, imagesTable, userID, q, scanImage)
}

func (s *ImageStore) Create(ctx context.Context, img domain.Image) (domain.Image, error) {
	err := insert(ctx, s.db, imagesTable, img.ID, img.Name, img.ImageURL, img.UserID, img.CreatedAt.UTC())
	if err != nil {
		return domain.Image{}, err
	}
	return img, nil
}

func (s *ImageStore) Update(ctx context.Context, userID, id string, fields remote.Fields) error {
	return update(ctx, s.db, imagesTable, userID, id, fields)
}

func (s *ImageStore) Delete(ctx context.Context, userID, id string) error {
	return remove(ctx, s.db, imagesTable, userID, id)
}

func scanImage(sc scanner) (domain.Image, error) {
	var img domain.Image
	err := sc.Scan(&img.ID, &img.Name, &img.ImageURL, &img.UserID, &img.CreatedAt)
	return img, err
}
