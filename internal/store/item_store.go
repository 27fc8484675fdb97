package store

import (
	"context"
	"database/sql"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/remote"
)

var itemsTable = table{
	name: "inventory_items",
	columns: []string{
		"id", "zone_id", "name", "quantity", "unit", "cost_per_unit", "reorder_threshold",
		"notes", "image_url", "user_id", "created_at", "updated_at",
	},
	readOnly: []string{"user_id", "created_at"},
}

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) List(ctx context.Context, userID string, q remote.Query) ([]domain.InventoryItem, error) {
	return list(ctx, s.db, itemsTable, userID, q, scanItem)
}

func (s *ItemStore) Create(ctx context.Context, it domain.InventoryItem) (domain.InventoryItem, error) {
	err := insert(ctx, s.db, itemsTable,
		it.ID, it.ZoneID, it.Name, it.Quantity, it.Unit, it.CostPerUnit, it.ReorderThreshold,
		it.Notes, it.ImageURL, it.UserID, it.CreatedAt.UTC(), it.UpdatedAt.UTC())
	if err != nil {
		return domain.InventoryItem{}, err
	}
	return it, nil
}

func (s *ItemStore) Update(ctx context.Context, userID, id string, fields remote.Fields) error {
	return update(ctx, s.db, itemsTable, userID, id, fields)
}

func (s *ItemStore) Delete(ctx context.Context, userID, id string) error {
	return remove(ctx, s.db, itemsTable, userID, id)
}

func scanItem(sc scanner) (domain.InventoryItem, error) {
	var (
		it        domain.InventoryItem
		cost      sql.NullFloat64
		threshold sql.NullFloat64
	)
	err := sc.Scan(&it.ID, &it.ZoneID, &it.Name, &it.Quantity, &it.Unit, &cost, &threshold,
		&it.Notes, &it.ImageURL, &it.UserID, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	it.CostPerUnit = nullFloat(cost)
	it.ReorderThreshold = nullFloat(threshold)
	return it, nil
}
