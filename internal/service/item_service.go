package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/kitchzone/internal/domain"
)

type ItemService struct {
	router *Router
	logger *slog.Logger
	now    func() time.Time
}

func NewItemService(router *Router, logger *slog.Logger) *ItemService {
	return &ItemService{router: router, logger: logger, now: time.Now}
}

// ItemInput is the editable part of an inventory item.
type ItemInput struct {
	ZoneID           string   `json:"zone_id"`
	Name             string   `json:"name"`
	Quantity         float64  `json:"quantity"`
	Unit             string   `json:"unit"`
	CostPerUnit      *float64 `json:"cost_per_unit,omitempty"`
	ReorderThreshold *float64 `json:"reorder_threshold,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	ImageURL         string   `json:"image_url,omitempty"`
}

func (s *ItemService) List(ctx context.Context, userID, zoneID string) ([]domain.InventoryItem, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := st.ListItems(ctx, userID, zoneID)
	return degradeList(s.logger, "list items", st.Name(), items, err)
}

func (s *ItemService) Create(ctx context.Context, userID string, in ItemInput) (domain.InventoryItem, error) {
	now := s.now().UTC()
	item := in.item(uuid.NewString(), userID)
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := validateRecord(item); err != nil {
		return domain.InventoryItem{}, err
	}

	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item, err = st.CreateItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, normalize(s.logger, "create item", st.Name(), err)
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, userID, id string, in ItemInput) (domain.InventoryItem, error) {
	item := in.item(id, userID)
	item.UpdatedAt = s.now().UTC()
	if err := validateRecord(item); err != nil {
		return domain.InventoryItem{}, err
	}

	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	item, err = st.UpdateItem(ctx, item)
	if err != nil {
		return domain.InventoryItem{}, normalize(s.logger, fmt.Sprintf("update item %s", id), st.Name(), err)
	}
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return err
	}
	if err := st.DeleteItem(ctx, userID, id); err != nil {
		return normalize(s.logger, fmt.Sprintf("delete item %s", id), st.Name(), err)
	}
	return nil
}

func (in ItemInput) item(id, userID string) domain.InventoryItem {
	return domain.InventoryItem{
		ID:               id,
		ZoneID:           in.ZoneID,
		Name:             in.Name,
		Quantity:         in.Quantity,
		Unit:             in.Unit,
		CostPerUnit:      in.CostPerUnit,
		ReorderThreshold: in.ReorderThreshold,
		Notes:            in.Notes,
		ImageURL:         in.ImageURL,
		UserID:           userID,
	}
}
