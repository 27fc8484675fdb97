package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/localstore"
	"github.com/vbonduro/kitchzone/internal/stats"
	"github.com/vbonduro/kitchzone/internal/storage"
)

// ReorderService serves the dashboard counts and the restock workflow.
type ReorderService struct {
	router *Router
	logger *slog.Logger
}

func NewReorderService(router *Router, logger *slog.Logger) *ReorderService {
	return &ReorderService{router: router, logger: logger}
}

// Stats returns the user's dashboard counts. A corrupt local collection
// counts as empty.
func (s *ReorderService) Stats(ctx context.Context, userID string) (domain.Stats, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	got, err := st.Stats(ctx, userID)
	if err == nil {
		return got, nil
	}
	if !errors.Is(err, localstore.ErrCorruptRecord) {
		return domain.Stats{}, normalize(s.logger, "stats", st.Name(), err)
	}

	images, err := st.ListImages(ctx, userID)
	if images, err = degradeList(s.logger, "list images", st.Name(), images, err); err != nil {
		return domain.Stats{}, err
	}
	zones, items, err := s.load(ctx, st, userID)
	if err != nil {
		return domain.Stats{}, err
	}
	return stats.Compute(images, zones, items), nil
}

// Suggestions returns a pre-selected candidate for every low-stock item.
func (s *ReorderService) Suggestions(ctx context.Context, userID string) ([]domain.ReorderCandidate, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	zones, items, err := s.load(ctx, st, userID)
	if err != nil {
		return nil, err
	}
	return stats.ReorderSuggestions(items, zones), nil
}

// Restock sets each chosen low-stock item to its suggested quantity. An empty
// itemIDs restocks every candidate. Writes are issued one at a time; the items
// written before a failure stay written and are returned with the error.
func (s *ReorderService) Restock(ctx context.Context, userID string, itemIDs []string) ([]domain.InventoryItem, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	zones, items, err := s.load(ctx, st, userID)
	if err != nil {
		return nil, err
	}

	restocked := make([]domain.InventoryItem, 0)
	for _, c := range stats.ReorderSuggestions(items, zones) {
		if len(itemIDs) > 0 && !slices.Contains(itemIDs, c.Item.ID) {
			continue
		}
		item := c.Item
		item.Quantity = c.SuggestedQuantity
		updated, err := st.UpdateItem(ctx, item)
		if err != nil {
			return restocked, normalize(s.logger, fmt.Sprintf("restock item %s", item.ID), st.Name(), err)
		}
		restocked = append(restocked, updated)
	}
	s.logger.Info("restocked items", "user_id", userID, "count", len(restocked), "backend", st.Name())
	return restocked, nil
}

// load reads zones and items concurrently; they live under different keys.
func (s *ReorderService) load(ctx context.Context, st storage.Storage, userID string) ([]domain.Zone, []domain.InventoryItem, error) {
	var (
		zones []domain.Zone
		items []domain.InventoryItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		z, err := st.ListZones(gctx, userID, "")
		zones, err = degradeList(s.logger, "list zones", st.Name(), z, err)
		return err
	})
	g.Go(func() error {
		i, err := st.ListItems(gctx, userID, "")
		items, err = degradeList(s.logger, "list items", st.Name(), i, err)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return zones, items, nil
}
