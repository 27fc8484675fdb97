package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/storage"
)

type ZoneService struct {
	router *Router
	logger *slog.Logger
	now    func() time.Time
}

func NewZoneService(router *Router, logger *slog.Logger) *ZoneService {
	return &ZoneService{router: router, logger: logger, now: time.Now}
}

// ZoneInput is a zone as drawn by the user. Width and Height keep the sign
// of the drag direction. An empty Color gets a random hue.
type ZoneInput struct {
	ImageID string  `json:"image_id"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Color   string  `json:"color"`
}

// RandomColor returns a decorative hue for a new zone.
func RandomColor() string {
	return fmt.Sprintf("hsl(%d, 70%%, 50%%)", rand.IntN(360))
}

func (s *ZoneService) List(ctx context.Context, userID, imageID string) ([]domain.Zone, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	zones, err := st.ListZones(ctx, userID, imageID)
	return degradeList(s.logger, "list zones", st.Name(), zones, err)
}

func (s *ZoneService) Create(ctx context.Context, userID string, in ZoneInput) (domain.Zone, error) {
	z := in.zone(uuid.NewString(), userID)
	z.CreatedAt = s.now().UTC()
	if z.Color == "" {
		z.Color = RandomColor()
	}
	if err := validateRecord(z); err != nil {
		return domain.Zone{}, err
	}

	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return domain.Zone{}, err
	}
	z, err = st.CreateZone(ctx, z)
	if err != nil {
		return domain.Zone{}, normalize(s.logger, "create zone", st.Name(), err)
	}
	return z, nil
}

func (s *ZoneService) Update(ctx context.Context, userID, id string, in ZoneInput) (domain.Zone, error) {
	z := in.zone(id, userID)
	if err := validateRecord(z); err != nil {
		return domain.Zone{}, err
	}

	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return domain.Zone{}, err
	}
	z, err = st.UpdateZone(ctx, z)
	if err != nil {
		return domain.Zone{}, normalize(s.logger, fmt.Sprintf("update zone %s", id), st.Name(), err)
	}
	return z, nil
}

// Delete removes the zone and its items. When the item cleanup fails the
// zone stays deleted and ErrTransient is returned.
func (s *ZoneService) Delete(ctx context.Context, userID, id string) error {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return err
	}
	if err := st.DeleteZone(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrCascade) {
			s.logger.Warn("zone deleted but its items were not all removed", "user_id", userID, "zone_id", id)
		}
		return normalize(s.logger, fmt.Sprintf("delete zone %s", id), st.Name(), err)
	}
	return nil
}

func (in ZoneInput) zone(id, userID string) domain.Zone {
	return domain.Zone{
		ID:      id,
		ImageID: in.ImageID,
		Name:    in.Name,
		X:       in.X,
		Y:       in.Y,
		Width:   in.Width,
		Height:  in.Height,
		Color:   in.Color,
		UserID:  userID,
	}
}
