package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
	"github.com/vbonduro/kitchzone/internal/vision"
)

type ImageService struct {
	router    *Router
	files     filestore.Uploader
	visionAPI vision.VisionAnalyzer
	logger    *slog.Logger
	now       func() time.Time
}

// NewImageService wires image operations. visionAPI may be nil, in which case
// uploads never carry suggestions.
func NewImageService(router *Router, files filestore.Uploader, visionAPI vision.VisionAnalyzer, logger *slog.Logger) *ImageService {
	return &ImageService{router: router, files: files, visionAPI: visionAPI, logger: logger, now: time.Now}
}

// UploadResult is a stored image plus any items the vision model spotted in
// it. Suggestions are never persisted automatically.
type UploadResult struct {
	Image       domain.Image `json:"image"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Suggestion pairs what the model saw with an item draft. The draft has no
// zone; the caller picks one before creating it.
type Suggestion struct {
	Detected vision.DetectedItem `json:"detected"`
	Item     ItemInput           `json:"item"`
}

func newSuggestion(d vision.DetectedItem) Suggestion {
	in := ItemInput{Name: d.Name, Notes: d.Notes}
	if value, unit, ok := d.Amount(); ok {
		in.Quantity, in.Unit = value, unit
	} else if d.Quantity != "" {
		// keep "a few" and the like where the user can see it
		in.Notes = strings.TrimSpace(strings.Join([]string{d.Quantity, d.Notes}, "; "))
		in.Notes = strings.TrimSuffix(in.Notes, ";")
	}
	return Suggestion{Detected: d, Item: in}
}

func (s *ImageService) List(ctx context.Context, userID string) ([]domain.Image, error) {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	images, err := st.ListImages(ctx, userID)
	return degradeList(s.logger, "list images", st.Name(), images, err)
}

// Upload sends the photo to file storage, then records it in whichever
// backend is selected. File storage is used even when records are kept
// locally.
func (s *ImageService) Upload(ctx context.Context, userID, name string, imageData []byte, mimeType string, suggest bool) (*UploadResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Fields: []string{"name"}}
	}
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("upload image started", "user_id", userID, "mime_type", mimeType, "bytes", len(imageData), "backend", st.Name())

	id := uuid.NewString()
	uploaded, err := s.files.Upload(ctx, bytes.NewReader(imageData), filestore.ObjectPath(userID, id, mimeType),
		filestore.UploadOptions{ContentType: mimeType})
	if err != nil {
		return nil, normalize(s.logger, "upload image file", "files", err)
	}
	s.logger.Debug("image file uploaded", "user_id", userID, "path", uploaded.Path)

	img := domain.Image{
		ID:        id,
		Name:      strings.TrimSpace(name),
		ImageURL:  uploaded.PublicURL,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	if err := validateRecord(img); err != nil {
		return nil, err
	}
	img, err = st.CreateImage(ctx, img)
	if err != nil {
		return nil, normalize(s.logger, "create image", st.Name(), err)
	}

	res := &UploadResult{Image: img}
	if suggest && s.visionAPI != nil {
		res.Suggestions = s.suggest(ctx, userID, imageData, mimeType)
	}
	s.logger.Info("upload image complete", "user_id", userID, "image_id", img.ID, "suggestions", len(res.Suggestions))
	return res, nil
}

// suggest runs vision analysis. A failure only costs the suggestions.
func (s *ImageService) suggest(ctx context.Context, userID string, imageData []byte, mimeType string) []Suggestion {
	result, err := s.visionAPI.Analyze(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		s.logger.Warn("vision analysis failed", "user_id", userID, "error", err)
		return nil
	}
	out := make([]Suggestion, 0, len(result.Items))
	for _, d := range result.Items {
		out = append(out, newSuggestion(d))
	}
	return out
}

// Delete removes the image record. Zones drawn on it are kept.
func (s *ImageService) Delete(ctx context.Context, userID, id string) error {
	st, err := s.router.Storage(ctx, userID)
	if err != nil {
		return err
	}
	if err := st.DeleteImage(ctx, userID, id); err != nil {
		return normalize(s.logger, fmt.Sprintf("delete image %s", id), st.Name(), err)
	}
	return nil
}
