package web

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/kitchzone/internal/filestore"
)

const maxPhotoSize = 20 * 1024 * 1024 // 20 MB

// allowedImageTypes is the set of MIME types accepted for uploaded images.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the WHATWG sniffing algorithm (and
// therefore the stdlib) does not include a WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.svc.Images.List(r.Context(), userID(r))
	if err != nil {
		s.writeServiceError(w, r, "list images", err)
		return
	}
	writeJSON(w, http.StatusOK, images)
}

// handleUploadImage accepts a multipart form with an "image" file and a
// "name" field. With ?suggest=1 the response also carries detected items.
func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse form", nil)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file required", []string{"image"})
		return
	}
	defer closeWithLog(file, "upload file", s.logger)

	imageData, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read file", nil)
		s.logger.Error("read upload failed", "user_id", userID(r), "error", err)
		return
	}

	mimeType, ok := allowedImageMIME(imageData)
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported image format", []string{"image"})
		return
	}

	suggest := r.URL.Query().Get("suggest") == "1"
	res, err := s.svc.Images.Upload(r.Context(), userID(r), r.FormValue("name"), imageData, mimeType, suggest)
	if err != nil {
		s.writeServiceError(w, r, "upload image", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Images.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, "delete image", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetFile serves an upload kept by the local file backend. Uploads are
// stored under the owner's id, so only that user may read them.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	storedPath := path.Clean("/" + chi.URLParam(r, "*"))[1:]
	owner, _, _ := strings.Cut(storedPath, "/")
	if owner == "" || owner != userID(r) {
		http.NotFound(w, r)
		return
	}

	reader, mimeType, err := s.files.Open(r.Context(), storedPath)
	if err != nil {
		if !errors.Is(err, filestore.ErrNotFound) {
			s.logger.Warn("open file failed", "path", r.URL.Path, "error", err)
		}
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "file reader", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write file failed", "path", r.URL.Path, "error", err)
	}
}
