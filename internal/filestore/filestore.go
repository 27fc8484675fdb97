// Package filestore defines the upload capability used for kitchen photos.
// Files are never replicated to the device: every upload goes to the
// configured backend and the caller keeps only the returned public URL.
package filestore

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrExists is returned when an upload would overwrite a file and
// UploadOptions.Overwrite is false.
var ErrExists = errors.New("file already exists")

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("file not found")

type UploadOptions struct {
	Overwrite   bool
	ContentType string
}

type UploadResult struct {
	Path      string
	PublicURL string
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader, destPath string, opts UploadOptions) (UploadResult, error)
}

// ObjectPath builds the destination path of a user's photo.
func ObjectPath(userID, id, mimeType string) string {
	return path.Join(userID, id+ExtForMIME(mimeType))
}

// JoinURL appends an object path to a public base URL.
func JoinURL(base, objectPath string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(objectPath, "/")
}

func ExtForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func MIMEForPath(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
