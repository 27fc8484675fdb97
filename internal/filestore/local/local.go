package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/kitchzone/internal/filestore"
)

// FileStore writes uploads under basePath and reports them under publicURL,
// which is expected to be served by the web server's /files route.
type FileStore struct {
	basePath  string
	publicURL string
}

func NewFileStore(basePath, publicURL string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &FileStore{basePath: basePath, publicURL: publicURL}, nil
}

func (s *FileStore) Upload(ctx context.Context, r io.Reader, destPath string, opts filestore.UploadOptions) (filestore.UploadResult, error) {
	filePath, err := s.safeJoin(destPath)
	if err != nil {
		return filestore.UploadResult{}, err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return filestore.UploadResult{}, fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !opts.Overwrite {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(filePath, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return filestore.UploadResult{}, filestore.ErrExists
		}
		return filestore.UploadResult{}, fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return filestore.UploadResult{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return filestore.UploadResult{}, fmt.Errorf("failed to close file: %w", err)
	}

	clean := filepath.ToSlash(filepath.Clean(destPath))
	return filestore.UploadResult{Path: clean, PublicURL: filestore.JoinURL(s.publicURL, clean)}, nil
}

// Open returns the stored file and its MIME type.
func (s *FileStore) Open(ctx context.Context, storedPath string) (io.ReadCloser, string, error) {
	filePath, err := s.safeJoin(storedPath)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", filestore.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return f, filestore.MIMEForPath(filePath), nil
}

func (s *FileStore) Delete(ctx context.Context, storedPath string) error {
	filePath, err := s.safeJoin(storedPath)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return filestore.ErrNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// safeJoin resolves storedPath relative to basePath and rejects directory traversal.
func (s *FileStore) safeJoin(storedPath string) (string, error) {
	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, storedPath))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal attempt")
	}
	return absPath, nil
}
