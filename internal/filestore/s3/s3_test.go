package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/kitchzone/internal/filestore"
)

// fakeBucket is a minimal path-style S3 endpoint that supports HEAD and PUT.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch r.Method {
	case http.MethodHead:
		if _, ok := b.objects[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		b.objects[r.URL.Path] = data
		b.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestUploader(t *testing.T) (*Uploader, *fakeBucket) {
	t.Helper()
	bucket := newFakeBucket()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)

	u, err := New(context.Background(), Config{
		Bucket:          "photos",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "key",
		AccessKeySecret: "secret",
		PublicURL:       "https://cdn.example.com",
	})
	require.NoError(t, err)
	return u, bucket
}

func TestUpload(t *testing.T) {
	u, bucket := newTestUploader(t)

	res, err := u.Upload(context.Background(), bytes.NewReader([]byte("jpeg")), "user-1/img.jpg",
		filestore.UploadOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/user-1/img.jpg", res.PublicURL)

	bucket.mu.Lock()
	defer bucket.mu.Unlock()
	assert.Equal(t, []byte("jpeg"), bucket.objects["/photos/user-1/img.jpg"])
	assert.Equal(t, "image/jpeg", bucket.types["/photos/user-1/img.jpg"])
}

func TestUpload_NoOverwrite(t *testing.T) {
	u, _ := newTestUploader(t)
	ctx := context.Background()

	_, err := u.Upload(ctx, bytes.NewReader([]byte("a")), "u/a.jpg", filestore.UploadOptions{})
	require.NoError(t, err)

	_, err = u.Upload(ctx, bytes.NewReader([]byte("b")), "u/a.jpg", filestore.UploadOptions{})
	assert.ErrorIs(t, err, filestore.ErrExists)

	_, err = u.Upload(ctx, bytes.NewReader([]byte("c")), "u/a.jpg", filestore.UploadOptions{Overwrite: true})
	assert.NoError(t, err)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
