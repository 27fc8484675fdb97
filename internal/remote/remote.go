// Package remote defines the contract of the remote backend-as-a-service:
// authentication, per-kind record CRUD and file upload. Implementations live
// in sub-packages.
package remote

import (
	"context"
	"errors"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
)

// ErrRecordNotFound is returned by Update when no record has the given id.
var ErrRecordNotFound = errors.New("record not found")

// Query narrows a List call. Filter is an equality match on field names.
type Query struct {
	Filter  map[string]string
	OrderBy string
	Desc    bool
	Limit   int
}

// Fields is a partial update keyed by field name.
type Fields map[string]any

// Records is the CRUD surface of one record kind.
type Records[T any] interface {
	List(ctx context.Context, q Query) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, fields Fields) error
	// Delete removes the record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// Authenticator resolves the signed-in user for an access token.
type Authenticator interface {
	CurrentUser(ctx context.Context, token string) (domain.User, error)
}

// Gateway bundles every capability of the remote backend.
type Gateway interface {
	Auth() Authenticator
	Images() Records[domain.Image]
	Zones() Records[domain.Zone]
	Items() Records[domain.InventoryItem]
	Files() filestore.Uploader
}

// Field names shared by every implementation.
const (
	FieldUserID    = "user_id"
	FieldImageID   = "image_id"
	FieldZoneID    = "zone_id"
	FieldCreatedAt = "created_at"
)

type tokenKey struct{}

// WithToken returns a context carrying the caller's access token. Gateways
// that authorize per request read it back with TokenFrom.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the access token stored in ctx, if any.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
