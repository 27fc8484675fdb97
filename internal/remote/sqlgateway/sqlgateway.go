// Package sqlgateway is a self-hosted remote backend: records live in a
// SQLite database, uploads go to a file store and sign-in is a fixed set of
// access tokens.
package sqlgateway

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/store"
)

type Gateway struct {
	auth   *tokenAuth
	images remote.Records[domain.Image]
	zones  remote.Records[domain.Zone]
	items  remote.Records[domain.InventoryItem]
	files  filestore.Uploader
}

// New builds a gateway over db. tokens maps access tokens to their users.
// Record calls act for the user whose token is in the context (see
// remote.WithToken) and only ever see that user's rows.
func New(db *sql.DB, files filestore.Uploader, tokens map[string]domain.User) *Gateway {
	auth := &tokenAuth{tokens: tokens}
	return &Gateway{
		auth: auth,
		images: classified[domain.Image]{
			table: "images", inner: store.NewImageStore(db), auth: auth,
			ownerOf: func(img domain.Image) string { return img.UserID },
		},
		zones: classified[domain.Zone]{
			table: "zones", inner: store.NewZoneStore(db), auth: auth,
			ownerOf: func(z domain.Zone) string { return z.UserID },
		},
		items: classified[domain.InventoryItem]{
			table: "inventory_items", inner: store.NewItemStore(db), auth: auth,
			ownerOf: func(it domain.InventoryItem) string { return it.UserID },
		},
		files: files,
	}
}

func (g *Gateway) Auth() remote.Authenticator                  { return g.auth }
func (g *Gateway) Images() remote.Records[domain.Image]        { return g.images }
func (g *Gateway) Zones() remote.Records[domain.Zone]          { return g.zones }
func (g *Gateway) Items() remote.Records[domain.InventoryItem] { return g.items }
func (g *Gateway) Files() filestore.Uploader                   { return g.files }

type tokenAuth struct {
	tokens map[string]domain.User
}

func (a *tokenAuth) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	user, ok := a.tokens[token]
	if !ok || token == "" {
		return domain.User{}, remote.NewError("current user", 401, "", "invalid access token", nil)
	}
	return user, nil
}

// owner returns the id of the user whose token ctx carries.
func (a *tokenAuth) owner(ctx context.Context) (string, error) {
	user, err := a.CurrentUser(ctx, remote.TokenFrom(ctx))
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// ownedStore is a table whose rows are scoped to one user per call.
type ownedStore[T any] interface {
	List(ctx context.Context, userID string, q remote.Query) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, userID, id string, fields remote.Fields) error
	Delete(ctx context.Context, userID, id string) error
}

// classified resolves the caller from the context token, scopes the store to
// that user and turns database errors into *remote.Error so the availability
// detector sees the same taxonomy as with a hosted backend.
type classified[T any] struct {
	table   string
	inner   ownedStore[T]
	auth    *tokenAuth
	ownerOf func(T) string
}

func (c classified[T]) List(ctx context.Context, q remote.Query) ([]T, error) {
	userID, err := c.auth.owner(ctx)
	if err != nil {
		return nil, err
	}
	out, err := c.inner.List(ctx, userID, q)
	if err != nil {
		return nil, c.wrap("list", err)
	}
	return out, nil
}

func (c classified[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	userID, err := c.auth.owner(ctx)
	if err != nil {
		return zero, err
	}
	if c.ownerOf(rec) != userID {
		return zero, remote.NewError("create "+c.table, 403, "", "record belongs to another user", nil)
	}
	out, err := c.inner.Create(ctx, rec)
	if err != nil {
		return zero, c.wrap("create", err)
	}
	return out, nil
}

func (c classified[T]) Update(ctx context.Context, id string, fields remote.Fields) error {
	userID, err := c.auth.owner(ctx)
	if err != nil {
		return err
	}
	if err := c.inner.Update(ctx, userID, id, fields); err != nil {
		if errors.Is(err, remote.ErrRecordNotFound) {
			return err
		}
		return c.wrap("update", err)
	}
	return nil
}

func (c classified[T]) Delete(ctx context.Context, id string) error {
	userID, err := c.auth.owner(ctx)
	if err != nil {
		return err
	}
	if err := c.inner.Delete(ctx, userID, id); err != nil {
		return c.wrap("delete", err)
	}
	return nil
}

func (c classified[T]) wrap(op string, err error) error {
	return remote.NewError(op+" "+c.table, 0, "", "", err)
}
