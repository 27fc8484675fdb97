// Package fake is an in-memory remote.Gateway for tests. Records are kept in
// insertion order; filters and partial updates go through the records' JSON
// field names, the same names the real backends use.
package fake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
	"github.com/vbonduro/kitchzone/internal/remote"
)

// PublicBase prefixes every public URL handed out by Files.
const PublicBase = "https://files.test/"

// Records is one in-memory record table. The *Err fields, when set, are
// returned by the matching operation instead of touching the table.
type Records[T interface{ RecordID() string }] struct {
	mu   sync.Mutex
	recs []T

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	Lists int
}

func (r *Records[T]) List(ctx context.Context, q remote.Query) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lists++
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	out := []T{}
	for _, rec := range r.recs {
		ok, err := matches(rec, q.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b T) int {
			c := compareField(a, b, q.OrderBy)
			if q.Desc {
				return -c
			}
			return c
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Records[T]) Create(ctx context.Context, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		var zero T
		return zero, r.CreateErr
	}
	for _, existing := range r.recs {
		if existing.RecordID() == rec.RecordID() {
			var zero T
			return zero, remote.NewError("create", 409, "23505", "duplicate key", nil)
		}
	}
	r.recs = append(r.recs, rec)
	return rec, nil
}

func (r *Records[T]) Update(ctx context.Context, id string, fields remote.Fields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	for i, rec := range r.recs {
		if rec.RecordID() != id {
			continue
		}
		updated, err := patch(rec, fields)
		if err != nil {
			return err
		}
		r.recs[i] = updated
		return nil
	}
	return remote.ErrRecordNotFound
}

func (r *Records[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	r.recs = slices.DeleteFunc(r.recs, func(rec T) bool { return rec.RecordID() == id })
	return nil
}

// All returns a copy of every stored record.
func (r *Records[T]) All() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.recs)
}

// Auth resolves tokens from a fixed map.
type Auth struct {
	Users map[string]domain.User
}

func (a *Auth) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	user, ok := a.Users[token]
	if !ok {
		return domain.User{}, remote.NewError("current user", 401, "", "invalid token", nil)
	}
	return user, nil
}

// Files keeps uploads in memory.
type Files struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Err     error
}

func (f *Files) Upload(ctx context.Context, r io.Reader, destPath string, opts filestore.UploadOptions) (filestore.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return filestore.UploadResult{}, f.Err
	}
	if _, exists := f.Objects[destPath]; exists && !opts.Overwrite {
		return filestore.UploadResult{}, filestore.ErrExists
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return filestore.UploadResult{}, err
	}
	f.Objects[destPath] = buf.Bytes()
	return filestore.UploadResult{Path: destPath, PublicURL: filestore.JoinURL(PublicBase, destPath)}, nil
}

// Gateway is an in-memory remote.Gateway.
type Gateway struct {
	Users     *Auth
	ImageRecs *Records[domain.Image]
	ZoneRecs  *Records[domain.Zone]
	ItemRecs  *Records[domain.InventoryItem]
	Storage   *Files
}

// New returns an empty gateway that knows the given token -> user pairs.
func New(users map[string]domain.User) *Gateway {
	if users == nil {
		users = map[string]domain.User{}
	}
	return &Gateway{
		Users:     &Auth{Users: users},
		ImageRecs: &Records[domain.Image]{},
		ZoneRecs:  &Records[domain.Zone]{},
		ItemRecs:  &Records[domain.InventoryItem]{},
		Storage:   &Files{Objects: map[string][]byte{}},
	}
}

func (g *Gateway) Auth() remote.Authenticator                  { return g.Users }
func (g *Gateway) Images() remote.Records[domain.Image]        { return g.ImageRecs }
func (g *Gateway) Zones() remote.Records[domain.Zone]          { return g.ZoneRecs }
func (g *Gateway) Items() remote.Records[domain.InventoryItem] { return g.ItemRecs }
func (g *Gateway) Files() filestore.Uploader                   { return g.Storage }

// Unprovisioned makes every record list fail the way a backend without the
// schema does.
func (g *Gateway) Unprovisioned() {
	err := remote.NewError("list", 404, remote.CodeSchemaCacheMiss, "relation not found", nil)
	g.ImageRecs.ListErr = err
	g.ZoneRecs.ListErr = err
	g.ItemRecs.ListErr = err
}

func fieldsOf(rec any) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func matches(rec any, filter map[string]string) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	m, err := fieldsOf(rec)
	if err != nil {
		return false, err
	}
	for k, want := range filter {
		if fmt.Sprint(m[k]) != want {
			return false, nil
		}
	}
	return true, nil
}

func compareField(a, b any, field string) int {
	ma, _ := fieldsOf(a)
	mb, _ := fieldsOf(b)
	va, vb := ma[field], mb[field]
	fa, aNum := va.(float64)
	fb, bNum := vb.(float64)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, sb := fmt.Sprint(va), fmt.Sprint(vb)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

func patch[T any](rec T, fields remote.Fields) (T, error) {
	var out T
	m, err := fieldsOf(rec)
	if err != nil {
		return out, err
	}
	for k, v := range fields {
		m[k] = v
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
