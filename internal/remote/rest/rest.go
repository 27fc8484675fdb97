// Package rest talks to a hosted backend-as-a-service over its HTTP APIs:
// PostgREST-style record tables under /rest/v1, the user endpoint under
// /auth/v1 and object storage under /storage/v1.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/kitchzone/internal/domain"
	"github.com/vbonduro/kitchzone/internal/filestore"
	"github.com/vbonduro/kitchzone/internal/remote"
)

// Table names on the hosted backend.
const (
	TableImages = "images"
	TableZones  = "zones"
	TableItems  = "inventory_items"
)

type Config struct {
	BaseURL string
	APIKey  string
	Bucket  string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	bucket  string
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		bucket:  cfg.Bucket,
		http:    client,
	}, nil
}

func (c *Client) Auth() remote.Authenticator { return authAPI{c: c} }

func (c *Client) Images() remote.Records[domain.Image] {
	return table[domain.Image]{c: c, name: TableImages}
}

func (c *Client) Zones() remote.Records[domain.Zone] {
	return table[domain.Zone]{c: c, name: TableZones}
}

func (c *Client) Items() remote.Records[domain.InventoryItem] {
	return table[domain.InventoryItem]{c: c, name: TableItems}
}

func (c *Client) Files() filestore.Uploader { return storageAPI{c: c} }

// apiError is the error body shared by the record, auth and storage APIs.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
	Error   string `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	token := remote.TokenFrom(ctx)
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (when non-nil). Every
// failure comes back as a classified *remote.Error.
func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return remote.NewError(op, 0, remote.CodeNetwork, "", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close response body", "op", op, "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		var body apiError
		_ = json.Unmarshal(raw, &body)
		msg := body.Message
		if msg == "" {
			msg = body.Msg
		}
		if msg == "" {
			msg = body.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return remote.NewError(op, resp.StatusCode, body.Code, msg, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return remote.NewError(op, resp.StatusCode, "", "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

type table[T any] struct {
	c    *Client
	name string
}

func (t table[T]) path(params url.Values) string {
	p := "/rest/v1/" + t.name
	if len(params) > 0 {
		p += "?" + params.Encode()
	}
	return p
}

func (t table[T]) List(ctx context.Context, q remote.Query) ([]T, error) {
	params := url.Values{"select": {"*"}}
	for k, v := range q.Filter {
		params.Set(k, "eq."+v)
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	op := "list " + t.name
	req, err := t.c.newRequest(ctx, http.MethodGet, t.path(params), nil)
	if err != nil {
		return nil, remote.NewError(op, 0, "", "", err)
	}
	req.Header.Set("Accept", "application/json")

	out := []T{}
	if err := t.c.do(op, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t table[T]) Create(ctx context.Context, rec T) (T, error) {
	var zero T
	op := "create " + t.name
	payload, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal %s: %w", t.name, err)
	}

	req, err := t.c.newRequest(ctx, http.MethodPost, t.path(nil), bytes.NewReader(payload))
	if err != nil {
		return zero, remote.NewError(op, 0, "", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var created []T
	if err := t.c.do(op, req, &created); err != nil {
		return zero, err
	}
	if len(created) == 0 {
		return rec, nil
	}
	return created[0], nil
}

func (t table[T]) Update(ctx context.Context, id string, fields remote.Fields) error {
	op := "update " + t.name
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal %s fields: %w", t.name, err)
	}

	req, err := t.c.newRequest(ctx, http.MethodPatch, t.path(url.Values{"id": {"eq." + id}}), bytes.NewReader(payload))
	if err != nil {
		return remote.NewError(op, 0, "", "", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var updated []json.RawMessage
	if err := t.c.do(op, req, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return remote.ErrRecordNotFound
	}
	return nil
}

func (t table[T]) Delete(ctx context.Context, id string) error {
	op := "delete " + t.name
	req, err := t.c.newRequest(ctx, http.MethodDelete, t.path(url.Values{"id": {"eq." + id}}), nil)
	if err != nil {
		return remote.NewError(op, 0, "", "", err)
	}
	return t.c.do(op, req, nil)
}

type authAPI struct {
	c *Client
}

func (a authAPI) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	const op = "current user"
	if token == "" {
		return domain.User{}, remote.NewError(op, http.StatusUnauthorized, "", "missing access token", nil)
	}
	req, err := a.c.newRequest(remote.WithToken(ctx, token), http.MethodGet, "/auth/v1/user", nil)
	if err != nil {
		return domain.User{}, remote.NewError(op, 0, "", "", err)
	}

	var user domain.User
	if err := a.c.do(op, req, &user); err != nil {
		return domain.User{}, err
	}
	if user.ID == "" {
		return domain.User{}, remote.NewError(op, http.StatusUnauthorized, "", "no user for token", nil)
	}
	return user, nil
}

type storageAPI struct {
	c *Client
}

func (s storageAPI) Upload(ctx context.Context, r io.Reader, destPath string, opts filestore.UploadOptions) (filestore.UploadResult, error) {
	const op = "upload file"
	objectPath := s.c.bucket + "/" + strings.TrimLeft(destPath, "/")

	req, err := s.c.newRequest(ctx, http.MethodPost, "/storage/v1/object/"+objectPath, r)
	if err != nil {
		return filestore.UploadResult{}, remote.NewError(op, 0, "", "", err)
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	}
	req.Header.Set("x-upsert", strconv.FormatBool(opts.Overwrite))

	if err := s.c.do(op, req, nil); err != nil {
		var rerr *remote.Error
		if errors.As(err, &rerr) && rerr.Status == http.StatusConflict {
			return filestore.UploadResult{}, filestore.ErrExists
		}
		return filestore.UploadResult{}, err
	}

	return filestore.UploadResult{
		Path:      destPath,
		PublicURL: s.c.baseURL + "/storage/v1/object/public/" + objectPath,
	}, nil
}
