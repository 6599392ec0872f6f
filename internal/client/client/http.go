package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/logging"
	"github.com/dmitrijs2005/microblog/internal/netx"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	log            logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(h *HTTPClient) {
		if d > 0 {
			h.http.Timeout = d
		}
	}
}

// WithTokenSource sets where the bearer token comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(h *HTTPClient) { h.tokens = ts }
}

// WithOnUnauthorized registers fn to run when a request carrying the
// TokenSource's token is answered with 401.
func WithOnUnauthorized(fn func(ctx context.Context)) Option {
	return func(h *HTTPClient) { h.onUnauthorized = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(h *HTTPClient) { h.log = l }
}

// NewHTTPClient creates a client for the backend at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	h := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  TokenSourceFunc(func() string { return "" }),
		log:     logging.Nop{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// BaseURL returns the backend address.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

// ResolveURL turns a backend-relative path such as an upload URL into an
// absolute one.
func (c *HTTPClient) ResolveURL(p string) string {
	ref, err := url.Parse(p)
	if err != nil || ref.IsAbs() {
		return p
	}
	return c.baseURL.ResolveReference(ref).String()
}

// request describes one backend call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// token overrides the TokenSource; anonymous skips the header entirely.
	token     string
	anonymous bool
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return bytes.NewReader(b), nil
}

func (c *HTTPClient) do(ctx context.Context, r request, out any) error {
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + r.path
	p, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", r.path, err)
	}
	u.Path = p
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), r.body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	sessionToken := false
	token := r.token
	if token == "" && !r.anonymous {
		token = c.tokens.Token()
		sessionToken = token != ""
	}
	if token != "" && !r.anonymous {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Debug(ctx, "request failed", "method", r.method, "path", r.path, "err", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done",
		"method", r.method, "path", r.path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: parseDetail(body)}
		if resp.StatusCode == http.StatusUnauthorized && sessionToken && c.onUnauthorized != nil {
			c.log.Warn(ctx, "session token rejected", "path", r.path)
			c.onUnauthorized(ctx)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, request{method: http.MethodGet, path: path}, out)
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, in, out any) error {
	body, err := jsonBody(in)
	if err != nil {
		return err
	}
	return c.do(ctx, request{method: method, path: path, body: body, contentType: "application/json"}, out)
}

func seg(s string) string {
	return "/" + url.PathEscape(s)
}

func (c *HTTPClient) Token(ctx context.Context, login, password string) (*models.Token, error) {
	form := url.Values{}
	form.Set("username", login)
	form.Set("password", password)

	var tok models.Token
	err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/token",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
		anonymous:   true,
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token response without access_token")
	}
	return &tok, nil
}

func (c *HTTPClient) Register(ctx context.Context, u models.NewUser) (*models.User, error) {
	body, err := jsonBody(u)
	if err != nil {
		return nil, err
	}
	var out models.User
	err = c.do(ctx, request{
		method: http.MethodPost, path: "/users", body: body,
		contentType: "application/json", anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Detail: "no token"}
	}
	var out models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/users/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateMe(ctx context.Context, upd models.ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.sendJSON(ctx, http.MethodPut, "/users/me", upd, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) User(ctx context.Context, id string) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/users"+seg(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UserPosts(ctx context.Context, id string) ([]models.Post, error) {
	var out []models.Post
	if err := c.get(ctx, "/users"+seg(id)+"/posts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Posts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.get(ctx, "/posts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) MyPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.get(ctx, "/posts/my", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Post(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	if err := c.get(ctx, "/posts"+seg(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.sendJSON(ctx, http.MethodPost, "/posts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	var out models.Post
	if err := c.sendJSON(ctx, http.MethodPut, "/posts"+seg(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/posts" + seg(id)}, nil)
}

func (c *HTTPClient) RatePost(ctx context.Context, id string, value int) (*models.RatingResult, error) {
	var out models.RatingResult
	in := struct {
		Value int `json:"value"`
	}{value}
	if err := c.sendJSON(ctx, http.MethodPost, "/posts"+seg(id)+"/rate", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.get(ctx, "/posts"+seg(postID)+"/comments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	var out models.Comment
	in := struct {
		Content string `json:"content"`
	}{content}
	if err := c.sendJSON(ctx, http.MethodPost, "/posts"+seg(postID)+"/comments", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/posts" + seg(postID) + "/comments" + seg(commentID),
	}, nil)
}

func (c *HTTPClient) Favorites(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	if err := c.get(ctx, "/favorites", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) AddFavorite(ctx context.Context, postID string) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/favorites" + seg(postID)}, nil)
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, postID string) error {
	return c.do(ctx, request{method: http.MethodDelete, path: "/favorites" + seg(postID)}, nil)
}

func (c *HTTPClient) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	var out []models.Post
	err := c.do(ctx, request{method: http.MethodGet, path: "/search/posts", query: url.Values{"q": {q}}}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) SearchUsers(ctx context.Context, q string) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/search/users", query: url.Values{"q": {q}}}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) upload(ctx context.Context, path, filename string, r io.Reader) (*models.Upload, error) {
	body, ct, err := netx.MultipartFile("file", filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	var out models.Upload
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: body, contentType: ct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*models.Upload, error) {
	return c.upload(ctx, "/uploads/avatar", filename, r)
}

func (c *HTTPClient) UploadImage(ctx context.Context, filename string, r io.Reader) (*models.Upload, error) {
	return c.upload(ctx, "/uploads/image", filename, r)
}

// Ping treats any HTTP answer, including 404, as the backend being up.
func (c *HTTPClient) Ping(ctx context.Context) error {
	err := c.do(ctx, request{method: http.MethodGet, path: "/", anonymous: true}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return nil
	}
	return err
}
