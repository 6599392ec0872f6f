package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

type recorded struct {
	method string
	path   string
	query  string
	auth   string
	ctype  string
	body   []byte
}

// newServer starts a test backend that records the last request and answers
// with status and body.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.EscapedPath()
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.ctype = r.Header.Get("Content-Type")
		rec.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, rec
}

func newClient(t *testing.T, ts *httptest.Server, token string, opts ...Option) *HTTPClient {
	t.Helper()
	opts = append([]Option{WithTokenSource(TokenSourceFunc(func() string { return token }))}, opts...)
	c, err := NewHTTPClient(ts.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewHTTPClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://x", "http://"} {
		_, err := NewHTTPClient(u)
		assert.Error(t, err, u)
	}
}

func TestToken_FormEncodedWithoutBearer(t *testing.T) {
	ts, rec := newServer(t, 200, `{"access_token":"mock-token","token_type":"bearer"}`)
	c := newClient(t, ts, "stale")

	tok, err := c.Token(context.Background(), "testuser", "p&ss word")
	require.NoError(t, err)
	assert.Equal(t, "mock-token", tok.AccessToken)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/auth/token", rec.path)
	assert.Equal(t, "application/x-www-form-urlencoded", rec.ctype)
	assert.Empty(t, rec.auth)
	assert.Equal(t, "password=p%26ss+word&username=testuser", string(rec.body))
}

func TestToken_EmptyAccessToken(t *testing.T) {
	ts, _ := newServer(t, 200, `{"token_type":"bearer"}`)
	_, err := newClient(t, ts, "").Token(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestToken_BadCredentialsDoesNotFireHook(t *testing.T) {
	ts, _ := newServer(t, 401, `{"detail":"Incorrect login or password"}`)
	fired := false
	c := newClient(t, ts, "tok", WithOnUnauthorized(func(context.Context) { fired = true }))

	_, err := c.Token(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Incorrect login or password", Detail(err))
	assert.False(t, fired)
}

func TestRegister_JSONAnonymous(t *testing.T) {
	ts, rec := newServer(t, 200, `{"id":"u1","email":"a@b.c","login":"alice"}`)
	c := newClient(t, ts, "tok")

	u, err := c.Register(context.Background(), models.NewUser{Email: "a@b.c", Login: "alice", Password: "pass"})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Login)

	assert.Equal(t, "/users", rec.path)
	assert.Empty(t, rec.auth)
	assert.Equal(t, "application/json", rec.ctype)
	assert.JSONEq(t, `{"email":"a@b.c","login":"alice","password":"pass"}`, string(rec.body))
}

func TestMe_SendsBearer(t *testing.T) {
	ts, rec := newServer(t, 200, `{"id":"u1","login":"testuser"}`)
	c := newClient(t, ts, "mock-token")

	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "testuser", u.Login)
	assert.Equal(t, "Bearer mock-token", rec.auth)
	assert.Equal(t, "/users/me", rec.path)
}

func TestAnonymousCall_NoHeader(t *testing.T) {
	ts, rec := newServer(t, 200, `[]`)
	c := newClient(t, ts, "")

	posts, err := c.Posts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Empty(t, rec.auth)
}

func TestCurrentUser_ExplicitTokenAndNoHook(t *testing.T) {
	ts, rec := newServer(t, 401, `{"detail":"Could not validate credentials"}`)
	fired := false
	c := newClient(t, ts, "session-token", WithOnUnauthorized(func(context.Context) { fired = true }))

	_, err := c.CurrentUser(context.Background(), "stored-token")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Bearer stored-token", rec.auth)
	assert.False(t, fired)
}

func TestCurrentUser_EmptyToken(t *testing.T) {
	ts, rec := newServer(t, 200, `{}`)
	_, err := newClient(t, ts, "").CurrentUser(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, rec.method, "no request expected")
}

func TestUnauthorized_FiresHookForSessionToken(t *testing.T) {
	ts, _ := newServer(t, 401, `{"detail":"Could not validate credentials"}`)
	fired := 0
	c := newClient(t, ts, "expired", WithOnUnauthorized(func(context.Context) { fired++ }))

	_, err := c.MyPosts(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, fired)

	err = c.DeletePost(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 2, fired)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		detail   string
	}{
		{"not found", 404, `{"detail":"Post not found"}`, ErrNotFound, "Post not found"},
		{"forbidden", 403, `{"detail":"Not the author"}`, nil, "Not the author"},
		{"validation list", 422, `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, nil, "field required; too short"},
		{"conflict", 400, `{"detail":"Login already taken"}`, nil, "Login already taken"},
		{"server", 500, `Internal Server Error`, ErrServer, "Internal Server Error"},
		{"bad gateway", 502, ``, ErrServer, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts, _ := newServer(t, tc.status, tc.body)
			_, err := newClient(t, ts, "tok").Post(context.Background(), "p1")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.detail, apiErr.Detail)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			} else {
				assert.NotErrorIs(t, err, ErrUnauthorized)
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.NotErrorIs(t, err, ErrServer)
			}
		})
	}
}

func TestTransportFailure_Unavailable(t *testing.T) {
	ts, _ := newServer(t, 200, `{}`)
	c := newClient(t, ts, "")
	ts.Close()

	_, err := c.Posts(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestCanceledContext(t *testing.T) {
	ts, _ := newServer(t, 200, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(t, ts, "").Posts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeFailure(t *testing.T) {
	ts, _ := newServer(t, 200, `not json`)
	_, err := newClient(t, ts, "").Posts(context.Background())
	assert.ErrorContains(t, err, "failed to decode response")
}

func TestPaths(t *testing.T) {
	ctx := context.Background()
	const obj, list = `{}`, `[]`
	tests := []struct {
		name   string
		call   func(c *HTTPClient) error
		resp   string
		method string
		path   string
		query  string
		body   string
	}{
		{"user", func(c *HTTPClient) error { _, err := c.User(ctx, "u1"); return err }, obj, "GET", "/users/u1", "", ""},
		{"user posts", func(c *HTTPClient) error { _, err := c.UserPosts(ctx, "u1"); return err }, list, "GET", "/users/u1/posts", "", ""},
		{"update me", func(c *HTTPClient) error {
			bio := "hi"
			_, err := c.UpdateMe(ctx, models.ProfileUpdate{Bio: &bio})
			return err
		}, obj, "PUT", "/users/me", "", `{"bio":"hi"}`},
		{"my posts", func(c *HTTPClient) error { _, err := c.MyPosts(ctx); return err }, list, "GET", "/posts/my", "", ""},
		{"escaped id", func(c *HTTPClient) error { _, err := c.Post(ctx, "a/b"); return err }, obj, "GET", "/posts/a%2Fb", "", ""},
		{"create", func(c *HTTPClient) error {
			_, err := c.CreatePost(ctx, models.PostInput{Title: "T", Content: "C"})
			return err
		}, obj, "POST", "/posts", "", `{"title":"T","content":"C"}`},
		{"update", func(c *HTTPClient) error {
			_, err := c.UpdatePost(ctx, "p1", models.PostInput{Title: "T", Content: "C"})
			return err
		}, obj, "PUT", "/posts/p1", "", `{"title":"T","content":"C"}`},
		{"delete", func(c *HTTPClient) error { return c.DeletePost(ctx, "p1") }, `{"status":"deleted"}`, "DELETE", "/posts/p1", "", ""},
		{"rate", func(c *HTTPClient) error { _, err := c.RatePost(ctx, "p1", -1); return err }, obj, "POST", "/posts/p1/rate", "", `{"value":-1}`},
		{"comments", func(c *HTTPClient) error { _, err := c.Comments(ctx, "p1"); return err }, list, "GET", "/posts/p1/comments", "", ""},
		{"comment", func(c *HTTPClient) error { _, err := c.CreateComment(ctx, "p1", "nice"); return err }, obj, "POST", "/posts/p1/comments", "", `{"content":"nice"}`},
		{"uncomment", func(c *HTTPClient) error { return c.DeleteComment(ctx, "p1", "c1") }, obj, "DELETE", "/posts/p1/comments/c1", "", ""},
		{"favorites", func(c *HTTPClient) error { _, err := c.Favorites(ctx); return err }, list, "GET", "/favorites", "", ""},
		{"fav", func(c *HTTPClient) error { return c.AddFavorite(ctx, "p1") }, `{"status":"added"}`, "POST", "/favorites/p1", "", ""},
		{"unfav", func(c *HTTPClient) error { return c.RemoveFavorite(ctx, "p1") }, `{"status":"removed"}`, "DELETE", "/favorites/p1", "", ""},
		{"search posts", func(c *HTTPClient) error { _, err := c.SearchPosts(ctx, "go lang"); return err }, list, "GET", "/search/posts", "q=go+lang", ""},
		{"search users", func(c *HTTPClient) error { _, err := c.SearchUsers(ctx, "bob"); return err }, list, "GET", "/search/users", "q=bob", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts, rec := newServer(t, 200, tc.resp)
			require.NoError(t, tc.call(newClient(t, ts, "tok")))

			assert.Equal(t, tc.method, rec.method)
			assert.Equal(t, tc.path, rec.path)
			assert.Equal(t, tc.query, rec.query)
			assert.Equal(t, "Bearer tok", rec.auth)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, string(rec.body))
			}
		})
	}
}

func TestRatePost_DecodesResult(t *testing.T) {
	ts, _ := newServer(t, 200, `{"status":"rated","value":1}`)
	res, err := newClient(t, ts, "tok").RatePost(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, models.RatingResult{Status: "rated", Value: 1}, *res)
}

func TestUploadImage_Multipart(t *testing.T) {
	var gotName, gotData string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/uploads/image", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			b, _ := io.ReadAll(f)
			gotName, gotData = hdr.Filename, string(b)
		}
		_ = json.NewEncoder(w).Encode(models.Upload{URL: "/static/uploads/post_1.png"})
	}))
	t.Cleanup(ts.Close)
	c := newClient(t, ts, "tok")

	up, err := c.UploadImage(context.Background(), "pic.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/post_1.png", up.URL)
	assert.Equal(t, "pic.png", gotName)
	assert.Equal(t, "data", gotData)
	assert.Equal(t, ts.URL+"/static/uploads/post_1.png", c.ResolveURL(up.URL))
}

func TestUploadAvatar_Path(t *testing.T) {
	ts, rec := newServer(t, 200, `{"url":"/static/uploads/avatar_u1.jpg"}`)
	_, err := newClient(t, ts, "tok").UploadAvatar(context.Background(), "me.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatar", rec.path)
	assert.True(t, strings.HasPrefix(rec.ctype, "multipart/form-data; boundary="))
}

func TestPing(t *testing.T) {
	ts, _ := newServer(t, 404, `{"detail":"Not Found"}`)
	assert.NoError(t, newClient(t, ts, "").Ping(context.Background()))

	ts500, _ := newServer(t, 503, ``)
	assert.ErrorIs(t, newClient(t, ts500, "").Ping(context.Background()), ErrServer)
}

func TestResolveURL_Absolute(t *testing.T) {
	c, err := NewHTTPClient("http://backend:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8000", c.BaseURL())
	assert.Equal(t, "https://cdn/x.png", c.ResolveURL("https://cdn/x.png"))
	assert.Equal(t, "http://backend:8000/static/a.png", c.ResolveURL("/static/a.png"))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "plain", parseDetail([]byte(`{"detail":"plain"}`)))
	assert.Equal(t, "a; b", parseDetail([]byte(`{"detail":[{"msg":"a"},{"msg":"b"}]}`)))
	assert.Equal(t, "raw text", parseDetail([]byte("raw text\n")))
	assert.Equal(t, `{"x":1}`, parseDetail([]byte(`{"detail":{"x":1}}`)))
	assert.Equal(t, "", parseDetail(nil))
}

func TestAPIError_Message(t *testing.T) {
	assert.Equal(t, "backend returned 404 Not Found", (&APIError{StatusCode: 404}).Error())
	assert.Equal(t, "backend returned 400: nope", (&APIError{StatusCode: 400, Detail: "nope"}).Error())
	assert.Empty(t, Detail(errors.New("other")))
}
