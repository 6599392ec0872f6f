// Package clienttest provides an in-memory stand-in for the microblog REST
// backend, served with echo on an httptest server.
package clienttest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

type account struct {
	user     models.User
	password string
	token    string
}

// Backend is a fake backend. Its fields may be inspected by tests after
// requests have completed; use Lock/Unlock around direct access while the
// server is running.
type Backend struct {
	sync.Mutex

	Server *httptest.Server

	accounts  map[string]*account // by login
	tokens    map[string]string   // token -> login
	posts     []*models.Post
	comments  map[string][]models.Comment
	favorites map[string]map[string]bool // login -> post id
	ratings   map[string]map[string]int  // post id -> login -> value
	seq       int

	// Requests counts handled requests by "METHOD /path".
	Requests map[string]int
	// FailWith, when set for "METHOD /route", makes that route answer with the status.
	FailWith map[string]int
}

// NewBackend starts a backend with one account: login "testuser", password
// "password", token "mock-token".
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		accounts:  map[string]*account{},
		tokens:    map[string]string{},
		comments:  map[string][]models.Comment{},
		favorites: map[string]map[string]bool{},
		ratings:   map[string]map[string]int{},
		Requests:  map[string]int{},
		FailWith:  map[string]int{},
	}
	b.AddUser("testuser", "test@example.com", "password", "mock-token")

	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the backend.
func (b *Backend) URL() string { return b.Server.URL }

// AddUser registers an account with a fixed token.
func (b *Backend) AddUser(login, email, password, token string) *models.User {
	b.Lock()
	defer b.Unlock()
	return b.addUserLocked(login, email, password, token)
}

func (b *Backend) addUserLocked(login, email, password, token string) *models.User {
	b.seq++
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	acc := &account{
		user:     models.User{ID: fmt.Sprintf("u%d", b.seq), Email: email, Login: login, CreatedAt: now, UpdatedAt: now},
		password: password,
		token:    token,
	}
	b.accounts[login] = acc
	b.tokens[token] = login
	u := acc.user
	return &u
}

// RevokeToken makes token invalid, as if it had expired.
func (b *Backend) RevokeToken(token string) {
	b.Lock()
	defer b.Unlock()
	delete(b.tokens, token)
}

// AddPost stores a post authored by login.
func (b *Backend) AddPost(login, title, content string) *models.Post {
	b.Lock()
	defer b.Unlock()
	p := b.addPostLocked(b.accounts[login], title, content)
	cp := *p
	return &cp
}

func (b *Backend) addPostLocked(author *account, title, content string) *models.Post {
	b.seq++
	l := author.user.Login
	now := time.Now().UTC()
	p := &models.Post{
		ID: fmt.Sprintf("p%d", b.seq), AuthorID: author.user.ID, AuthorLogin: &l,
		Title: title, Content: content, CreatedAt: now, UpdatedAt: now,
	}
	b.posts = append([]*models.Post{p}, b.posts...)
	return p
}

// Posts returns a copy of all stored posts, newest first.
func (b *Backend) Posts() []models.Post {
	b.Lock()
	defer b.Unlock()
	out := make([]models.Post, 0, len(b.posts))
	for _, p := range b.posts {
		out = append(out, *p)
	}
	return out
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (b *Backend) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b.Lock()
			b.Requests[c.Request().Method+" "+c.Request().URL.Path]++
			status := b.FailWith[c.Request().Method+" "+c.Path()]
			b.Unlock()
			if status != 0 {
				return detail(c, status, http.StatusText(status))
			}
			return next(c)
		}
	})

	e.GET("/", func(c echo.Context) error { return detail(c, http.StatusNotFound, "Not Found") })
	e.POST("/auth/token", b.token)
	e.POST("/users", b.register)

	e.GET("/posts", b.listPosts(func(*models.Post, *account) bool { return true }))
	e.GET("/posts/:id", b.getPost)
	e.GET("/posts/:id/comments", b.listComments)
	e.GET("/users/:id", b.getUser)
	e.GET("/users/:id/posts", b.userPosts)
	e.GET("/search/posts", b.searchPosts)
	e.GET("/search/users", b.searchUsers)

	auth := b.requireAuth
	e.GET("/users/me", b.me, auth)
	e.PUT("/users/me", b.updateMe, auth)
	e.GET("/posts/my", b.listPosts(func(p *models.Post, a *account) bool { return a != nil && p.AuthorID == a.user.ID }), auth)
	e.POST("/posts", b.createPost, auth)
	e.PUT("/posts/:id", b.updatePost, auth)
	e.DELETE("/posts/:id", b.deletePost, auth)
	e.POST("/posts/:id/rate", b.rate, auth)
	e.POST("/posts/:id/comments", b.createComment, auth)
	e.DELETE("/posts/:id/comments/:cid", b.deleteComment, auth)
	e.GET("/favorites", b.listFavorites, auth)
	e.POST("/favorites/:id", b.addFavorite, auth)
	e.DELETE("/favorites/:id", b.removeFavorite, auth)
	e.POST("/uploads/avatar", b.upload("avatar"), auth)
	e.POST("/uploads/image", b.upload("post"), auth)

	return e
}

// caller returns the account of a valid bearer token, or nil.
func (b *Backend) caller(c echo.Context) *account {
	h := c.Request().Header.Get("Authorization")
	tok, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return nil
	}
	b.Lock()
	defer b.Unlock()
	if login, ok := b.tokens[tok]; ok {
		return b.accounts[login]
	}
	return nil
}

func (b *Backend) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		acc := b.caller(c)
		if acc == nil {
			return detail(c, http.StatusUnauthorized, "Could not validate credentials")
		}
		c.Set("account", acc)
		return next(c)
	}
}

func current(c echo.Context) *account {
	acc, _ := c.Get("account").(*account)
	return acc
}

func (b *Backend) token(c echo.Context) error {
	login, password := c.FormValue("username"), c.FormValue("password")
	b.Lock()
	defer b.Unlock()
	acc, ok := b.accounts[login]
	if !ok || acc.password != password {
		return detail(c, http.StatusUnauthorized, "Incorrect login or password")
	}
	b.tokens[acc.token] = login
	return c.JSON(http.StatusOK, models.Token{AccessToken: acc.token, TokenType: "bearer"})
}

func (b *Backend) register(c echo.Context) error {
	var in models.NewUser
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.Lock()
	defer b.Unlock()
	if _, taken := b.accounts[in.Login]; taken {
		return detail(c, http.StatusBadRequest, "Login already registered")
	}
	u := b.addUserLocked(in.Login, in.Email, in.Password, "token-"+in.Login)
	return c.JSON(http.StatusOK, u)
}

func (b *Backend) me(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	return c.JSON(http.StatusOK, current(c).user)
}

func (b *Backend) updateMe(c echo.Context) error {
	var in models.ProfileUpdate
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.Lock()
	defer b.Unlock()
	acc := current(c)
	if in.Email != nil {
		acc.user.Email = *in.Email
	}
	if in.Bio != nil {
		bio := *in.Bio
		acc.user.Bio = &bio
	}
	if in.Login != nil && *in.Login != acc.user.Login {
		if _, taken := b.accounts[*in.Login]; taken {
			return detail(c, http.StatusBadRequest, "Login already taken")
		}
		delete(b.accounts, acc.user.Login)
		acc.user.Login = *in.Login
		b.accounts[acc.user.Login] = acc
		b.tokens[acc.token] = acc.user.Login
	}
	return c.JSON(http.StatusOK, acc.user)
}

func (b *Backend) getUser(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	for _, acc := range b.accounts {
		if acc.user.ID == c.Param("id") {
			return c.JSON(http.StatusOK, acc.user)
		}
	}
	return detail(c, http.StatusNotFound, "User not found")
}

// view returns p as seen by viewer.
func (b *Backend) view(p *models.Post, viewer *account) models.Post {
	out := *p
	out.CommentsCount = len(b.comments[p.ID])
	out.Rating = 0
	for _, v := range b.ratings[p.ID] {
		out.Rating += v
	}
	if viewer != nil {
		out.IsFavorited = b.favorites[viewer.user.Login][p.ID]
		if v, ok := b.ratings[p.ID][viewer.user.Login]; ok {
			out.UserRating = &v
		}
	}
	return out
}

func (b *Backend) listPosts(keep func(*models.Post, *account) bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer := current(c)
		if viewer == nil {
			viewer = b.caller(c)
		}
		b.Lock()
		defer b.Unlock()
		out := []models.Post{}
		for _, p := range b.posts {
			if keep(p, viewer) {
				out = append(out, b.view(p, viewer))
			}
		}
		return c.JSON(http.StatusOK, out)
	}
}

func (b *Backend) userPosts(c echo.Context) error {
	id := c.Param("id")
	return b.listPosts(func(p *models.Post, _ *account) bool { return p.AuthorID == id })(c)
}

func (b *Backend) searchPosts(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))
	return b.listPosts(func(p *models.Post, _ *account) bool {
		return strings.Contains(strings.ToLower(p.Title+" "+p.Content), q)
	})(c)
}

func (b *Backend) searchUsers(c echo.Context) error {
	q := strings.ToLower(c.QueryParam("q"))
	b.Lock()
	defer b.Unlock()
	out := []models.User{}
	for _, acc := range b.accounts {
		if strings.Contains(strings.ToLower(acc.user.Login), q) {
			out = append(out, acc.user)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) findPost(id string) *models.Post {
	for _, p := range b.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (b *Backend) getPost(c echo.Context) error {
	viewer := b.caller(c)
	b.Lock()
	defer b.Unlock()
	p := b.findPost(c.Param("id"))
	if p == nil {
		return detail(c, http.StatusNotFound, "Post not found")
	}
	return c.JSON(http.StatusOK, b.view(p, viewer))
}

func (b *Backend) createPost(c echo.Context) error {
	var in models.PostInput
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.Lock()
	defer b.Unlock()
	p := b.addPostLocked(current(c), in.Title, in.Content)
	p.ImageURL = in.ImageURL
	return c.JSON(http.StatusOK, b.view(p, current(c)))
}

// ownPost loads the post named by :id and checks the caller wrote it.
// Caller holds the lock.
func (b *Backend) ownPost(c echo.Context) (*models.Post, error) {
	p := b.findPost(c.Param("id"))
	if p == nil {
		return nil, detail(c, http.StatusNotFound, "Post not found")
	}
	if p.AuthorID != current(c).user.ID {
		return nil, detail(c, http.StatusForbidden, "Not enough permissions")
	}
	return p, nil
}

func (b *Backend) updatePost(c echo.Context) error {
	var in models.PostInput
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.Lock()
	defer b.Unlock()
	p, err := b.ownPost(c)
	if p == nil {
		return err
	}
	p.Title, p.Content, p.ImageURL, p.UpdatedAt = in.Title, in.Content, in.ImageURL, time.Now().UTC()
	return c.JSON(http.StatusOK, b.view(p, current(c)))
}

func (b *Backend) deletePost(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	p, err := b.ownPost(c)
	if p == nil {
		return err
	}
	for i, q := range b.posts {
		if q == p {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			break
		}
	}
	return c.JSON(http.StatusOK, models.Status{Status: "deleted"})
}

func (b *Backend) rate(c echo.Context) error {
	var in struct {
		Value int `json:"value"`
	}
	if err := c.Bind(&in); err != nil || in.Value < -1 || in.Value > 1 {
		return detail(c, http.StatusUnprocessableEntity, "value must be -1, 0 or 1")
	}
	b.Lock()
	defer b.Unlock()
	p := b.findPost(c.Param("id"))
	if p == nil {
		return detail(c, http.StatusNotFound, "Post not found")
	}
	if b.ratings[p.ID] == nil {
		b.ratings[p.ID] = map[string]int{}
	}
	login := current(c).user.Login
	if in.Value == 0 {
		delete(b.ratings[p.ID], login)
	} else {
		b.ratings[p.ID][login] = in.Value
	}
	return c.JSON(http.StatusOK, models.RatingResult{Status: "rated", Value: in.Value})
}

func (b *Backend) listComments(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	if b.findPost(c.Param("id")) == nil {
		return detail(c, http.StatusNotFound, "Post not found")
	}
	out := append([]models.Comment{}, b.comments[c.Param("id")]...)
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) createComment(c echo.Context) error {
	var in struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&in); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}
	b.Lock()
	defer b.Unlock()
	postID := c.Param("id")
	if b.findPost(postID) == nil {
		return detail(c, http.StatusNotFound, "Post not found")
	}
	b.seq++
	acc := current(c)
	cm := models.Comment{
		ID: fmt.Sprintf("c%d", b.seq), PostID: postID, AuthorID: acc.user.ID,
		AuthorLogin: acc.user.Login, Content: in.Content, CreatedAt: time.Now().UTC(),
	}
	b.comments[postID] = append(b.comments[postID], cm)
	return c.JSON(http.StatusOK, cm)
}

func (b *Backend) deleteComment(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	list := b.comments[c.Param("id")]
	for i, cm := range list {
		if cm.ID != c.Param("cid") {
			continue
		}
		if cm.AuthorID != current(c).user.ID {
			return detail(c, http.StatusForbidden, "Not enough permissions")
		}
		b.comments[c.Param("id")] = append(list[:i], list[i+1:]...)
		return c.JSON(http.StatusOK, models.Status{Status: "deleted"})
	}
	return detail(c, http.StatusNotFound, "Comment not found")
}

func (b *Backend) listFavorites(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	acc := current(c)
	out := []models.Post{}
	for _, p := range b.posts {
		if b.favorites[acc.user.Login][p.ID] {
			out = append(out, b.view(p, acc))
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) addFavorite(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	if b.findPost(c.Param("id")) == nil {
		return detail(c, http.StatusNotFound, "Post not found")
	}
	login := current(c).user.Login
	if b.favorites[login] == nil {
		b.favorites[login] = map[string]bool{}
	}
	b.favorites[login][c.Param("id")] = true
	return c.JSON(http.StatusOK, models.Status{Status: "added"})
}

func (b *Backend) removeFavorite(c echo.Context) error {
	b.Lock()
	defer b.Unlock()
	delete(b.favorites[current(c).user.Login], c.Param("id"))
	return c.JSON(http.StatusOK, models.Status{Status: "removed"})
}

func (b *Backend) upload(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(io.Discard, f); err != nil {
			return err
		}

		b.Lock()
		defer b.Unlock()
		b.seq++
		url := fmt.Sprintf("/static/uploads/%s_%d%s", prefix, b.seq, strings.ToLower(filepath.Ext(fh.Filename)))
		if prefix == "avatar" {
			u := url
			current(c).user.AvatarURL = &u
		}
		return c.JSON(http.StatusOK, models.Upload{URL: url})
	}
}
