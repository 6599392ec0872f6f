package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/microblog/internal/client/client/clienttest"
	"github.com/dmitrijs2005/microblog/internal/client/config"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/storage"
	"github.com/dmitrijs2005/microblog/internal/logging"
)

type harness struct {
	app     *App
	out     *bytes.Buffer
	backend *clienttest.Backend
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	stubPassword(t, "password")

	backend := clienttest.NewBackend(t)
	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = backend.URL()
	cfg.DataDir = t.TempDir()

	a, err := newApp(ctx, cfg, logging.Nop{}, storage.NewRepositories(db))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	a.out = out
	a.session.Bootstrap(ctx)

	return &harness{app: a, out: out, backend: backend}
}

// run feeds the lines to the REPL and returns what it printed.
func (h *harness) run(lines ...string) string {
	h.out.Reset()
	h.app.reader = rdr(strings.Join(lines, "\n") + "\n")
	h.app.runREPL(context.Background())
	return h.out.String()
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	out := h.run("login testuser")
	require.Contains(t, out, "Welcome, testuser!")
}

func (h *harness) requests(key string) int {
	h.backend.Lock()
	defer h.backend.Unlock()
	return h.backend.Requests[key]
}

func TestREPL_LoginStatusLogout(t *testing.T) {
	h := newHarness(t)
	h.backend.AddPost("testuser", "Hello there", "first post body")

	out := h.run("feed", "login", "testuser", "status", "my", "logout", "exit")

	assert.Contains(t, out, "Hello there")
	assert.Contains(t, out, "Welcome, testuser!")
	assert.Contains(t, out, "session: authenticated")
	assert.Contains(t, out, "user:    testuser (test@example.com)")
	assert.Contains(t, out, "(testuser)")
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, "Bye!")
	assert.Equal(t, session.Anonymous, h.app.session.Status())
}

func TestREPL_WrongPassword(t *testing.T) {
	h := newHarness(t)
	stubPassword(t, "nope")

	out := h.run("login testuser")
	assert.Contains(t, out, "Incorrect login or password.")
	assert.NotContains(t, out, msgSessionExpired)
	assert.Equal(t, session.Anonymous, h.app.session.Status())
}

func TestREPL_LoginRemembersLastLogin(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.run("logout")

	out := h.run("login", "")
	assert.Contains(t, out, "Enter login [testuser]")
	assert.Contains(t, out, "Welcome, testuser!")
}

func TestREPL_Register(t *testing.T) {
	h := newHarness(t)

	out := h.run("register", "new@example.com", "newbie")
	assert.Contains(t, out, "Account created. Welcome, newbie!")
	assert.Equal(t, "newbie", h.app.session.Snapshot().Login())
}

func TestREPL_Gating(t *testing.T) {
	h := newHarness(t)

	out := h.run("create", "favorites", "draft new")
	assert.Equal(t, 3, strings.Count(out, msgLoginFirst))
	assert.Zero(t, h.requests("POST /posts"))
	assert.Zero(t, h.requests("GET /favorites"))

	h.login(t)
	out = h.run("login", "register")
	assert.Equal(t, 2, strings.Count(out, "You are already logged in as testuser."))
}

func TestREPL_HelpFollowsSession(t *testing.T) {
	h := newHarness(t)

	out := h.run("help")
	assert.Contains(t, out, "login [login]")
	assert.Contains(t, out, "feed")
	assert.NotContains(t, out, "logout")

	h.login(t)
	out = h.run("help")
	assert.Contains(t, out, "logout")
	assert.Contains(t, out, "draft new|edit|show|publish|delete|from <id>")
	assert.NotContains(t, out, "register")
}

func TestREPL_UnknownCommandSuggests(t *testing.T) {
	h := newHarness(t)

	out := h.run("fed")
	assert.Contains(t, out, "Unknown command: fed. Did you mean: ")
	assert.Contains(t, out, "feed")

	out = h.run("zzzz")
	assert.Contains(t, out, "Unknown command: zzzz\n")
}

func TestREPL_UsageOnMissingArgs(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.run("rate p1", "uncomment", "search")
	assert.Contains(t, out, "Usage: rate <post> up|down|clear")
	assert.Contains(t, out, "Usage: uncomment <post> <comment>")
	assert.Contains(t, out, "Usage: search [posts|users] <query>")
}

func TestREPL_CreateShowRateComment(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.run("create", "My title", "Some **bold** content", "", "")
	require.Contains(t, out, "Published ")
	posts := h.backend.Posts()
	require.Len(t, posts, 1)
	id := posts[0].ID

	out = h.run("show "+id, "rate "+id+" up", "comment "+id+" nice one", "comments "+id)
	assert.Contains(t, out, "My title")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "Rating of "+id+" is now +1 (you: up)")
	assert.Contains(t, out, "Commented ")
	assert.Contains(t, out, "nice one")

	out = h.run("delete "+id, "y")
	assert.Contains(t, out, "Deleted "+id)
	assert.Empty(t, h.backend.Posts())
}

func TestREPL_CreateWithImage(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	img := filepath.Join(t.TempDir(), "pic.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	out := h.run("create", "With picture", "look at this picture", "", img)
	require.Contains(t, out, "Published ")

	posts := h.backend.Posts()
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].ImageURL)
	assert.Contains(t, *posts[0].ImageURL, "/static/uploads/post_")
}

func TestREPL_ValidationErrorsArePerField(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.run("create", "ab", "short", "")
	assert.Contains(t, out, "content: must be at least 10 characters")
	assert.Contains(t, out, "title: must be at least 3 characters")
	assert.Zero(t, h.requests("POST /posts"))
}

func TestREPL_ExpiredSessionLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.RevokeToken("mock-token")

	out := h.run("my", "status")
	assert.Contains(t, out, msgSessionExpired)
	assert.Contains(t, out, "session: anonymous")
	assert.Equal(t, session.Anonymous, h.app.session.Status())
}

func TestREPL_NotFoundAndServerErrors(t *testing.T) {
	h := newHarness(t)

	out := h.run("show nope")
	assert.Contains(t, out, msgNotFound)

	h.backend.Lock()
	h.backend.FailWith["GET /posts"] = http.StatusInternalServerError
	h.backend.Unlock()

	out = h.run("feed")
	assert.Contains(t, out, msgTryLater)
	assert.NotContains(t, out, "Internal Server Error")
}

func TestREPL_ForbiddenShowsBackendDetail(t *testing.T) {
	h := newHarness(t)
	h.backend.AddUser("other", "o@example.com", "password", "other-token")
	p := h.backend.AddPost("other", "Theirs", "not yours to delete")
	h.login(t)

	out := h.run("delete "+p.ID, "yes")
	assert.Contains(t, out, "Not enough permissions")
	assert.Len(t, h.backend.Posts(), 1)
}

func TestREPL_OfflineCreateKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.backend.Server.Close()

	out := h.run("create", "Offline post", "written on the train", "")
	assert.Contains(t, out, "Server is unavailable. Saved as draft ")
	assert.Equal(t, ModeOffline, h.app.Mode())

	list, err := h.app.draftService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Offline post", list[0].Title)

	out = h.run("feed")
	assert.Contains(t, out, msgUnavailable)
}

func TestREPL_DraftLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.run("draft new", "Draft title", "draft body long enough", "", "drafts")
	require.Contains(t, out, "Saved draft ")
	assert.Contains(t, out, "Draft title")
	assert.Contains(t, out, "new post")

	list, err := h.app.draftService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	out = h.run("draft show "+id, "draft publish "+id, "draft show "+id)
	assert.Contains(t, out, "draft body long enough")
	assert.Contains(t, out, "Published ")
	assert.Contains(t, out, msgNotFound)
	assert.Len(t, h.backend.Posts(), 1)
}

func TestREPL_DraftFromPost(t *testing.T) {
	h := newHarness(t)
	p := h.backend.AddPost("testuser", "Original", "original content")
	h.login(t)

	out := h.run("draft from "+p.ID, "", "changed content offline", "", "drafts")
	require.Contains(t, out, "Saved draft ")
	assert.Contains(t, out, "edits "+p.ID)
}

func TestREPL_FavoritesAndSearch(t *testing.T) {
	h := newHarness(t)
	p := h.backend.AddPost("testuser", "Go tips", "channels and goroutines")
	h.login(t)

	out := h.run("fav "+p.ID, "favorites", "search go", "search users test", "fav "+p.ID, "favorites")
	assert.Contains(t, out, "Added "+p.ID+" to favorites.")
	assert.Contains(t, out, "*fav*")
	assert.Contains(t, out, "Go tips")
	assert.Contains(t, out, "testuser")
	assert.Contains(t, out, "Removed "+p.ID+" from favorites.")
	assert.Contains(t, out, "No favorites yet.")
}

func TestREPL_ProfileEditAndAvatar(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	img := filepath.Join(t.TempDir(), "me.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpg"), 0o600))

	out := h.run("profile edit", "", "", "I write Go", "", "avatar "+img, "upload "+filepath.Join(t.TempDir(), "x.txt"))
	assert.Contains(t, out, "Profile updated.")
	assert.Contains(t, out, "bio: I write Go")
	assert.Contains(t, out, "Avatar updated: "+h.backend.URL()+"/static/uploads/avatar_")
	assert.Contains(t, out, "file: ")

	u := h.app.session.Snapshot().User
	require.NotNil(t, u.AvatarURL)
	require.NotNil(t, u.Bio)
	assert.Equal(t, "I write Go", *u.Bio)
}

func TestREPL_UserProfile(t *testing.T) {
	h := newHarness(t)
	other := h.backend.AddUser("other", "o@example.com", "password", "other-token")
	h.backend.AddPost("other", "Their post", "content by other")

	out := h.run("user " + other.ID)
	assert.Contains(t, out, "other")
	assert.Contains(t, out, "Their post")
}

func TestREPL_ThemeAndRender(t *testing.T) {
	h := newHarness(t)

	out := h.run("theme", "theme dark", "theme neon", "theme")
	assert.Contains(t, out, "theme: system")
	assert.Contains(t, out, "Theme set to dark")
	assert.Contains(t, out, `unknown theme "neon"`)
	assert.Contains(t, out, "theme: dark")

	out = h.run("render --html **x** <b>")
	assert.Contains(t, out, "<strong class=")
	assert.Contains(t, out, ">x</strong>")
	assert.Contains(t, out, "&lt;b&gt;")

	out = h.run("render", "# Title", "", "")
	assert.Contains(t, out, "Title")
}

func TestRun_BootstrapsAndReportsOnline(t *testing.T) {
	h := newHarness(t)
	h.app.reader = rdr("status\nexit\n")

	h.app.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "microblog")
	assert.Contains(t, out, "(anonymous online)")
	assert.Contains(t, out, "server:  "+h.backend.URL()+" (online)")
	assert.Equal(t, ModeOnline, h.app.Mode())
}

func TestRun_StopsOnEOF(t *testing.T) {
	h := newHarness(t)
	h.app.reader = rdr("")

	h.app.Run(context.Background())
	assert.NotContains(t, h.out.String(), "Bye!")
}

func TestREPL_ForgetErasesLocalSettings(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out := h.run("theme dark", "forget", "y", "status", "theme", "forget")
	assert.Contains(t, out, "Stored locally: last_login, theme, token")
	assert.Contains(t, out, "Local settings erased.")
	assert.Contains(t, out, "session: anonymous")
	assert.Contains(t, out, "theme: system")
	assert.Contains(t, out, "Nothing stored locally.")
	assert.Empty(t, h.app.authService.LastLogin(context.Background()))
}
