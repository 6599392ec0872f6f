package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
)

func strPtr(s string) *string { return &s }

func TestProfile_UpdateCommitsToSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	var seen []session.Snapshot
	e.session.Subscribe(func(s session.Snapshot) { seen = append(seen, s) })

	u, err := e.profile.Update(context.Background(), models.ProfileUpdate{Bio: strPtr("gopher")})
	require.NoError(t, err)
	require.NotNil(t, u.Bio)

	s := e.session.Snapshot()
	require.NotNil(t, s.User.Bio)
	assert.Equal(t, "gopher", *s.User.Bio)
	assert.Equal(t, session.Authenticated, s.Status)
	require.Len(t, seen, 1)
}

func TestProfile_UpdateValidation(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := e.profile.Update(context.Background(), models.ProfileUpdate{})
	_, ok := validation.Field(err, "profile")
	assert.True(t, ok)

	_, err = e.profile.Update(context.Background(), models.ProfileUpdate{Login: strPtr("x")})
	_, ok = validation.Field(err, "login")
	assert.True(t, ok)
	assert.Zero(t, e.requests("PUT /users/me"))
}

func TestProfile_Me(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	u, err := e.profile.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "testuser", u.Login)
}

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))
	return path
}

func TestProfile_UploadAvatarRefreshesUser(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	up, err := e.profile.UploadAvatar(context.Background(), writeFile(t, "me.PNG", 128))
	require.NoError(t, err)
	assert.Contains(t, up.URL, "/static/uploads/avatar_")

	u := e.session.Snapshot().User
	require.NotNil(t, u.AvatarURL)
	assert.Equal(t, up.URL, *u.AvatarURL)
}

func TestProfile_UploadChecksFileLocally(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	_, err := e.profile.UploadImage(ctx, writeFile(t, "doc.pdf", 10))
	_, ok := validation.Field(err, "file")
	assert.True(t, ok)

	_, err = e.profile.UploadImage(ctx, writeFile(t, "huge.jpg", validation.MaxUploadSize+1))
	_, ok = validation.Field(err, "size")
	assert.True(t, ok)

	_, err = e.profile.UploadImage(ctx, filepath.Join(t.TempDir(), "missing.png"))
	_, ok = validation.Field(err, "file")
	assert.True(t, ok)

	assert.Zero(t, e.requests("POST /uploads/image"))

	up, err := e.profile.UploadImage(ctx, writeFile(t, "ok.gif", 16))
	require.NoError(t, err)
	assert.Contains(t, up.URL, ".gif")
}
