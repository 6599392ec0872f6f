package services

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/models"
	"github.com/dmitrijs2005/microblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: validate, obtain a token, fetch the user with it, commit the session.
//   - Register: validate, create the account, then Login.
//   - Logout: end the session; safe to call when already logged out.
//   - Ping: check server liveness.
//   - LastLogin: the login used the last time, for prompting.
//   - Claims: decoded claims of the current token.
//   - LocalKeys: names of the settings kept in the local database.
//   - ClearLocalData: log out and wipe the local settings; drafts are kept.
type AuthService interface {
	Login(ctx context.Context, login, password string) (*models.User, error)
	Register(ctx context.Context, email, login, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	LastLogin(ctx context.Context) string
	Claims() (client.Claims, error)
	LocalKeys(ctx context.Context) ([]string, error)
	ClearLocalData(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session *session.Controller
	meta    metadata.Repository
}

func NewAuthService(c client.Client, s *session.Controller, meta metadata.Repository) AuthService {
	return &authService{client: c, session: s, meta: meta}
}

func (a *authService) Login(ctx context.Context, login, password string) (*models.User, error) {
	if err := validation.Struct(validation.LoginForm{Login: login, Password: password}); err != nil {
		return nil, err
	}

	tok, err := a.client.Token(ctx, login, password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	user, err := a.client.CurrentUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("get current user error: %w", err)
	}

	if err := a.session.Login(ctx, tok.AccessToken, user); err != nil {
		return nil, err
	}

	// Only used to pre-fill the next login prompt.
	_ = a.meta.Set(ctx, metadata.KeyLastLogin, user.Login)

	return user, nil
}

func (a *authService) Register(ctx context.Context, email, login, password string) (*models.User, error) {
	form := validation.RegisterForm{Email: email, Login: login, Password: password}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	if _, err := a.client.Register(ctx, models.NewUser{Email: email, Login: login, Password: password}); err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return a.Login(ctx, login, password)
}

func (a *authService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) LastLogin(ctx context.Context) string {
	v, _, err := a.meta.Get(ctx, metadata.KeyLastLogin)
	if err != nil {
		return ""
	}
	return v
}

func (a *authService) Claims() (client.Claims, error) {
	tok := a.session.Token()
	if tok == "" {
		return client.Claims{}, session.ErrNotAuthenticated
	}
	return client.ParseClaims(tok)
}

func (a *authService) LocalKeys(ctx context.Context) ([]string, error) {
	m, err := a.meta.List(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(m)), nil
}

func (a *authService) ClearLocalData(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	return a.meta.Clear(ctx)
}
