package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
)

// Login asks for the login (offering the last one used) and the password,
// then starts a session.
func (a *App) Login(ctx context.Context, args []string) error {
	login := ""
	if len(args) > 0 {
		login = args[0]
	} else {
		last := a.authService.LastLogin(ctx)
		prompt := "Enter login"
		if last != "" {
			prompt += " [" + last + "]"
		}
		entered, err := GetSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		login = keep(last, entered)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	u, err := a.authService.Login(ctx, login, string(password))
	if errors.Is(err, client.ErrUnauthorized) {
		a.fail("Incorrect login or password.")
		return nil
	}
	if err != nil {
		return err
	}

	a.success("Welcome, " + u.Login + "!")
	return nil
}

// Register creates an account and logs into it.
func (a *App) Register(ctx context.Context, _ []string) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	login, err := GetSimpleText(a.reader, "Enter login", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	a.printf("Repeat password. ")
	again, err := getPassword(a.out)
	if err != nil {
		return err
	}
	if string(password) != string(again) {
		return &validation.ValidationError{Fields: map[string]string{"password": "does not match"}}
	}

	u, err := a.authService.Register(ctx, email, login, string(password))
	if err != nil {
		return err
	}
	a.success("Account created. Welcome, " + u.Login + "!")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// Forget logs out and erases the settings kept in the local database.
// Drafts are kept.
func (a *App) Forget(ctx context.Context, _ []string) error {
	keys, err := a.authService.LocalKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 && a.session.Status() != session.Authenticated {
		a.println("Nothing stored locally.")
		return nil
	}
	if len(keys) > 0 {
		a.println("Stored locally: " + strings.Join(keys, ", "))
	}

	ok, err := Confirm(a.reader, "Log out and erase local settings? Drafts are kept.", a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.authService.ClearLocalData(ctx); err != nil {
		return err
	}
	if err := a.useTheme(a.themeService.Get(ctx)); err != nil {
		return err
	}
	a.success("Local settings erased.")
	return nil
}

// Status prints the session, the connection and, when readable, the token
// expiry.
func (a *App) Status(_ context.Context, _ []string) error {
	s := a.session.Snapshot()
	a.printf("session: %s\n", s.Status)
	if s.User != nil {
		a.printf("user:    %s (%s)\n", s.User.Login, s.User.Email)
	}
	mode := a.Mode()
	if mode == ModeUnknown {
		mode = "unknown"
	}
	a.printf("server:  %s (%s)\n", a.http.BaseURL(), mode)

	if c, err := a.authService.Claims(); err == nil && !c.ExpiresAt.IsZero() {
		left := time.Until(c.ExpiresAt).Round(time.Minute)
		if c.Expired(time.Now()) {
			a.warn(fmt.Sprintf("token:   expired at %s", formatTime(c.ExpiresAt)))
		} else {
			a.printf("token:   expires %s (in %s)\n", formatTime(c.ExpiresAt), left)
		}
	}
	return nil
}
