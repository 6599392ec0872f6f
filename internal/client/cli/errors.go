package cli

import (
	"context"
	"errors"
	"sort"

	"github.com/dmitrijs2005/microblog/internal/client/client"
	"github.com/dmitrijs2005/microblog/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/microblog/internal/client/session"
	"github.com/dmitrijs2005/microblog/internal/client/validation"
)

const (
	msgSessionExpired = "Your session has expired. Please log in again."
	msgNotFound       = "Not found."
	msgUnavailable    = "Server is unavailable. Try again later."
	msgTryLater       = "Something went wrong. Try again later."
	msgLoginFirst     = "Please log in first (login or register)."
)

// presentError turns a command error into a message for the user. It never
// fails; details go to the log.
func (a *App) presentError(ctx context.Context, err error) {
	var ve *validation.ValidationError

	switch {
	case errors.As(err, &ve):
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			a.fail(k + ": " + ve.Fields[k])
		}

	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, session.ErrNotAuthenticated):
		a.fail(msgSessionExpired)

	case errors.Is(err, client.ErrNotFound), errors.Is(err, drafts.ErrNotFound):
		a.fail(msgNotFound)

	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ctx, ModeOffline)
		a.fail(msgUnavailable)

	case !errors.Is(err, client.ErrServer) && client.Detail(err) != "":
		a.fail(client.Detail(err))

	case errors.Is(err, context.Canceled):

	default:
		a.log.Error(ctx, "command failed", "err", err)
		a.fail(msgTryLater)
	}
}
