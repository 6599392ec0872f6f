// Package metadata stores small string settings of the client (the bearer
// token, the theme, the last used login) in the local SQLite database.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyToken     = "token"
	KeyTheme     = "theme"
	KeyLastLogin = "last_login"
)

type Repository interface {
	// Get reports ok=false when key is not set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
