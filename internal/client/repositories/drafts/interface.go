package drafts

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/microblog/internal/client/models"
)

// ErrNotFound is returned when no draft has the requested id.
var ErrNotFound = errors.New("draft not found")

// Repository describes CRUD operations for drafts.
type Repository interface {
	// Upsert inserts a new draft or updates an existing one by ID.
	Upsert(ctx context.Context, d *models.Draft) error

	// List returns all drafts, most recently updated first.
	List(ctx context.Context) ([]models.Draft, error)

	// GetByID returns ErrNotFound when the draft does not exist.
	GetByID(ctx context.Context, id string) (*models.Draft, error)

	// DeleteByID returns ErrNotFound when the draft does not exist.
	DeleteByID(ctx context.Context, id string) error
}
