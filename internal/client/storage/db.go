// Package storage opens the local SQLite database of the client and keeps its
// schema current with the embedded goose migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/microblog/internal/client/migrations"
	"github.com/dmitrijs2005/microblog/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/microblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/microblog/internal/filex"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// FileName is the database file created inside the data directory.
const FileName = "microblog.db"

// Repositories groups the repositories bound to one database handle.
type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Drafts   drafts.Repository
}

// gooseUp is a seam for testing migration failures.
var gooseUp = func(ctx context.Context, p *goose.Provider) error {
	_, err := p.Up(ctx)
	return err
}

// RunMigrations applies all pending migrations. Running it on an up-to-date
// database is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if err := gooseUp(ctx, p); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the database at dsn and migrates it.
// SQLite allows one writer at a time, so the pool is limited to a single
// connection; this also keeps ":memory:" databases shared.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Open creates dataDir if needed and initializes the database file in it.
// A leading "~" in dataDir is expanded.
func Open(ctx context.Context, dataDir string) (*Repositories, error) {
	dataDir, err := filex.ExpandHome(dataDir)
	if err != nil {
		return nil, err
	}
	if _, err := filex.EnsureDir(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := InitDatabase(ctx, filepath.Join(dataDir, FileName))
	if err != nil {
		return nil, err
	}
	return NewRepositories(db), nil
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Drafts:   drafts.NewSQLiteRepository(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
