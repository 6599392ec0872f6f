// Package tokenstore persists the bearer token of the session between runs,
// either in the local metadata table or in the operating system keyring.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/dmitrijs2005/microblog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/microblog/internal/client/session"
)

// Kinds accepted by Open.
const (
	KindSQLite  = "sqlite"
	KindKeyring = "keyring"
)

// DefaultKeyringService is the keyring service name; the token is stored under
// the account "token".
const DefaultKeyringService = "microblog"

var (
	_ session.TokenStore = (*MetadataStore)(nil)
	_ session.TokenStore = (*KeyringStore)(nil)
)

// MetadataStore keeps the token in the metadata table under metadata.KeyToken.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) LoadToken(ctx context.Context) (string, bool, error) {
	v, ok, err := s.repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return "", false, err
	}
	if !ok || v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (s *MetadataStore) SaveToken(ctx context.Context, token string) error {
	return s.repo.Set(ctx, metadata.KeyToken, token)
}

func (s *MetadataStore) DeleteToken(ctx context.Context) error {
	return s.repo.Delete(ctx, metadata.KeyToken)
}

// KeyringStore keeps the token in the system keyring.
type KeyringStore struct {
	Service string
}

func (s *KeyringStore) LoadToken(context.Context) (string, bool, error) {
	v, err := keyring.Get(s.service(), metadata.KeyToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring get: %w", err)
	}
	return v, v != "", nil
}

func (s *KeyringStore) SaveToken(_ context.Context, token string) error {
	if err := keyring.Set(s.service(), metadata.KeyToken, token); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (s *KeyringStore) DeleteToken(context.Context) error {
	err := keyring.Delete(s.service(), metadata.KeyToken)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("keyring delete: %w", err)
}

func (s *KeyringStore) service() string {
	if s != nil && s.Service != "" {
		return s.Service
	}
	return DefaultKeyringService
}

// availabilityAccount is written and removed by KeyringAvailable.
const availabilityAccount = "availability-check"

// KeyringAvailable reports whether the system keyring accepts writes. Any
// backend failure counts as unavailable, including an unsupported platform
// or a desktop session without a secret service.
func KeyringAvailable() bool {
	if err := keyring.Set(DefaultKeyringService, availabilityAccount, "ok"); err != nil {
		return false
	}
	if err := keyring.Delete(DefaultKeyringService, availabilityAccount); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return false
	}
	return true
}

// ErrUnknownKind is returned by Open for an unsupported store kind.
var ErrUnknownKind = errors.New("unknown token store")

// Open returns the token store of the given kind. An empty kind means sqlite.
// Asking for the keyring on a system without one falls back to sqlite and
// reports fellBack=true.
func Open(kind string, repo metadata.Repository) (store session.TokenStore, fellBack bool, err error) {
	switch kind {
	case "", KindSQLite:
		return NewMetadataStore(repo), false, nil
	case KindKeyring:
		if !keyringAvailable() {
			return NewMetadataStore(repo), true, nil
		}
		return &KeyringStore{}, false, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// keyringAvailable is a seam for tests.
var keyringAvailable = KeyringAvailable
