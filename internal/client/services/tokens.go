package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nyakeriga/geoforensics-web-ui/internal/client/repositories/metadata"
	"github.com/nyakeriga/geoforensics-web-ui/internal/common"
)

// TokenStore persists the session token between runs.
// Load returns "" when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// SQLiteTokenStore keeps the token in the local metadata table.
type SQLiteTokenStore struct {
	repo metadata.Repository
}

func NewSQLiteTokenStore(db *sql.DB) *SQLiteTokenStore {
	return &SQLiteTokenStore{repo: metadata.NewSQLiteRepository(db)}
}

func (s *SQLiteTokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.TokenStorageKey)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return string(v), nil
}

func (s *SQLiteTokenStore) Save(ctx context.Context, token string) error {
	if err := s.repo.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *SQLiteTokenStore) Delete(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.TokenStorageKey); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
