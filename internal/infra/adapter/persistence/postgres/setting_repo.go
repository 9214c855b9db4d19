package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"
)

type SettingRepo struct {
	db *sql.DB
}

func NewSettingRepo(db *sql.DB) repository.SettingRepository {
	return &SettingRepo{db: db}
}

// Get returns the value for a provider/key pair. A missing row is reported
// as entity.ErrSettingNotFound, which callers treat as "not configured".
func (repo *SettingRepo) Get(ctx context.Context, provider, key string) (string, error) {
	const query = `
SELECT value
FROM integration_settings
WHERE provider = $1 AND key = $2`

	var value string
	err := repo.db.QueryRowContext(ctx, query, provider, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("Get: %s/%s: %w", provider, key, entity.ErrSettingNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("Get: %w", err)
	}
	return value, nil
}
