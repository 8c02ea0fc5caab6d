package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Booleans are persisted the way the host console expects them.
const (
	boolTrue  = "True"
	boolFalse = "False"
)

// Repository stores the key/value game settings.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the value for key and whether it is present.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM game_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a setting value.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO game_settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetBool reads a string-encoded boolean setting. Missing keys read false.
func (r *Repository) GetBool(ctx context.Context, key string) (bool, error) {
	value, ok, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return ok && value == boolTrue, nil
}

// SetBool writes a string-encoded boolean setting.
func (r *Repository) SetBool(ctx context.Context, key string, v bool) error {
	value := boolFalse
	if v {
		value = boolTrue
	}
	return r.Set(ctx, key, value)
}

// EnsureDefaults inserts any missing settings without overwriting
// existing values. Called once at startup.
func (r *Repository) EnsureDefaults(ctx context.Context, defaults map[string]string) error {
	for key, value := range defaults {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO game_settings (key, value) VALUES ($1, $2)
			 ON CONFLICT (key) DO NOTHING`, key, value)
		if err != nil {
			return fmt.Errorf("failed to ensure setting %s: %w", key, err)
		}
	}
	return nil
}
