package scan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository implements scan and answer history data access.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// LastScanTime returns the most recent scan of a (player, code) pair.
func (r *Repository) LastScanTime(ctx context.Context, playerID, codeID int) (time.Time, bool, error) {
	var at time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT scan_time FROM player_scans
		 WHERE player_id = $1 AND qrcode_id = $2
		 ORDER BY scan_time DESC LIMIT 1`, playerID, codeID).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get last scan time: %w", err)
	}
	return at, true, nil
}

// RecordScan stores a new scan timestamp for the cooldown window.
func (r *Repository) RecordScan(ctx context.Context, playerID, codeID int, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO player_scans (player_id, qrcode_id, scan_time)
		 VALUES ($1, $2, $3)`, playerID, codeID, at)
	if err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}
	return nil
}

// RecordAnswer marks the question as answered by the player. Returns
// false when the pair already exists, which callers reject as a
// duplicate answer.
func (r *Repository) RecordAnswer(ctx context.Context, playerID, questionID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO player_answers (player_id, question_id) VALUES ($1, $2)
		 ON CONFLICT (player_id, question_id) DO NOTHING`, playerID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to record answer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return rowsAffected > 0, nil
}
