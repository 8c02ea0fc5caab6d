package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

const uniqueViolation = pq.ErrorCode("23505")

// Repository implements player data access.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreatePlayer inserts a new player with a zero score.
func (r *Repository) CreatePlayer(ctx context.Context, name string) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO players (name, score, warnings, revealed_letters)
		 VALUES ($1, 0, 0, '')
		 RETURNING id, name, score, warnings, revealed_letters`, name).
		Scan(&p.ID, &p.Name, &p.Score, &p.Warnings, &p.RevealedLetters)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.Conflictf("Player name already exists")
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &p, nil
}

// GetPlayer retrieves a player by ID.
func (r *Repository) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, score, warnings, revealed_letters
		 FROM players WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Score, &p.Warnings, &p.RevealedLetters)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("player %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return &p, nil
}

// ListPlayersByScore returns all players in leaderboard order.
func (r *Repository) ListPlayersByScore(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, score, warnings, revealed_letters
		 FROM players ORDER BY score DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Score, &p.Warnings, &p.RevealedLetters); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// DeletePlayer removes a player and their scans and answers.
func (r *Repository) DeletePlayer(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

// AddScore adjusts a player's score by delta, clamping at zero.
func (r *Repository) AddScore(ctx context.Context, id, delta int) (int, error) {
	var score int
	err := r.db.QueryRowContext(ctx,
		`UPDATE players SET score = GREATEST(score + $2, 0)
		 WHERE id = $1 RETURNING score`, id, delta).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFoundf("player %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust score: %w", err)
	}
	return score, nil
}

// AppendRevealedLetter appends a letter to the player's revealed set
// unless it is already present. The set only ever grows.
func (r *Repository) AppendRevealedLetter(ctx context.Context, id int, letter string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE players SET revealed_letters = revealed_letters || $2
		 WHERE id = $1 AND position($2 in revealed_letters) = 0`, id, letter)
	if err != nil {
		return fmt.Errorf("failed to append revealed letter: %w", err)
	}
	return nil
}

// IncrementWarnings bumps the player's warning count.
func (r *Repository) IncrementWarnings(ctx context.Context, id int) (int, error) {
	var warnings int
	err := r.db.QueryRowContext(ctx,
		`UPDATE players SET warnings = warnings + 1
		 WHERE id = $1 RETURNING warnings`, id).Scan(&warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.NotFoundf("player %d not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment warnings: %w", err)
	}
	return warnings, nil
}

// UnionRevealedLetters concatenates every player's revealed letters.
// The password mask only cares about membership, so duplicates are fine.
func (r *Repository) UnionRevealedLetters(ctx context.Context) (string, error) {
	var letters string
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(string_agg(revealed_letters, ''), '') FROM players`).Scan(&letters)
	if err != nil {
		return "", fmt.Errorf("failed to union revealed letters: %w", err)
	}
	return letters, nil
}
