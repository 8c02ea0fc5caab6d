package qrcode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/michalkopec1981/saper-gra/go/internal/apperr"
	"github.com/michalkopec1981/saper-gra/go/internal/models"
)

// Repository implements QR code data access.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByIdentifier retrieves a code by its scanned string identifier.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*models.QRCode, error) {
	var (
		code      models.QRCode
		claimedBy sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code_identifier, is_red, claimed_by_player_id
		 FROM qr_codes WHERE code_identifier = $1`, identifier).
		Scan(&code.ID, &code.CodeIdentifier, &code.IsRed, &claimedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("Ten kod QR jest nieprawidłowy.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get qr code: %w", err)
	}
	if claimedBy.Valid {
		id := int(claimedBy.Int64)
		code.ClaimedByPlayerID = &id
	}
	return &code, nil
}

// List returns every seeded code.
func (r *Repository) List(ctx context.Context) ([]models.QRCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code_identifier, is_red, claimed_by_player_id
		 FROM qr_codes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr codes: %w", err)
	}
	defer rows.Close()

	var codes []models.QRCode
	for rows.Next() {
		var (
			code      models.QRCode
			claimedBy sql.NullInt64
		)
		if err := rows.Scan(&code.ID, &code.CodeIdentifier, &code.IsRed, &claimedBy); err != nil {
			return nil, fmt.Errorf("failed to scan qr code: %w", err)
		}
		if claimedBy.Valid {
			id := int(claimedBy.Int64)
			code.ClaimedByPlayerID = &id
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate qr codes: %w", err)
	}
	return codes, nil
}

// ClaimIfUnclaimed atomically marks a red code as claimed by playerID.
// The conditional UPDATE is the whole point: two players racing on the
// same code can never both observe it unclaimed.
func (r *Repository) ClaimIfUnclaimed(ctx context.Context, codeID, playerID int) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE qr_codes SET claimed_by_player_id = $2
		 WHERE id = $1 AND claimed_by_player_id IS NULL`, codeID, playerID)
	if err != nil {
		return false, fmt.Errorf("failed to claim qr code: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected count: %w", err)
	}
	return rowsAffected > 0, nil
}
