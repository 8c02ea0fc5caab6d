package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/michalkopec1981/saper-gra/go/internal/models"
	"github.com/michalkopec1981/saper-gra/go/internal/sqlutil"
)

// Repository performs the storage side of session lifecycle changes.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ResetGameData wipes all players, scans, answers and codes, then seeds
// a fresh set of QR codes, all in one transaction. Red codes are named
// czerwony1..N, white codes bialy1..N.
func (r *Repository) ResetGameData(ctx context.Context, whiteCount, redCount int) ([]models.QRCode, error) {
	var codes []models.QRCode
	err := sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"player_scans", "player_answers", "players", "qr_codes"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		seed := func(identifier string, isRed bool) error {
			code := models.QRCode{CodeIdentifier: identifier, IsRed: isRed}
			err := tx.QueryRowContext(ctx,
				`INSERT INTO qr_codes (code_identifier, is_red) VALUES ($1, $2) RETURNING id`,
				identifier, isRed).Scan(&code.ID)
			if err != nil {
				return fmt.Errorf("failed to seed qr code %s: %w", identifier, err)
			}
			codes = append(codes, code)
			return nil
		}

		for i := 1; i <= redCount; i++ {
			if err := seed(fmt.Sprintf("czerwony%d", i), true); err != nil {
				return err
			}
		}
		for i := 1; i <= whiteCount; i++ {
			if err := seed(fmt.Sprintf("bialy%d", i), false); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
