package postgres

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"symposium/internal/domain"
)

type loginCodeRepository struct {
	db *sql.DB
}

// NewLoginCodeRepository returns a domain.LoginCodeRepository implemented with Postgres.
// Only the most recent code per email is valid.
func NewLoginCodeRepository(db *sql.DB) domain.LoginCodeRepository {
	return &loginCodeRepository{db: db}
}

func (r *loginCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM login_codes WHERE email = $1`, email); err != nil {
		return fmt.Errorf("drop previous codes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO login_codes (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
	`, email, codeHash, expiresAt); err != nil {
		return fmt.Errorf("insert code: %w", err)
	}
	return tx.Commit()
}

// Consume redeems the live code for email when codeHash matches it. The row is locked for the
// check, so a code is redeemed at most once and every miss is counted. The code is deleted on
// success and on the miss that reaches domain.MaxLoginCodeAttempts.
func (r *loginCodeRepository) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		id       string
		stored   string
		attempts int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, code_hash, attempts
		FROM login_codes
		WHERE email = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
		FOR UPDATE
	`, email).Scan(&id, &stored, &attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(codeHash)) == 1 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM login_codes WHERE id = $1`, id); err != nil {
			return false, fmt.Errorf("redeem code: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("commit: %w", err)
		}
		return true, nil
	}

	if attempts+1 >= domain.MaxLoginCodeAttempts {
		_, err = tx.ExecContext(ctx, `DELETE FROM login_codes WHERE id = $1`, id)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE login_codes SET attempts = attempts + 1 WHERE id = $1`, id)
	}
	if err != nil {
		return false, fmt.Errorf("record miss: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return false, nil
}
