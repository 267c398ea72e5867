package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
)

type otpCodesRepo struct {
	db *sql.DB
}

func (r *otpCodesRepo) Set(ctx context.Context, key, code string, expiresAt time.Time) error {
	const q = `
INSERT INTO otp_codes (otp_key, code, expires_at)
VALUES (?, ?, ?)
ON CONFLICT (otp_key)
DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at`
	_, err := r.db.ExecContext(ctx, q, key, code, expiresAt.UTC())
	return err
}

// Get applies lazy expiry: an expired row is reported as absent but left
// in storage until overwritten or deleted. No background sweep exists.
func (r *otpCodesRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT code, expires_at FROM otp_codes WHERE otp_key = ?`
	var (
		code      string
		expiresAt time.Time
	)
	if err := r.db.QueryRowContext(ctx, q, key).Scan(&code, &expiresAt); err != nil {
		return "", mapNotFound(err)
	}
	if !expiresAt.After(time.Now().UTC()) {
		return "", store.ErrNotFound
	}
	return code, nil
}

func (r *otpCodesRepo) Delete(ctx context.Context, key string) (bool, error) {
	const q = `DELETE FROM otp_codes WHERE otp_key = ?`
	res, err := r.db.ExecContext(ctx, q, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *otpCodesRepo) ListRecent(ctx context.Context, limit int) ([]domain.OTPCode, error) {
	const q = `
SELECT otp_key, code, expires_at
FROM otp_codes ORDER BY expires_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OTPCode
	for rows.Next() {
		var o domain.OTPCode
		if err := rows.Scan(&o.Key, &o.Code, &o.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
