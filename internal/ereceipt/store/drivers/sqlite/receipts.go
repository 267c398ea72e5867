package sqlite

import (
	"context"
	"database/sql"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
)

type receiptsRepo struct {
	db *sql.DB
}

func (r *receiptsRepo) Create(ctx context.Context, rec domain.Receipt) error {
	itemsJSON, err := marshalItems(rec.Items)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO receipts (receipt_id, txn_id, msisdn, amount_cents, currency, items_json, expires_at, max_uses, uses, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		rec.ID,
		rec.TxnID,
		rec.MSISDN,
		rec.Amount.Cents(),
		rec.Currency,
		itemsJSON,
		rec.ExpiresAt.UTC(),
		rec.MaxUses,
		rec.Uses,
		rec.CreatedAt.UTC(),
	)
	return err
}

func (r *receiptsRepo) Get(ctx context.Context, id string) (domain.Receipt, error) {
	const q = `
SELECT receipt_id, txn_id, msisdn, amount_cents, currency, items_json, expires_at, max_uses, uses, created_at
FROM receipts WHERE receipt_id = ?`
	rec, err := scanReceipt(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return domain.Receipt{}, mapNotFound(err)
	}
	return rec, nil
}

// IncrementUses bumps the redemption counter. The max-uses ceiling is
// enforced by the caller before the increment, mirroring the verify flow's
// check-then-increment ordering.
func (r *receiptsRepo) IncrementUses(ctx context.Context, id string) error {
	const q = `UPDATE receipts SET uses = uses + 1 WHERE receipt_id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *receiptsRepo) ListRecent(ctx context.Context, limit int) ([]domain.Receipt, error) {
	const q = `
SELECT receipt_id, txn_id, msisdn, amount_cents, currency, items_json, expires_at, max_uses, uses, created_at
FROM receipts ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Receipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row rowScanner) (domain.Receipt, error) {
	var (
		rec       domain.Receipt
		cents     int64
		itemsJSON string
	)
	err := row.Scan(
		&rec.ID,
		&rec.TxnID,
		&rec.MSISDN,
		&cents,
		&rec.Currency,
		&itemsJSON,
		&rec.ExpiresAt,
		&rec.MaxUses,
		&rec.Uses,
		&rec.CreatedAt,
	)
	if err != nil {
		return domain.Receipt{}, err
	}

	rec.Amount = domain.Amount(cents)
	rec.Items, err = unmarshalItems(itemsJSON)
	if err != nil {
		return domain.Receipt{}, err
	}
	return rec, nil
}
