package sqlite

import (
	"context"
	"database/sql"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
)

type shortLinksRepo struct {
	db *sql.DB
}

func (r *shortLinksRepo) Create(ctx context.Context, l domain.ShortLink) error {
	const q = `
INSERT INTO short_links (code, long_url, usage, usage_max, expires_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		l.Code,
		l.LongURL,
		l.Usage,
		l.UsageMax,
		l.ExpiresAt.UTC(),
		l.CreatedAt.UTC(),
	)
	return err
}

func (r *shortLinksRepo) Get(ctx context.Context, code string) (domain.ShortLink, error) {
	const q = `
SELECT code, long_url, usage, usage_max, expires_at, created_at
FROM short_links WHERE code = ?`
	var l domain.ShortLink
	err := r.db.QueryRowContext(ctx, q, code).Scan(
		&l.Code,
		&l.LongURL,
		&l.Usage,
		&l.UsageMax,
		&l.ExpiresAt,
		&l.CreatedAt,
	)
	if err != nil {
		return domain.ShortLink{}, mapNotFound(err)
	}
	return l, nil
}

func (r *shortLinksRepo) IncrementUsage(ctx context.Context, code string) error {
	const q = `UPDATE short_links SET usage = usage + 1 WHERE code = ?`
	res, err := r.db.ExecContext(ctx, q, code)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

func (r *shortLinksRepo) ListRecent(ctx context.Context, limit int) ([]domain.ShortLink, error) {
	const q = `
SELECT code, long_url, usage, usage_max, expires_at, created_at
FROM short_links ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ShortLink
	for rows.Next() {
		var l domain.ShortLink
		if err := rows.Scan(&l.Code, &l.LongURL, &l.Usage, &l.UsageMax, &l.ExpiresAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
