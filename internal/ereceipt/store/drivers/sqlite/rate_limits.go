package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
)

type rateLimitsRepo struct {
	db *sql.DB
}

// Hit is the one place the limiter touches storage: a single
// upsert-with-increment that returns the post-increment count. Doing this
// as one statement is what makes concurrent hits on the same key safe; a
// read-then-write pair would lose updates and undercount contested limits.
func (r *rateLimitsRepo) Hit(ctx context.Context, key string, windowEnd time.Time) (int, error) {
	const q = `
INSERT INTO rate_limits (key, window_end, count)
VALUES (?, ?, 1)
ON CONFLICT (key, window_end)
DO UPDATE SET count = rate_limits.count + 1
RETURNING count`
	var count int
	if err := r.db.QueryRowContext(ctx, q, key, windowEnd.UTC()).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *rateLimitsRepo) ListRecent(ctx context.Context, limit int) ([]domain.RateLimitCounter, error) {
	const q = `
SELECT key, window_end, count
FROM rate_limits ORDER BY window_end DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RateLimitCounter
	for rows.Next() {
		var c domain.RateLimitCounter
		if err := rows.Scan(&c.Key, &c.WindowEnd, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
