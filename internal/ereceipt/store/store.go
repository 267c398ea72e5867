package store

import (
	"context"
	"errors"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. It exposes sub-repositories to keep
// concerns tidy and testable.
type Store interface {
	Receipts() Receipts
	ShortLinks() ShortLinks
	OTPCodes() OTPCodes
	RateLimits() RateLimits

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Receipts interface {
	// Create inserts a new receipt (id is provided by the app via ULID).
	Create(ctx context.Context, r domain.Receipt) error

	// Get returns a receipt by id.
	Get(ctx context.Context, id string) (domain.Receipt, error)

	// IncrementUses bumps the redemption counter by one. Callers enforce
	// the max-uses ceiling before invoking this.
	IncrementUses(ctx context.Context, id string) error

	// ListRecent returns up to limit receipts, newest first (admin views).
	ListRecent(ctx context.Context, limit int) ([]domain.Receipt, error)
}

type ShortLinks interface {
	// Create inserts a new short link.
	Create(ctx context.Context, l domain.ShortLink) error

	// Get returns a short link by its code.
	Get(ctx context.Context, code string) (domain.ShortLink, error)

	// IncrementUsage bumps the dereference counter by one.
	IncrementUsage(ctx context.Context, code string) error

	// ListRecent returns up to limit links, newest first (admin views).
	ListRecent(ctx context.Context, limit int) ([]domain.ShortLink, error)
}

type OTPCodes interface {
	// Set upserts the single outstanding code for key, replacing any prior
	// code and resetting the expiry.
	Set(ctx context.Context, key, code string, expiresAt time.Time) error

	// Get returns the live code for key. A record that exists but has
	// already expired is reported as ErrNotFound; the row is left in place
	// until overwritten or deleted (lazy expiry).
	Get(ctx context.Context, key string) (string, error)

	// Delete removes the record for key, reporting whether one was removed.
	Delete(ctx context.Context, key string) (bool, error)

	// ListRecent returns up to limit records, newest expiry first (admin
	// views; callers mask the code).
	ListRecent(ctx context.Context, limit int) ([]domain.OTPCode, error)
}

type RateLimits interface {
	// Hit atomically inserts-or-increments the counter for (key, windowEnd)
	// and returns the post-increment count. This must be a single storage
	// operation; a read-then-write pair would lose updates under
	// concurrent callers racing on the same key.
	Hit(ctx context.Context, key string, windowEnd time.Time) (int, error)

	// ListRecent returns up to limit counters, newest window first (admin
	// views).
	ListRecent(ctx context.Context, limit int) ([]domain.RateLimitCounter, error)
}
