package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Receipts() store.Receipts     { return &receiptsRepo{db: s.db} }
func (s *Store) ShortLinks() store.ShortLinks { return &shortLinksRepo{db: s.db} }
func (s *Store) OTPCodes() store.OTPCodes     { return &otpCodesRepo{db: s.db} }
func (s *Store) RateLimits() store.RateLimits { return &rateLimitsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func marshalItems(items []domain.ReceiptItem) (string, error) {
	if items == nil {
		items = []domain.ReceiptItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("sqlite: marshal items: %w", err)
	}
	return string(raw), nil
}

func unmarshalItems(raw string) ([]domain.ReceiptItem, error) {
	if raw == "" {
		return []domain.ReceiptItem{}, nil
	}
	var items []domain.ReceiptItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("sqlite: unmarshal items: %w", err)
	}
	return items, nil
}
