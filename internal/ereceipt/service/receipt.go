package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/idx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// IssueParams are the upstream billing fields for a new receipt.
type IssueParams struct {
	TxnID    string
	MSISDN   string
	Amount   domain.Amount
	Currency string
	Items    []domain.ReceiptItem
}

// IssueResult is everything the issuing system needs to hand the
// receipt to the subscriber.
type IssueResult struct {
	Receipt  domain.Receipt
	Token    string
	LongURL  string
	ShortURL string
}

// ReceiptService orchestrates issuance: persist the receipt, mint the
// bearer token, wrap the viewer URL in a short link and notify the
// subscriber.
type ReceiptService struct {
	Store       store.Receipts
	Tokens      *TokenService
	Shortener   *ShortenerService
	Notifier    Notifier
	ViewBaseURL string // viewer page the long URL points at
	TTL         time.Duration
	MaxUses     int
}

// Issue creates a receipt with a fresh ULID id and a fresh UUID jti.
// The short link inherits the receipt's expiry and usage ceiling.
// Notification is best-effort; a failed SMS does not undo issuance.
func (s *ReceiptService) Issue(ctx context.Context, p IssueParams) (IssueResult, error) {
	now := time.Now().UTC()

	rec := domain.Receipt{
		ID:        idx.New().String(),
		TxnID:     p.TxnID,
		MSISDN:    p.MSISDN,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Items:     p.Items,
		ExpiresAt: now.Add(s.TTL),
		MaxUses:   s.MaxUses,
		CreatedAt: now,
	}
	if err := s.Store.Create(ctx, rec); err != nil {
		return IssueResult{}, fmt.Errorf("create receipt: %w", err)
	}

	jti := uuid.NewString()
	token, err := s.Tokens.Issue(jti, rec, now)
	if err != nil {
		return IssueResult{}, fmt.Errorf("sign token: %w", err)
	}

	longURL := fmt.Sprintf("%s?token=%s", s.ViewBaseURL, url.QueryEscape(token))

	link, err := s.Shortener.CreateLink(ctx, longURL, rec.MaxUses, rec.ExpiresAt)
	if err != nil {
		return IssueResult{}, fmt.Errorf("create short link: %w", err)
	}

	shortURL := s.Shortener.ShortURL(link.Code)
	s.Notifier.SendReceiptLink(ctx, rec.MSISDN, shortURL)

	slogx.FromContext(ctx).Info("receipt issued",
		slog.String("receipt_id", rec.ID),
		slog.String("txn_id", rec.TxnID),
		slog.String("code", link.Code),
	)

	return IssueResult{
		Receipt:  rec,
		Token:    token,
		LongURL:  longURL,
		ShortURL: shortURL,
	}, nil
}

// Get returns a receipt by id.
func (s *ReceiptService) Get(ctx context.Context, id string) (domain.Receipt, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Receipt{}, ErrInvalidReceipt
		}
		return domain.Receipt{}, err
	}
	return rec, nil
}
