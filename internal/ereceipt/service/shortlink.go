package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/cryptox"
)

// ShortenerService issues and resolves short redirect links. Public
// creation shares one durable hourly budget across all anonymous callers;
// internally created receipt links bypass it.
type ShortenerService struct {
	Store    store.ShortLinks
	Limiter  *RateLimitService
	BaseURL  string // e.g. "http://localhost:8080/s"
	CodeLen  int
	AnonMax  int // public creations per hour, all callers combined
	MaxTries int // retries on a code collision
}

// CreateLink persists a short link for longURL and returns it. Collisions
// on the random code are retried with a fresh code.
func (s *ShortenerService) CreateLink(ctx context.Context, longURL string, usageMax int, expiresAt time.Time) (domain.ShortLink, error) {
	tries := s.MaxTries
	if tries <= 0 {
		tries = 3
	}

	var lastErr error
	for i := 0; i < tries; i++ {
		code, err := cryptox.GenerateCode(s.CodeLen)
		if err != nil {
			return domain.ShortLink{}, err
		}

		link := domain.ShortLink{
			Code:      code,
			LongURL:   longURL,
			UsageMax:  usageMax,
			ExpiresAt: expiresAt.UTC(),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.Store.Create(ctx, link); err != nil {
			lastErr = err
			continue
		}
		return link, nil
	}
	return domain.ShortLink{}, fmt.Errorf("shorten: exhausted code retries: %w", lastErr)
}

// Shorten is the public entry point. One shared anonymous budget per
// clock hour bounds total creation across every caller.
func (s *ShortenerService) Shorten(ctx context.Context, longURL string, usageMax int, expiresAt time.Time) (domain.ShortLink, error) {
	key := fmt.Sprintf("rl:short:anon:%s", time.Now().UTC().Format("2006010215"))
	ok, err := s.Limiter.Hit(ctx, key, s.AnonMax, time.Hour)
	if err != nil {
		return domain.ShortLink{}, err
	}
	if !ok {
		return domain.ShortLink{}, ErrRateLimited
	}
	return s.CreateLink(ctx, longURL, usageMax, expiresAt)
}

// Resolve returns the target URL for code and consumes one use. The
// check and the increment are separate statements, so two dereferences
// racing on the final use can both pass; the counter still records both.
func (s *ShortenerService) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.Store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnknownCode
		}
		return "", err
	}

	if link.Expired(time.Now()) {
		return "", ErrLinkExpired
	}
	if link.Exhausted() {
		return "", ErrLinkUsageExceeded
	}

	if err := s.Store.IncrementUsage(ctx, code); err != nil {
		return "", err
	}
	return link.LongURL, nil
}

// ShortURL renders the public URL for a code.
func (s *ShortenerService) ShortURL(code string) string {
	return fmt.Sprintf("%s/%s", s.BaseURL, code)
}
