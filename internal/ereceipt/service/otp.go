package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/cryptox"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

const (
	// OTPDigits is the length of a one-time code.
	OTPDigits = 6

	// OTPTTL is how long an issued code stays redeemable.
	OTPTTL = 5 * time.Minute

	// OTPRequestLimit caps code requests per token per minute.
	OTPRequestLimit = 3
)

// OTPService gates final receipt disclosure behind a one-time code bound
// to the token's jti. One outstanding code per jti; re-requesting
// replaces it.
type OTPService struct {
	Receipts store.Receipts
	Codes    store.OTPCodes
	Tokens   *TokenService
	Limiter  *RateLimitService
	Notifier Notifier
	DemoMode bool
}

func otpKey(jti string) string {
	return "otp:" + jti
}

// Request validates the token, applies the durable per-jti budget and
// issues a fresh 6-digit code. In demo mode the code is echoed back to
// the caller; in production only the SMS carrier sees it.
func (s *OTPService) Request(ctx context.Context, token string) (string, error) {
	claims, err := s.Tokens.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	jti := claims.ID

	ok, err := s.Limiter.Hit(ctx, "rl:otp:"+jti, OTPRequestLimit, time.Minute)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrRateLimited
	}

	rec, err := s.loadReceipt(ctx, claims.ReceiptID)
	if err != nil {
		return "", err
	}
	if rec.Expired(time.Now()) {
		return "", ErrReceiptExpired
	}

	code, err := cryptox.GenerateNumericCode(OTPDigits)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	if err := s.Codes.Set(ctx, otpKey(jti), code, time.Now().UTC().Add(OTPTTL)); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	s.Notifier.SendOTP(ctx, rec.MSISDN, code)
	slogx.FromContext(ctx).Info("otp issued", slog.String("receipt_id", rec.ID))

	if s.DemoMode {
		return code, nil
	}
	return "", nil
}

// Verify redeems a code: the stored record is deleted first, then the
// receipt's usage counter is incremented. A crash between the two burns
// the code without consuming a use, which errs on the safe side.
func (s *OTPService) Verify(ctx context.Context, token, code string) (string, error) {
	claims, err := s.Tokens.Validate(ctx, token)
	if err != nil {
		return "", err
	}
	jti := claims.ID

	rec, err := s.loadReceipt(ctx, claims.ReceiptID)
	if err != nil {
		return "", err
	}
	now := time.Now()
	if rec.Expired(now) {
		return "", ErrReceiptExpired
	}
	if rec.Exhausted() {
		return "", ErrUsageExhausted
	}

	stored, err := s.Codes.Get(ctx, otpKey(jti))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrOTPMissing
		}
		return "", err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return "", ErrOTPMismatch
	}

	if _, err := s.Codes.Delete(ctx, otpKey(jti)); err != nil {
		return "", fmt.Errorf("consume otp: %w", err)
	}
	if err := s.Receipts.IncrementUses(ctx, rec.ID); err != nil {
		return "", fmt.Errorf("record use: %w", err)
	}

	slogx.FromContext(ctx).Info("otp verified", slog.String("receipt_id", rec.ID))
	return rec.ID, nil
}

// loadReceipt maps a missing row to the invalid-receipt class so a valid
// token for a vanished receipt leaks nothing extra.
func (s *OTPService) loadReceipt(ctx context.Context, id string) (domain.Receipt, error) {
	rec, err := s.Receipts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Receipt{}, ErrInvalidReceipt
		}
		return domain.Receipt{}, err
	}
	return rec, nil
}
