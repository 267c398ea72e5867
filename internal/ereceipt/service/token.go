package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// TokenService mints and validates receipt bearer tokens against the
// shared key ring. Rotation swaps the signing key without invalidating
// tokens minted under older kids.
type TokenService struct {
	Ring     *jwtx.KeyRing
	Issuer   string
	Audience string
	TTL      time.Duration
	Leeway   time.Duration
}

// Issue signs a token for the receipt under the ring's active key. The
// jti is the handle the OTP flow keys on, so it must be unique per token.
func (s *TokenService) Issue(jti string, r domain.Receipt, now time.Time) (string, error) {
	claims := jwtx.NewReceiptClaims(
		jti, r.ID, r.TxnID, r.MSISDN, r.Amount.String(), r.Currency,
		s.Issuer, s.Audience, s.TTL, now,
	)
	return jwtx.Sign(s.Ring, claims)
}

// Validate checks signature, issuer, audience and lifetime. Every failure
// collapses to ErrInvalidToken so the caller cannot distinguish a forged
// token from an expired one; the concrete reason is logged.
func (s *TokenService) Validate(ctx context.Context, token string) (jwtx.Claims, error) {
	claims, err := jwtx.Verify(s.Ring, token, jwtx.VerifyOptions{
		Issuer:   s.Issuer,
		Audience: s.Audience,
		Leeway:   s.Leeway,
	})
	if err != nil {
		slogx.FromContext(ctx).Info("token validation failed", slog.String("reason", err.Error()))
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Rotate promotes kid to the active signing key.
func (s *TokenService) Rotate(kid string) error {
	return s.Ring.Rotate(kid)
}
