package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrInvalid     = errors.New("jwtx: invalid token")
)

// VerifyOptions captures the expectations enforced during verification.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Audience the token must contain (claims.aud). Empty means "don't care".
	Audience string

	// Leeway allows small clock skew when validating exp/nbf.
	// Because time sync is never perfect.
	Leeway time.Duration
}

// Sign produces an HS256-signed compact token using the ring's active key.
// The active kid is embedded in the token header so validators can select
// the correct verification key directly.
func Sign(ring *KeyRing, claims Claims) (string, error) {
	kid, secret := ring.SigningKey()
	if len(secret) == 0 {
		return "", ErrNoKeys
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = kid

	signed, err := tok.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, nil
}

// Verify parses and validates an HS256 token against the ring.
//
// Key resolution is kid-directed: when the header names a kid registered in
// the ring, only that key is tried. When the kid is missing or unrecognised
// the token is checked against every registered key, which keeps tokens
// minted before a rotation verifiable even when their kid metadata is stale.
func Verify(ring *KeyRing, token string, opts VerifyOptions) (Claims, error) {
	parser := newParser(opts)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, ErrUnknownKID
		}
		secret, ok := ring.Lookup(kid)
		if !ok {
			return nil, ErrUnknownKID
		}
		return secret, nil
	})
	if err == nil {
		return *claims, nil
	}
	if !errors.Is(err, ErrUnknownKID) {
		return Claims{}, mapJWTError(err)
	}

	// Fallback: no usable kid. Attempt every configured key.
	lastErr := error(ErrInvalidSig)
	for _, secret := range ring.AllSecrets() {
		claims = &Claims{}
		_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			return secret, nil
		})
		if err == nil {
			return *claims, nil
		}
		// A signature mismatch just means this was the wrong key; any
		// other failure came from the right key and is worth reporting.
		if mapped := mapJWTError(err); !errors.Is(mapped, ErrInvalidSig) {
			lastErr = mapped
		}
	}
	return Claims{}, lastErr
}

func newParser(opts VerifyOptions) *jwt.Parser {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(opts.Leeway),
		jwt.WithExpirationRequired(),
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	return jwt.NewParser(parserOpts...)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudience
	case errors.Is(err, ErrUnknownKID):
		return ErrUnknownKID
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
