package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// codeAlphabet is the character set used for short-link codes. It is
// case-sensitive alphanumeric, which keeps codes short while staying safe
// in URLs without escaping.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultCodeLength is the short-link code length used when a caller does
// not configure one. 62^7 is roughly 3.5 trillion combinations.
const DefaultCodeLength = 7

// GenerateCode creates a cryptographically random short-link code of the
// given length from the URL-safe alphanumeric alphabet.
// Returns an error if the random number generator fails.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate code: %w", err)
	}

	var sb strings.Builder
	sb.Grow(length)
	for _, b := range buf {
		sb.WriteByte(codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return sb.String(), nil
}

// MustGenerateCode is like GenerateCode but panics on error.
// Use this only in contexts where failure is unrecoverable.
func MustGenerateCode(length int) string {
	code, err := GenerateCode(length)
	if err != nil {
		panic(err)
	}
	return code
}

// GenerateNumericCode creates a uniformly random numeric one-time code of
// the given digit count, zero-padded (e.g. "004913" for 6 digits). Uniform
// selection over the full range avoids the modulo bias a naive byte-mod
// approach would introduce.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 || digits > 18 {
		return "", fmt.Errorf("cryptox: digit count must be in 1..18, got %d", digits)
	}

	limit := big.NewInt(1)
	for i := 0; i < digits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to generate numeric code: %w", err)
	}

	return fmt.Sprintf("%0*d", digits, n), nil
}
