package domain

import "time"

// OTPCode is the single outstanding one-time code for a token id. A new
// Set for the same key replaces the code and resets the expiry.
type OTPCode struct {
	Key       string
	Code      string
	ExpiresAt time.Time
}

// Expired reports whether the code's lifetime has passed.
func (o OTPCode) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}
