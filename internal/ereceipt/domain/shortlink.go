package domain

import "time"

// ShortLink maps a short random code to a target URL with a usage ceiling
// and an expiry. The row outlives both limits; dereferencing just starts
// failing.
type ShortLink struct {
	Code      string
	LongURL   string
	Usage     int
	UsageMax  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the link's lifetime has passed.
func (l ShortLink) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// Exhausted reports whether the usage ceiling has been reached.
func (l ShortLink) Exhausted() bool {
	return l.Usage >= l.UsageMax
}
