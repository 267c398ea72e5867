package domain

import "time"

// RateLimitCounter is one fixed-window counter row. The (Key, WindowEnd)
// pair is unique; a counter whose window has passed is logically dead and
// never read again.
type RateLimitCounter struct {
	Key       string
	WindowEnd time.Time
	Count     int
}
