package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a fixed-point monetary value in cents. Receipts carry two
// fractional digits end to end; keeping cents internally avoids the float
// rounding a raw float64 amount would invite.
type Amount int64

var ErrInvalidAmount = errors.New("domain: invalid amount")

// ParseAmount parses a decimal string such as "9.99", "10" or "0.5" into
// cents. More than two fractional digits is an error rather than a silent
// rounding.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	switch len(frac) {
	case 0:
		frac = "00"
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("%w: %q has more than two fractional digits", ErrInvalidAmount, s)
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	total := units*100 + cents
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// Cents returns the raw cent count.
func (a Amount) Cents() int64 { return int64(a) }

// String formats the amount as a two-fractional-digit decimal ("9.99").
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON emits the amount as a bare decimal number, matching the wire
// shape callers send ("amount": 9.99).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and decimal strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
