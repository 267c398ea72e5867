package service

import "errors"

var (
	// ErrInvalidToken covers every token-validation failure. Callers get
	// one opaque error; the concrete reason is only logged server-side.
	ErrInvalidToken = errors.New("invalid_token")

	// ErrInvalidReceipt is returned when a validated token points at a
	// receipt that does not exist.
	ErrInvalidReceipt = errors.New("invalid_receipt")

	ErrReceiptExpired = errors.New("receipt_expired")
	ErrUsageExhausted = errors.New("usage_exhausted")

	ErrRateLimited = errors.New("rate_limited")

	// ErrOTPMissing covers both "never issued" and "already expired";
	// the two are indistinguishable to the caller.
	ErrOTPMissing  = errors.New("otp_missing")
	ErrOTPMismatch = errors.New("otp_mismatch")

	ErrUnknownCode       = errors.New("unknown_code")
	ErrLinkExpired       = errors.New("link_expired")
	ErrLinkUsageExceeded = errors.New("link_usage_exceeded")
)
