package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// writeServiceError maps service sentinels to wire statuses and the fixed
// client-facing phrases. Anything unmapped is a masked 500; the real
// error goes to the log only.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrInvalidReceipt):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid receipt")
	case errors.Is(err, service.ErrReceiptExpired):
		httpx.WriteError(w, http.StatusBadRequest, "Receipt expired")
	case errors.Is(err, service.ErrUsageExhausted):
		httpx.WriteError(w, http.StatusBadRequest, "Usage limit exceeded")
	case errors.Is(err, service.ErrOTPMissing):
		httpx.WriteError(w, http.StatusBadRequest, "OTP not issued/expired")
	case errors.Is(err, service.ErrOTPMismatch):
		httpx.WriteError(w, http.StatusBadRequest, "Invalid code")
	case errors.Is(err, service.ErrRateLimited):
		httpx.WriteError(w, http.StatusTooManyRequests, "Too many requests")
	default:
		slogx.FromContext(ctx).Error("request failed", slog.String("error", err.Error()))
		httpx.WriteError(w, http.StatusInternalServerError, "Unexpected server error")
	}
}
