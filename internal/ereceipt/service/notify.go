package service

import (
	"context"
	"log/slog"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

// Notifier delivers receipt links and one-time codes to subscribers.
// Delivery is best-effort and fire-and-forget; failures never roll back
// the operation that triggered them.
type Notifier interface {
	SendReceiptLink(ctx context.Context, msisdn, shortURL string)
	SendOTP(ctx context.Context, msisdn, code string)
}

// LogNotifier is the demo-mode notifier. It writes what a real SMS
// gateway would send to the structured log instead.
type LogNotifier struct{}

func (LogNotifier) SendReceiptLink(ctx context.Context, msisdn, shortURL string) {
	slogx.FromContext(ctx).Info("[DEMO SMS] receipt link",
		slog.String("to", msisdn),
		slog.String("url", shortURL),
	)
}

func (LogNotifier) SendOTP(ctx context.Context, msisdn, code string) {
	slogx.FromContext(ctx).Info("[DEMO SMS] otp code",
		slog.String("to", msisdn),
		slog.String("code", code),
	)
}
