package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

type RedirectHandler struct {
	ShortenerService *service.ShortenerService
}

// ServeHTTP resolves a short code to its target. Failures render a tiny
// inline HTML page instead of redirecting; the link is the whole UI for
// the subscriber, so there is nowhere else to send them.
func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	target, err := h.ShortenerService.Resolve(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownCode):
			httpx.WriteHTML(w, http.StatusOK, errorPage("Invalid link"))
		case errors.Is(err, service.ErrLinkExpired):
			httpx.WriteHTML(w, http.StatusOK, errorPage("Link expired"))
		case errors.Is(err, service.ErrLinkUsageExceeded):
			httpx.WriteHTML(w, http.StatusOK, errorPage("Usage limit exceeded"))
		default:
			slogx.FromContext(ctx).Error("redirect failed", "error", err)
			httpx.WriteHTML(w, http.StatusInternalServerError, errorPage("Unexpected server error"))
		}
		return
	}

	httpx.NoCache(w)
	http.Redirect(w, r, target, http.StatusFound)
}

func errorPage(msg string) string {
	return fmt.Sprintf("<h3>%s</h3>", msg)
}
