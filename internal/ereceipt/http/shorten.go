package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
)

type ShortenHandler struct {
	ShortenerService *service.ShortenerService

	// DefaultTTL and DefaultMaxUses apply when the caller omits them.
	DefaultTTL     time.Duration
	DefaultMaxUses int
}

type shortenRequest struct {
	LongURL  string `json:"longUrl"`
	TTLHours int    `json:"ttlHours"`
	MaxUses  int    `json:"maxUses"`
}

type shortenResponse struct {
	ShortURL  string    `json:"shortUrl"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *ShortenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.LongURL) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	ttl := h.DefaultTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	maxUses := h.DefaultMaxUses
	if maxUses <= 0 {
		maxUses = 100
	}
	if req.MaxUses > 0 {
		maxUses = req.MaxUses
	}

	link, err := h.ShortenerService.Shorten(ctx, req.LongURL, maxUses, time.Now().Add(ttl))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, shortenResponse{
		ShortURL:  h.ShortenerService.ShortURL(link.Code),
		Code:      link.Code,
		ExpiresAt: link.ExpiresAt,
	})
}
