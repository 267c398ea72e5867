package http

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
)

const (
	adminKeyHeader   = "X-Admin-Key"
	adminTakeMax     = 500
	adminTakeDefault = 50
)

// AdminHandler serves the read-only database views behind a shared-key
// header. OTP codes are masked on the way out; the views exist for
// support staff, not for redeeming receipts.
type AdminHandler struct {
	Store    store.Store
	AdminKey string
}

func adminAuthorized(key, got string) bool {
	if key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(got)) == 1
}

func (h *AdminHandler) guard(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !adminAuthorized(h.AdminKey, r.Header.Get(adminKeyHeader)) {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	})
}

func takeParam(r *http.Request) int {
	take := adminTakeDefault
	if raw := r.URL.Query().Get("take"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= adminTakeMax {
			take = n
		}
	}
	return take
}

func (h *AdminHandler) receipts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.Receipts().ListRecent(r.Context(), takeParam(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]receiptResponse, 0, len(rows))
	for _, rec := range rows {
		out = append(out, receiptResponse{
			ReceiptID: rec.ID,
			TxnID:     rec.TxnID,
			MSISDN:    rec.MSISDN,
			Amount:    rec.Amount,
			Currency:  rec.Currency,
			Items:     rec.Items,
			ExpiresAt: rec.ExpiresAt,
			MaxUses:   rec.MaxUses,
			Uses:      rec.Uses,
			CreatedAt: rec.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type adminShortLink struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	Usage     int       `json:"usage"`
	UsageMax  int       `json:"usageMax"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *AdminHandler) shortLinks(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ShortLinks().ListRecent(r.Context(), takeParam(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]adminShortLink, 0, len(rows))
	for _, l := range rows {
		out = append(out, adminShortLink{
			Code:      l.Code,
			LongURL:   l.LongURL,
			Usage:     l.Usage,
			UsageMax:  l.UsageMax,
			ExpiresAt: l.ExpiresAt,
			CreatedAt: l.CreatedAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type adminOTPCode struct {
	Key       string    `json:"key"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// maskCode keeps the last two digits so support can confirm a code with
// the subscriber without being able to redeem it.
func maskCode(code string) string {
	if len(code) <= 2 {
		return strings.Repeat("*", len(code))
	}
	return strings.Repeat("*", len(code)-2) + code[len(code)-2:]
}

func (h *AdminHandler) otpCodes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.OTPCodes().ListRecent(r.Context(), takeParam(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]adminOTPCode, 0, len(rows))
	for _, c := range rows {
		out = append(out, adminOTPCode{
			Key:       c.Key,
			Code:      maskCode(c.Code),
			ExpiresAt: c.ExpiresAt,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type adminRateLimit struct {
	Key       string    `json:"key"`
	WindowEnd time.Time `json:"windowEnd"`
	Count     int       `json:"count"`
}

func (h *AdminHandler) rateLimits(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.RateLimits().ListRecent(r.Context(), takeParam(r))
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]adminRateLimit, 0, len(rows))
	for _, c := range rows {
		out = append(out, adminRateLimit{
			Key:       c.Key,
			WindowEnd: c.WindowEnd,
			Count:     c.Count,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// KeyRotationHandler promotes a registered kid to the active signing key.
type KeyRotationHandler struct {
	TokenService *service.TokenService
	AdminKey     string
}

type rotateRequest struct {
	KID string `json:"kid"`
}

func (h *KeyRotationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !adminAuthorized(h.AdminKey, r.Header.Get(adminKeyHeader)) {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.KID) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	if err := h.TokenService.Rotate(req.KID); err != nil {
		if errors.Is(err, jwtx.ErrUnknownKID) {
			httpx.WriteError(w, http.StatusBadRequest, "Unknown kid")
			return
		}
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"active": req.KID})
}
