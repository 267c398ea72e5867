package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	httpapi "github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/http"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store/drivers/sqlite"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "test-admin-key"

func newTestRouter(t *testing.T) *httpapi.Router {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		filepath.Join(t.TempDir(), "test.db"),
	)
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	ring, err := jwtx.NewKeyRing([]jwtx.KeyConfig{
		{KID: "k1", Secret: strings.Repeat("a", 32)},
	}, "", "")
	require.NoError(t, err)

	tokens := &service.TokenService{
		Ring:     ring,
		Issuer:   "ereceipt",
		Audience: "receipt-viewer",
		TTL:      48 * time.Hour,
		Leeway:   30 * time.Second,
	}
	limiter := &service.RateLimitService{Store: st.RateLimits()}
	shortener := &service.ShortenerService{
		Store:   st.ShortLinks(),
		Limiter: limiter,
		BaseURL: "http://localhost:8080/s",
		CodeLen: 7,
		AnonMax: 120,
	}

	router := httpapi.NewRouter(st, slogx.New(slogx.Config{Service: "test", Format: "text"}))
	router.TokenService = tokens
	router.ShortenerService = shortener
	router.ReceiptService = &service.ReceiptService{
		Store:       st.Receipts(),
		Tokens:      tokens,
		Shortener:   shortener,
		Notifier:    service.LogNotifier{},
		ViewBaseURL: "http://localhost:8080/view.html",
		TTL:         48 * time.Hour,
		MaxUses:     3,
	}
	router.OTPService = &service.OTPService{
		Receipts: st.Receipts(),
		Codes:    st.OTPCodes(),
		Tokens:   tokens,
		Limiter:  limiter,
		Notifier: service.LogNotifier{},
		DemoMode: true,
	}
	router.AdminKey = testAdminKey
	router.ApplyRoutes()

	return router
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func issueReceipt(t *testing.T, router *httpapi.Router) map[string]any {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/tcrm/issue", map[string]any{
		"txnId":    "T1001",
		"msisdn":   "+15551234567",
		"amount":   12.50,
		"currency": "USD",
		"items": []map[string]any{
			{"sku": "S1", "name": "Coffee", "qty": 2, "price": 6.25},
		},
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody(t, rec)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestIssueEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	t.Run("issues a receipt with token and links", func(t *testing.T) {
		body := issueReceipt(t, router)
		require.NotEmpty(t, body["receiptId"])
		require.NotEmpty(t, body["jwt"])
		require.Contains(t, body["longUrl"], "token=")
		require.Contains(t, body["shortUrl"], "/s/")
	})

	t.Run("blank txnId is missing fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/tcrm/issue", map[string]any{
			"txnId":  "  ",
			"msisdn": "+15551234567",
		}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Missing fields", decodeBody(t, rec)["error"])
	})

	t.Run("malformed body is missing fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/tcrm/issue", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestOTPEndpoints(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	t.Run("send then verify round trip", func(t *testing.T) {
		issued := issueReceipt(t, router)
		token := issued["jwt"].(string)

		sendRec := doJSON(t, router, http.MethodPost, "/api/otp/send", map[string]string{"token": token}, nil)
		require.Equal(t, http.StatusOK, sendRec.Code)
		code := decodeBody(t, sendRec)["otpDemo"].(string)
		require.Len(t, code, service.OTPDigits)

		verifyRec := doJSON(t, router, http.MethodPost, "/api/otp/verify",
			map[string]string{"token": token, "code": code}, nil)
		require.Equal(t, http.StatusOK, verifyRec.Code)
		require.Equal(t, issued["receiptId"], decodeBody(t, verifyRec)["receiptId"])
	})

	t.Run("garbage token is an invalid receipt", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/otp/send", map[string]string{"token": "bogus"}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid receipt", decodeBody(t, rec)["error"])
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		issued := issueReceipt(t, router)
		token := issued["jwt"].(string)

		sendRec := doJSON(t, router, http.MethodPost, "/api/otp/send", map[string]string{"token": token}, nil)
		require.Equal(t, http.StatusOK, sendRec.Code)
		code := decodeBody(t, sendRec)["otpDemo"].(string)

		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		rec := doJSON(t, router, http.MethodPost, "/api/otp/verify",
			map[string]string{"token": token, "code": wrong}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid code", decodeBody(t, rec)["error"])
	})

	t.Run("verify without a send is not issued", func(t *testing.T) {
		issued := issueReceipt(t, router)
		token := issued["jwt"].(string)

		rec := doJSON(t, router, http.MethodPost, "/api/otp/verify",
			map[string]string{"token": token, "code": "123456"}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "OTP not issued/expired", decodeBody(t, rec)["error"])
	})

	t.Run("missing body fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/otp/verify", map[string]string{"token": ""}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Missing fields", decodeBody(t, rec)["error"])
	})
}

func TestReceiptEndpoint(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	issued := issueReceipt(t, router)
	id := issued["receiptId"].(string)

	t.Run("returns the decoded receipt", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/receipt/"+id, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		require.Equal(t, id, body["receiptId"])
		require.Equal(t, "T1001", body["txnId"])
		require.InDelta(t, 12.50, body["amount"], 0.001)
		require.Len(t, body["items"], 1)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/api/receipt/unknown", nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "Not found", decodeBody(t, rec)["error"])
	})
}

func TestShortenAndRedirect(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	t.Run("shorten then follow", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/shorten", map[string]any{
			"longUrl": "http://example.com/page",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		code := decodeBody(t, rec)["code"].(string)

		follow := doJSON(t, router, http.MethodGet, "/s/"+code, nil, nil)
		require.Equal(t, http.StatusFound, follow.Code)
		require.Equal(t, "http://example.com/page", follow.Header().Get("Location"))
	})

	t.Run("missing longUrl", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/shorten", map[string]any{}, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Missing fields", decodeBody(t, rec)["error"])
	})

	t.Run("unknown code renders an error page", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/s/zzzzzzz", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("Location"))

		page, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		require.Contains(t, string(page), "Invalid link")
	})

	t.Run("exhausted link renders an error page", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/shorten", map[string]any{
			"longUrl": "http://example.com/x",
			"maxUses": 1,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		code := decodeBody(t, rec)["code"].(string)

		first := doJSON(t, router, http.MethodGet, "/s/"+code, nil, nil)
		require.Equal(t, http.StatusFound, first.Code)

		second := doJSON(t, router, http.MethodGet, "/s/"+code, nil, nil)
		require.Equal(t, http.StatusOK, second.Code)
		require.Contains(t, second.Body.String(), "Usage limit exceeded")
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	issued := issueReceipt(t, router)
	token := issued["jwt"].(string)

	sendRec := doJSON(t, router, http.MethodPost, "/api/otp/send", map[string]string{"token": token}, nil)
	require.Equal(t, http.StatusOK, sendRec.Code)

	auth := map[string]string{"X-Admin-Key": testAdminKey}

	t.Run("rejects a missing or wrong key", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/admin/db/receipts", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/admin/db/receipts", nil,
			map[string]string{"X-Admin-Key": "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("lists receipts", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/admin/db/receipts", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
		require.NotEmpty(t, rows)
	})

	t.Run("masks otp codes", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/admin/db/otpcodes", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)

		var rows []map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
		require.NotEmpty(t, rows)
		code := rows[0]["code"].(string)
		require.Contains(t, code, "****")
		require.Len(t, code, service.OTPDigits)
	})

	t.Run("caps the take parameter", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/admin/db/ratelimits?take=9999", nil, auth)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rotates the active kid", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/admin/keys/rotate",
			map[string]string{"kid": "k1"}, auth)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "k1", decodeBody(t, rec)["active"])

		rec = doJSON(t, router, http.MethodPost, "/admin/keys/rotate",
			map[string]string{"kid": "missing"}, auth)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Unknown kid", decodeBody(t, rec)["error"])
	})
}
