package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
)

type OTPSendHandler struct {
	OTPService *service.OTPService
}

type otpSendRequest struct {
	Token string `json:"token"`
}

func (h *OTPSendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req otpSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	code, err := h.OTPService.Request(ctx, req.Token)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	// Demo mode echoes the code so the flow is testable without a
	// carrier; production callers just get the dispatch confirmation.
	if code != "" {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"otpDemo": code})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "SENT"})
}

type OTPVerifyHandler struct {
	OTPService *service.OTPService
}

type otpVerifyRequest struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

func (h *OTPVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req otpVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Token) == "" || strings.TrimSpace(req.Code) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	receiptID, err := h.OTPService.Verify(ctx, req.Token, req.Code)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"receiptId": receiptID})
}
