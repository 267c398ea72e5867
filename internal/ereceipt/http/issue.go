package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
)

type IssueHandler struct {
	ReceiptService *service.ReceiptService
}

type issueRequest struct {
	TxnID    string               `json:"txnId"`
	MSISDN   string               `json:"msisdn"`
	Amount   domain.Amount        `json:"amount"`
	Currency string               `json:"currency"`
	Items    []domain.ReceiptItem `json:"items"`
}

type issueResponse struct {
	ReceiptID string    `json:"receiptId"`
	JWT       string    `json:"jwt"`
	LongURL   string    `json:"longUrl"`
	ShortURL  string    `json:"shortUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *IssueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	if strings.TrimSpace(req.TxnID) == "" || strings.TrimSpace(req.MSISDN) == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	res, err := h.ReceiptService.Issue(ctx, service.IssueParams{
		TxnID:    req.TxnID,
		MSISDN:   req.MSISDN,
		Amount:   req.Amount,
		Currency: req.Currency,
		Items:    req.Items,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, issueResponse{
		ReceiptID: res.Receipt.ID,
		JWT:       res.Token,
		LongURL:   res.LongURL,
		ShortURL:  res.ShortURL,
		ExpiresAt: res.Receipt.ExpiresAt,
	})
}
