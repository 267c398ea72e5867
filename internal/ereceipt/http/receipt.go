package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/domain"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
)

type ReceiptGetHandler struct {
	ReceiptService *service.ReceiptService
}

type receiptResponse struct {
	ReceiptID string               `json:"receiptId"`
	TxnID     string               `json:"txnId"`
	MSISDN    string               `json:"msisdn"`
	Amount    domain.Amount        `json:"amount"`
	Currency  string               `json:"currency"`
	Items     []domain.ReceiptItem `json:"items"`
	ExpiresAt time.Time            `json:"expiresAt"`
	MaxUses   int                  `json:"maxUses"`
	Uses      int                  `json:"uses"`
	CreatedAt time.Time            `json:"createdAt"`
}

func (h *ReceiptGetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	rec, err := h.ReceiptService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReceipt) {
			httpx.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		writeServiceError(ctx, w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, receiptResponse{
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
