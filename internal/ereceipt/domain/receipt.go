package domain

import "time"

// ReceiptItem is a single purchased line item.
type ReceiptItem struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Price Amount `json:"price"`
}

// Receipt is an ephemeral, single-transaction receipt record. It is created
// once at issuance, mutated only by the redemption increment, and never
// deleted by the service.
type Receipt struct {
	ID        string
	TxnID     string
	MSISDN    string
	Amount    Amount
	Currency  string
	Items     []ReceiptItem
	ExpiresAt time.Time
	MaxUses   int
	Uses      int
	CreatedAt time.Time
}

// Expired reports whether the receipt's lifetime has passed.
func (r Receipt) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Exhausted reports whether every allowed redemption has been consumed.
// An exhausted receipt is terminally dead regardless of expiry.
func (r Receipt) Exhausted() bool {
	return r.Uses >= r.MaxUses
}
