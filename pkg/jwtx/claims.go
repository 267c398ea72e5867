package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the receipt-token claims. The registered jti carries the
// unique token id the OTP flow keys on; the custom fields bind the token
// to a single issued receipt.
type Claims struct {
	jwt.RegisteredClaims

	// ReceiptID is the receipt the token grants access to.
	ReceiptID string `json:"rid"`

	// TxnID is the originating transaction id.
	TxnID string `json:"txn"`

	// MSISDN is the subscriber number the receipt was issued to.
	MSISDN string `json:"msisdn"`

	// Amount is the receipt total as a fixed-point decimal string ("9.99").
	Amount string `json:"amt"`

	// Currency is the ISO currency code.
	Currency string `json:"cur"`
}

// IssueSkew is subtracted from the not-before claim at issuance to absorb
// clock drift between the issuer and validators.
const IssueSkew = 30 * time.Second

// NewReceiptClaims builds claims for a freshly issued receipt token.
func NewReceiptClaims(
	jti, receiptID, txnID, msisdn, amount, currency string,
	issuer, audience string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-IssueSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
		ReceiptID: receiptID,
		TxnID:     txnID,
		MSISDN:    msisdn,
		Amount:    amount,
		Currency:  currency,
	}
}
