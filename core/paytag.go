package core

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// PayTagStatus is the closed set of payment-request states.
type PayTagStatus string

const (
	PayTagPending  PayTagStatus = "pending"
	PayTagPaid     PayTagStatus = "paid"
	PayTagExpired  PayTagStatus = "expired"
	PayTagCanceled PayTagStatus = "canceled"
)

// PayTagType distinguishes peer-to-peer requests from merchant invoices.
type PayTagType string

const (
	PayTagP2P        PayTagType = "p2p"
	PayTagMerchantTx PayTagType = "merchant"
)

// PayTag is a payment request. It is a boundary object as far as the
// auth core is concerned: fulfilling one requires a valid session, and
// nothing else about payments leaks into the auth flow.
type PayTag struct {
	bun.BaseModel `bun:"table:pay_tags"`

	TagID                  string          `bun:"tag_id,pk" json:"tagId"`
	StxTxID                string          `bun:"stx_tx_id,nullzero" json:"stxTxId,omitempty"`
	CreatorWalletAddress   string          `bun:"creator_wallet_address,notnull" json:"creatorWalletAddress"`
	RecipientWalletAddress string          `bun:"recipient_wallet_address,nullzero" json:"recipientWalletAddress,omitempty"`
	Amount                 decimal.Decimal `bun:"amount,notnull" json:"amount"`
	Description            string          `bun:"description,nullzero" json:"description,omitempty"`
	OrderReference         string          `bun:"order_reference,nullzero" json:"orderReference,omitempty"`
	CreatedAt              time.Time       `bun:"created_at,notnull" json:"createdAt"`
	ExpiresAt              time.Time       `bun:"expires_at,notnull" json:"expiresAt"`
	Status                 PayTagStatus    `bun:"status,notnull,default:'pending'" json:"status"`
	PaymentTxID            string          `bun:"payment_tx_id,nullzero" json:"paymentTxId,omitempty"`
	PaidAt                 *time.Time      `bun:"paid_at,nullzero" json:"paidAt,omitempty"`
	PaidByWalletAddress    string          `bun:"paid_by_wallet_address,nullzero" json:"paidByWalletAddress,omitempty"`
	CallbackURL            string          `bun:"callback_url,nullzero" json:"callbackUrl,omitempty"`
	Type                   PayTagType      `bun:"type,notnull,default:'p2p'" json:"type"`
}

// Payable reports whether the tag can still be fulfilled at the given
// instant.
func (t *PayTag) Payable(at time.Time) bool {
	return t.Status == PayTagPending && at.Before(t.ExpiresAt)
}
