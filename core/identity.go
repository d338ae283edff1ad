package core

import (
	"time"

	"github.com/uptrace/bun"
)

// AccountType is the closed set of account classes. Merchant-only data
// lives on the Merchant sub-record, which is only ever attached when the
// account type is AccountMerchant.
type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountMerchant AccountType = "merchant"
)

func (t AccountType) Valid() bool {
	return t == AccountPersonal || t == AccountMerchant
}

// MerchantStatus is the review state of a merchant account.
type MerchantStatus string

const (
	MerchantActive    MerchantStatus = "active"
	MerchantPending   MerchantStatus = "pending"
	MerchantInactive  MerchantStatus = "inactive"
	MerchantSuspended MerchantStatus = "suspended"
	MerchantRejected  MerchantStatus = "rejected"
)

// NotificationPreferences controls which events raise user notifications.
type NotificationPreferences struct {
	PaymentReceived    bool `json:"paymentReceived"`
	PaymentExpired     bool `json:"paymentExpired"`
	EmailNotifications bool `json:"emailNotifications"`
}

// Profile is the optional user-editable sub-record of an identity.
type Profile struct {
	Username      string                  `json:"username,omitempty"`
	AvatarURL     string                  `json:"avatarUrl,omitempty"`
	Bio           string                  `json:"bio,omitempty"`
	Notifications NotificationPreferences `json:"notificationPreferences"`
}

// APIKey is a merchant API credential. Only the hash of the secret is
// stored; the plaintext secret is shown once at creation time.
type APIKey struct {
	ID         string     `json:"id"`
	Key        string     `json:"key"`
	SecretHash string     `json:"-"`
	Name       string     `json:"name,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsed   *time.Time `json:"lastUsed,omitempty"`
}

// Webhook is a merchant webhook subscription.
type Webhook struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Events        []string   `json:"events"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastTriggered *time.Time `json:"lastTriggered,omitempty"`
}

// WebhookEvents is the closed set of subscribable webhook event names.
var WebhookEvents = map[string]bool{
	"payment.completed": true,
	"payment.failed":    true,
	"payment.expired":   true,
	"payment.created":   true,
	"paytag.created":    true,
}

// Merchant carries the business metadata of a merchant identity.
type Merchant struct {
	BusinessName  string         `json:"businessName"`
	BusinessEmail string         `json:"businessEmail"`
	Website       string         `json:"website,omitempty"`
	Status        MerchantStatus `json:"status"`
	IsVerified    bool           `json:"isVerified"`
	APIKeys       []APIKey       `json:"apiKeys,omitempty"`
	Webhooks      []Webhook      `json:"webhooks,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Identity is the durable record of a wallet-controlled account. The
// wallet address is the primary key and is immutable; the public key is
// rotated whenever a verified signature arrives from a different key.
type Identity struct {
	bun.BaseModel `bun:"table:identities"`

	WalletAddress string      `bun:"wallet_address,pk" json:"walletAddress"`
	PublicKey     string      `bun:"public_key,notnull" json:"publicKey"`
	Email         string      `bun:"email,nullzero" json:"email,omitempty"`
	AccountType   AccountType `bun:"account_type,notnull,default:'personal'" json:"accountType"`
	CreatedAt     time.Time   `bun:"created_at,notnull" json:"createdAt"`
	LastLogin     time.Time   `bun:"last_login,nullzero" json:"lastLogin,omitempty"`
	Profile       *Profile    `bun:"profile,type:jsonb,nullzero" json:"profile,omitempty"`
	Merchant      *Merchant   `bun:"merchant,type:jsonb,nullzero" json:"merchant,omitempty"`
}

func (i *Identity) IsMerchant() bool {
	return i.AccountType == AccountMerchant && i.Merchant != nil
}
