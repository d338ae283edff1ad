package ports

import (
	"context"

	"github.com/paylinkr/gatekeeper/core"
)

// IdentityStore is the durable mapping from wallet address to identity.
// Upsert is idempotent per address: concurrent calls for the same
// address converge to a single record, enforced by a uniqueness
// constraint at the storage layer. Persistence failures surface as
// core.KindStorageUnavailable; a missing record as core.KindNotFound.
type IdentityStore interface {
	FindByAddress(ctx context.Context, address string) (*core.Identity, error)

	// Upsert creates the identity on first sight (account class
	// "personal") or rotates the stored public key when a verified
	// signature arrives from a different key, stamping last-login
	// either way.
	Upsert(ctx context.Context, address, publicKey string) (*core.Identity, error)

	TouchLastLogin(ctx context.Context, address string) error

	UpdateProfile(ctx context.Context, address, email string, profile *core.Profile) (*core.Identity, error)

	// SetMerchant attaches or replaces the merchant sub-record and
	// flips the account class to merchant.
	SetMerchant(ctx context.Context, address string, merchant *core.Merchant) (*core.Identity, error)
}
