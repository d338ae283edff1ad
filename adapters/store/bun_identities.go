// Package store contains the bun-backed durable stores and the
// redis/in-memory session and replay-guard stores.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/paylinkr/gatekeeper/core"
)

// BunIdentityStore persists identities through the bun ORM. The wallet
// address primary key gives the uniqueness guarantee the upsert path
// relies on.
type BunIdentityStore struct {
	db *bun.DB
}

func NewBunIdentityStore(db *bun.DB) *BunIdentityStore {
	return &BunIdentityStore{db: db}
}

func (s *BunIdentityStore) FindByAddress(ctx context.Context, address string) (*core.Identity, error) {
	ident := new(core.Identity)
	err := s.db.NewSelect().Model(ident).Where("wallet_address = ?", address).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.E(core.KindNotFound, "identity not found")
	}
	if err != nil {
		return nil, storageErr("identityStore.FindByAddress", err)
	}
	return ident, nil
}

// Upsert inserts the identity or, when the address already exists,
// rotates the stored public key and stamps last-login. The conflict
// clause resolves concurrent first sign-ins for the same address in a
// single round trip; no duplicate rows, no client-visible race.
func (s *BunIdentityStore) Upsert(ctx context.Context, address, publicKey string) (*core.Identity, error) {
	now := time.Now().UTC()
	ident := &core.Identity{
		WalletAddress: address,
		PublicKey:     publicKey,
		AccountType:   core.AccountPersonal,
		CreatedAt:     now,
		LastLogin:     now,
	}

	_, err := s.db.NewInsert().
		Model(ident).
		On("CONFLICT (wallet_address) DO UPDATE").
		Set("public_key = EXCLUDED.public_key").
		Set("last_login = EXCLUDED.last_login").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, storageErr("identityStore.Upsert", err)
	}
	return ident, nil
}

func (s *BunIdentityStore) TouchLastLogin(ctx context.Context, address string) error {
	_, err := s.db.NewUpdate().
		Model((*core.Identity)(nil)).
		Set("last_login = ?", time.Now().UTC()).
		Where("wallet_address = ?", address).
		Exec(ctx)
	if err != nil {
		return storageErr("identityStore.TouchLastLogin", err)
	}
	return nil
}

func (s *BunIdentityStore) UpdateProfile(ctx context.Context, address, email string, profile *core.Profile) (*core.Identity, error) {
	ident, err := s.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	ident.Email = email
	ident.Profile = profile

	_, err = s.db.NewUpdate().
		Model(ident).
		Column("email", "profile").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, storageErr("identityStore.UpdateProfile", err)
	}
	return ident, nil
}

func (s *BunIdentityStore) SetMerchant(ctx context.Context, address string, merchant *core.Merchant) (*core.Identity, error) {
	ident, err := s.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	ident.Merchant = merchant
	ident.AccountType = core.AccountMerchant

	_, err = s.db.NewUpdate().
		Model(ident).
		Column("merchant", "account_type").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, storageErr("identityStore.SetMerchant", err)
	}
	return ident, nil
}

func storageErr(op string, err error) error {
	return core.Wrap(core.KindStorageUnavailable, op+": storage unavailable", err)
}
