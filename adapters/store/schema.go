package store

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/paylinkr/gatekeeper/core"
)

// CreateSchema creates the tables and indexes the bun stores rely on.
// Used by the migrate command and by store tests against sqlite.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*core.Identity)(nil),
		(*core.PayTag)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return storageErr("store.CreateSchema", err)
		}
	}

	if _, err := db.NewCreateIndex().
		Model((*core.PayTag)(nil)).
		Index("pay_tags_creator_idx").
		Column("creator_wallet_address").
		IfNotExists().
		Exec(ctx); err != nil {
		return storageErr("store.CreateSchema", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*core.PayTag)(nil)).
		Index("pay_tags_status_idx").
		Column("status").
		IfNotExists().
		Exec(ctx); err != nil {
		return storageErr("store.CreateSchema", err)
	}
	return nil
}
