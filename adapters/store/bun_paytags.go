package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/ports"
)

const defaultPayTagPageSize = 50

// BunPayTagStore persists payment requests through the bun ORM.
type BunPayTagStore struct {
	db *bun.DB
}

func NewBunPayTagStore(db *bun.DB) *BunPayTagStore {
	return &BunPayTagStore{db: db}
}

func (s *BunPayTagStore) Create(ctx context.Context, tag *core.PayTag) error {
	_, err := s.db.NewInsert().Model(tag).Exec(ctx)
	if err != nil {
		return storageErr("payTagStore.Create", err)
	}
	return nil
}

func (s *BunPayTagStore) FindByTagID(ctx context.Context, tagID string) (*core.PayTag, error) {
	tag := new(core.PayTag)
	err := s.db.NewSelect().Model(tag).Where("tag_id = ?", tagID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.E(core.KindNotFound, "pay tag not found")
	}
	if err != nil {
		return nil, storageErr("payTagStore.FindByTagID", err)
	}
	return tag, nil
}

func (s *BunPayTagStore) ListByCreator(ctx context.Context, address string, filter ports.PayTagFilter) ([]core.PayTag, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPayTagPageSize
	}

	var tags []core.PayTag
	q := s.db.NewSelect().
		Model(&tags).
		Where("creator_wallet_address = ?", address)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	total, err := q.Order("created_at DESC").Limit(limit).Offset(filter.Offset).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, storageErr("payTagStore.ListByCreator", err)
	}
	return tags, total, nil
}

func (s *BunPayTagStore) Update(ctx context.Context, tag *core.PayTag) error {
	res, err := s.db.NewUpdate().Model(tag).WherePK().Exec(ctx)
	if err != nil {
		return storageErr("payTagStore.Update", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return core.E(core.KindNotFound, "pay tag not found")
	}
	return nil
}
