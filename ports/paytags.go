package ports

import (
	"context"

	"github.com/paylinkr/gatekeeper/core"
)

// PayTagFilter narrows a pay-tag listing.
type PayTagFilter struct {
	Status core.PayTagStatus
	Type   core.PayTagType
	Limit  int
	Offset int
}

// PayTagStore persists payment requests.
type PayTagStore interface {
	Create(ctx context.Context, tag *core.PayTag) error
	FindByTagID(ctx context.Context, tagID string) (*core.PayTag, error)

	// ListByCreator returns a page of the creator's tags, newest
	// first, plus the total count matching the filter.
	ListByCreator(ctx context.Context, address string, filter PayTagFilter) ([]core.PayTag, int, error)

	Update(ctx context.Context, tag *core.PayTag) error
}
