package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/pkg/logger"
	"github.com/paylinkr/gatekeeper/ports"
)

const defaultPayTagExpiry = 30 * 24 * time.Hour

// PayTagService is the thin orchestration layer over payment requests.
// It only needs the session layer's guarantee that callers of mutating
// operations were authenticated upstream.
type PayTagService struct {
	tags       ports.PayTagStore
	identities ports.IdentityStore
	events     ports.EventPublisher
	log        *logger.Logger
}

func NewPayTagService(tags ports.PayTagStore, identities ports.IdentityStore, events ports.EventPublisher, log *logger.Logger) *PayTagService {
	return &PayTagService{tags: tags, identities: identities, events: events, log: log}
}

// CreatePayTag is the request body for creating a payment request.
type CreatePayTag struct {
	Amount                 decimal.Decimal `json:"amount"`
	Description            string          `json:"description"`
	RecipientWalletAddress string          `json:"recipientWalletAddress"`
	OrderReference         string          `json:"orderReference"`
	ExpiresInSeconds       int64           `json:"expiresIn"`
	CallbackURL            string          `json:"callbackUrl"`
	Type                   core.PayTagType `json:"type"`
}

func (s *PayTagService) Create(ctx context.Context, creator string, input CreatePayTag) (*core.PayTag, error) {
	if !input.Amount.IsPositive() {
		return nil, core.E(core.KindInvalidInput, "amount must be positive")
	}

	tagType := input.Type
	if tagType == "" {
		tagType = core.PayTagP2P
	}
	if tagType != core.PayTagP2P && tagType != core.PayTagMerchantTx {
		return nil, core.E(core.KindInvalidInput, "unknown pay tag type")
	}
	if tagType == core.PayTagMerchantTx {
		ident, err := s.identities.FindByAddress(ctx, creator)
		if err != nil {
			return nil, err
		}
		if !ident.IsMerchant() {
			return nil, core.E(core.KindUnauthorized, "merchant account required for merchant pay tags")
		}
	}

	expiry := defaultPayTagExpiry
	if input.ExpiresInSeconds > 0 {
		expiry = time.Duration(input.ExpiresInSeconds) * time.Second
	}

	now := time.Now().UTC()
	tag := &core.PayTag{
		TagID:                  uuid.New().String(),
		CreatorWalletAddress:   creator,
		RecipientWalletAddress: input.RecipientWalletAddress,
		Amount:                 input.Amount,
		Description:            input.Description,
		OrderReference:         input.OrderReference,
		CreatedAt:              now,
		ExpiresAt:              now.Add(expiry),
		Status:                 core.PayTagPending,
		CallbackURL:            input.CallbackURL,
		Type:                   tagType,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishPayTagCreated(ctx, tag.TagID, creator); err != nil {
			s.log.Warn("failed to publish pay-tag created event", "err", err)
		}
	}
	return tag, nil
}

func (s *PayTagService) Get(ctx context.Context, tagID string) (*core.PayTag, error) {
	return s.tags.FindByTagID(ctx, tagID)
}

func (s *PayTagService) List(ctx context.Context, creator string, filter ports.PayTagFilter) ([]core.PayTag, int, error) {
	return s.tags.ListByCreator(ctx, creator, filter)
}

// Cancel marks a pending tag canceled. Only the creator may cancel.
func (s *PayTagService) Cancel(ctx context.Context, caller, tagID string) (*core.PayTag, error) {
	tag, err := s.tags.FindByTagID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if tag.CreatorWalletAddress != caller {
		return nil, core.E(core.KindUnauthorized, "only the creator can cancel a pay tag")
	}
	if tag.Status != core.PayTagPending {
		return nil, core.E(core.KindInvalidInput, "only pending pay tags can be canceled")
	}

	tag.Status = core.PayTagCanceled
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Fulfill marks a tag paid by the authenticated payer. An expired tag
// is stamped expired on the way out.
func (s *PayTagService) Fulfill(ctx context.Context, payer, tagID, paymentTxID string) (*core.PayTag, error) {
	tag, err := s.tags.FindByTagID(ctx, tagID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !tag.Payable(now) {
		if tag.Status == core.PayTagPending {
			tag.Status = core.PayTagExpired
			if err := s.tags.Update(ctx, tag); err != nil {
				return nil, err
			}
		}
		return nil, core.E(core.KindInvalidInput, "pay tag can no longer be fulfilled")
	}

	tag.Status = core.PayTagPaid
	tag.PaidAt = &now
	tag.PaidByWalletAddress = payer
	tag.PaymentTxID = paymentTxID
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishPayTagPaid(ctx, tag.TagID, payer); err != nil {
			s.log.Warn("failed to publish pay-tag paid event", "err", err)
		}
	}
	return tag, nil
}
