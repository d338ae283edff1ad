// Package events publishes auth and payment lifecycle events through
// watermill so other service instances can react to them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	SignInTopic        = "paylinkr.auth.signin"
	SignOutTopic       = "paylinkr.auth.signout"
	PayTagCreatedTopic = "paylinkr.paytag.created"
	PayTagPaidTopic    = "paylinkr.paytag.paid"
)

// AuthEvent is the payload of sign-in and sign-out events.
type AuthEvent struct {
	WalletAddress string    `json:"wallet_address"`
	SessionID     string    `json:"session_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PayTagEvent is the payload of pay-tag lifecycle events.
type PayTagEvent struct {
	TagID         string    `json:"tag_id"`
	WalletAddress string    `json:"wallet_address"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the event publisher port on top of any
// watermill message.Publisher.
type WatermillPublisher struct {
	publisher message.Publisher
}

func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

func (p *WatermillPublisher) PublishSignIn(ctx context.Context, address, sessionID string) error {
	return p.publish(SignInTopic, AuthEvent{
		WalletAddress: address,
		SessionID:     sessionID,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishSignOut(ctx context.Context, address, sessionID string) error {
	return p.publish(SignOutTopic, AuthEvent{
		WalletAddress: address,
		SessionID:     sessionID,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishPayTagCreated(ctx context.Context, tagID, address string) error {
	return p.publish(PayTagCreatedTopic, PayTagEvent{
		TagID:         tagID,
		WalletAddress: address,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) PublishPayTagPaid(ctx context.Context, tagID, address string) error {
	return p.publish(PayTagPaidTopic, PayTagEvent{
		TagID:         tagID,
		WalletAddress: address,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
