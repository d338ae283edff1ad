package ports

import "context"

// EventPublisher notifies other components about auth and payment
// lifecycle events. Publishing failures are logged, never propagated to
// the client: the store write is the critical part.
type EventPublisher interface {
	PublishSignIn(ctx context.Context, address, sessionID string) error
	PublishSignOut(ctx context.Context, address, sessionID string) error
	PublishPayTagCreated(ctx context.Context, tagID, address string) error
	PublishPayTagPaid(ctx context.Context, tagID, address string) error
}
