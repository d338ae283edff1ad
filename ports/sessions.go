package ports

import (
	"context"
	"time"

	"github.com/paylinkr/gatekeeper/core"
)

// SessionStore holds server-side session records, looked up by the
// opaque session ID carried inside the client token. Revocation flips
// the record invalid while keeping it until natural expiry.
type SessionStore interface {
	Create(ctx context.Context, session *core.Session) error
	Find(ctx context.Context, id string) (*core.Session, error)
	Revoke(ctx context.Context, id string) error

	// RevokeAddress invalidates every live session of an address and
	// returns how many were revoked (logout-everywhere).
	RevokeAddress(ctx context.Context, address string) (int, error)
}

// ReplayGuard remembers challenge nonces for single-use enforcement.
// Remember returns false when the nonce was already seen within ttl.
type ReplayGuard interface {
	Remember(ctx context.Context, nonce string, ttl time.Duration) (bool, error)
}
