// Package service contains the orchestrators tying verifier, stores,
// tokenizer and events together.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/pkg/logger"
	"github.com/paylinkr/gatekeeper/ports"
)

// Credentials is the signed-message proof a client posts to sign in.
// No field is individually validated at bind time: the orchestrator
// rejects incomplete proofs itself so the error kind stays stable.
type Credentials struct {
	WalletAddress string `json:"walletAddress"`
	PublicKey     string `json:"publicKey"`
	SignedMessage string `json:"signedMessage"`
	Message       string `json:"message"`
}

func (c Credentials) complete() bool {
	return c.WalletAddress != "" && c.PublicKey != "" && c.SignedMessage != "" && c.Message != ""
}

// AuthService is the authentication state machine: verify the proof,
// resolve the identity, issue the session.
type AuthService struct {
	verifier   ports.Verifier
	identities ports.IdentityStore
	sessions   ports.SessionStore
	tokenizer  ports.Tokenizer
	replay     ports.ReplayGuard
	events     ports.EventPublisher
	log        *logger.Logger

	sessionTTL            time.Duration
	challengeTTL          time.Duration
	requireFreshChallenge bool
}

// Option tweaks AuthService construction.
type Option func(*AuthService)

// WithSessionTTL overrides the default 30-day session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithFreshChallenge turns on challenge parsing, freshness checking and
// single-use nonce enforcement through the given guard.
func WithFreshChallenge(guard ports.ReplayGuard, challengeTTL time.Duration) Option {
	return func(s *AuthService) {
		s.replay = guard
		s.requireFreshChallenge = true
		if challengeTTL > 0 {
			s.challengeTTL = challengeTTL
		}
	}
}

func NewAuthService(
	verifier ports.Verifier,
	identities ports.IdentityStore,
	sessions ports.SessionStore,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	log *logger.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		verifier:     verifier,
		identities:   identities,
		sessions:     sessions,
		tokenizer:    tokenizer,
		events:       events,
		log:          log,
		sessionTTL:   30 * 24 * time.Hour,
		challengeTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewChallenge renders a fresh challenge for the client to sign.
func (s *AuthService) NewChallenge(hostname string) (*core.Challenge, error) {
	return core.NewChallenge(hostname)
}

// SignIn runs the full flow: missing fields reject before the verifier
// is ever invoked; a bad signature or an address/key mismatch rejects
// without touching storage; then the identity is created or its key
// rotated, and a session is issued. Returns the identity, the session
// record and the signed credential.
func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (*core.Identity, *core.Session, string, error) {
	if !creds.complete() {
		return nil, nil, "", core.E(core.KindMissingCredentials, "missing credentials")
	}

	if !s.verifier.Verify(creds.Message, creds.SignedMessage, creds.PublicKey) {
		return nil, nil, "", core.E(core.KindInvalidSignature,
			"Invalid message signature. The signature verification failed. Please try again.")
	}
	if !s.verifier.AddressMatches(creds.WalletAddress, creds.PublicKey) {
		return nil, nil, "", core.E(core.KindInvalidSignature,
			"public key does not correspond to the wallet address")
	}

	if s.requireFreshChallenge {
		if err := s.checkChallenge(ctx, creds.Message); err != nil {
			return nil, nil, "", err
		}
	}

	ident, err := s.identities.Upsert(ctx, creds.WalletAddress, creds.PublicKey)
	if err != nil {
		return nil, nil, "", err
	}

	now := time.Now().UTC()
	session := &core.Session{
		ID:            uuid.New().String(),
		WalletAddress: ident.WalletAddress,
		PublicKey:     ident.PublicKey,
		AccountType:   ident.AccountType,
		IssuedAt:      now,
		ExpiresAt:     now.Add(s.sessionTTL),
		Valid:         true,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, "", err
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return nil, nil, "", err
	}

	if s.events != nil {
		if err := s.events.PublishSignIn(ctx, ident.WalletAddress, session.ID); err != nil {
			s.log.Warn("failed to publish sign-in event", "err", err)
		}
	}
	return ident, session, token, nil
}

func (s *AuthService) checkChallenge(ctx context.Context, message string) error {
	challenge, err := core.ParseChallengeMessage(message)
	if err != nil {
		return err
	}
	if time.Since(challenge.IssuedAt) > s.challengeTTL {
		return core.E(core.KindInvalidSignature, "challenge has expired")
	}
	if s.replay != nil {
		fresh, err := s.replay.Remember(ctx, challenge.Nonce, s.challengeTTL)
		if err != nil {
			return err
		}
		if !fresh {
			return core.E(core.KindInvalidSignature, "challenge has already been used")
		}
	}
	return nil
}

// Authenticate validates an inbound credential and recovers the session
// record behind it. Absent, revoked, tampered and expired credentials
// all reject with core.KindInvalidCredential; only storage failures
// surface differently.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.E(core.KindInvalidCredential, "authentication required")
	}

	id, _, err := s.tokenizer.TokenToSessionID(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Find(ctx, id)
	if err != nil {
		if core.IsKind(err, core.KindNotFound) {
			return nil, core.E(core.KindInvalidCredential, "session not found")
		}
		return nil, err
	}
	if !session.Valid {
		return nil, core.E(core.KindInvalidCredential, "session has been revoked")
	}
	if session.Expired(time.Now()) {
		return nil, core.E(core.KindInvalidCredential, "session has expired")
	}
	return session, nil
}

// SignOut revokes the session behind the credential. An already-invalid
// credential is treated as signed out.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	id, address, err := s.tokenizer.TokenToSessionID(token)
	if err != nil {
		if core.IsKind(err, core.KindInvalidCredential) {
			return nil
		}
		return err
	}
	if err := s.sessions.Revoke(ctx, id); err != nil {
		return err
	}

	if s.events != nil {
		if err := s.events.PublishSignOut(ctx, address, id); err != nil {
			s.log.Warn("failed to publish sign-out event", "err", err)
		}
	}
	return nil
}

// SignOutEverywhere revokes every live session of the credential's
// address. Requires a currently valid credential.
func (s *AuthService) SignOutEverywhere(ctx context.Context, token string) (int, error) {
	session, err := s.Authenticate(ctx, token)
	if err != nil {
		return 0, err
	}
	revoked, err := s.sessions.RevokeAddress(ctx, session.WalletAddress)
	if err != nil {
		return 0, err
	}

	if s.events != nil {
		if err := s.events.PublishSignOut(ctx, session.WalletAddress, session.ID); err != nil {
			s.log.Warn("failed to publish sign-out event", "err", err)
		}
	}
	return revoked, nil
}

// Identity loads the durable identity behind an address.
func (s *AuthService) Identity(ctx context.Context, address string) (*core.Identity, error) {
	return s.identities.FindByAddress(ctx, address)
}

// RequireMerchant loads the identity and rejects non-merchant accounts.
// The identity store is the authority for the account class, so an
// upgrade or downgrade is effective on the next request, regardless of
// what the session claimed at issue time.
func (s *AuthService) RequireMerchant(ctx context.Context, address string) (*core.Identity, error) {
	ident, err := s.identities.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if !ident.IsMerchant() {
		return nil, core.E(core.KindUnauthorized, "merchant account required")
	}
	return ident, nil
}
