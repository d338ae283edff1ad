package core

import "time"

// Session is the server-side record of an authenticated sign-in. The
// client holds only a signed token referencing the session ID; every
// claim in here is read from the store, never from the token.
type Session struct {
	ID            string      `json:"id"`
	WalletAddress string      `json:"walletAddress"`
	PublicKey     string      `json:"publicKey"`
	AccountType   AccountType `json:"accountType"`
	IssuedAt      time.Time   `json:"issuedAt"`
	ExpiresAt     time.Time   `json:"expiresAt"`
	Valid         bool        `json:"isValid"`
}

// Expired reports whether the session's lifetime has passed at the
// given instant.
func (s *Session) Expired(at time.Time) bool {
	return at.After(s.ExpiresAt)
}
