package ports

import "github.com/paylinkr/gatekeeper/core"

// Tokenizer converts between session records and the signed credential
// the client holds. The credential is a signed opaque identifier: it
// resists guessing and tampering but is never the authority for claims,
// which are read back from the session store.
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)

	// TokenToSessionID verifies the token's signature and expiry and
	// returns the embedded session ID and subject address. Invalid or
	// expired tokens yield core.KindInvalidCredential.
	TokenToSessionID(token string) (sessionID, address string, err error)
}

// Verifier checks wallet-signature proofs. Verify is pure and never
// panics; malformed inputs are simply false.
type Verifier interface {
	Verify(message, signature, publicKey string) bool
	AddressMatches(address, publicKey string) bool
}
