package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"time"
)

// Challenge is the one-time string a wallet must sign to prove control
// of an address. It renders to a single human-readable sentence that
// wallets display verbatim, so the format must stay stable.
type Challenge struct {
	Hostname string    `json:"hostname"`
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issuedAt"`
}

var challengePattern = regexp.MustCompile(
	`^Sign this message to authenticate with Paylinkr at (\S+) \((\S+)\) at (\S+)$`)

// NewChallenge creates a challenge with a fresh random nonce.
func NewChallenge(hostname string) (*Challenge, error) {
	nonce, err := generateNonce(16)
	if err != nil {
		return nil, Wrap(KindConfiguration, "failed to generate challenge nonce", err)
	}
	return &Challenge{
		Hostname: hostname,
		Nonce:    nonce,
		IssuedAt: time.Now().UTC(),
	}, nil
}

// Message renders the challenge into the sentence the wallet signs.
func (c *Challenge) Message() string {
	return fmt.Sprintf("Sign this message to authenticate with Paylinkr at %s (%s) at %s",
		c.Hostname, c.Nonce, c.IssuedAt.UTC().Format(time.RFC3339))
}

// ParseChallengeMessage recovers the challenge fields from a signed
// message. Clients may render challenges themselves, so only the shape
// is enforced here; freshness and nonce reuse are checked by the caller.
func ParseChallengeMessage(message string) (*Challenge, error) {
	m := challengePattern.FindStringSubmatch(message)
	if m == nil {
		return nil, E(KindInvalidSignature, "challenge message is malformed")
	}
	issuedAt, err := time.Parse(time.RFC3339, m[3])
	if err != nil {
		return nil, Wrap(KindInvalidSignature, "challenge timestamp is malformed", err)
	}
	return &Challenge{Hostname: m[1], Nonce: m[2], IssuedAt: issuedAt}, nil
}

func generateNonce(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
