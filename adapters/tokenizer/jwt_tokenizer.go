// Package tokenizer mints and verifies the signed session credential.
package tokenizer

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/paylinkr/gatekeeper/core"
)

// AudienceSession marks tokens issued for the session cookie.
const AudienceSession = "paylinkr:session"

// JWTTokenizer signs session references with HS256. The token carries
// only the session ID, subject address and expiry; authorization claims
// live in the session store.
type JWTTokenizer struct {
	secret []byte
}

// NewJWTTokenizer refuses an empty secret: a missing signing secret is
// a fatal configuration error, never a silent default.
func NewJWTTokenizer(secret string) (*JWTTokenizer, error) {
	if secret == "" {
		return nil, core.E(core.KindConfiguration, "session signing secret is not configured")
	}
	return &JWTTokenizer{secret: []byte(secret)}, nil
}

func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   session.WalletAddress,
		ID:        session.ID,
		Audience:  jwt.ClaimStrings{AudienceSession},
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", core.Wrap(core.KindConfiguration, "failed to sign session token", err)
	}
	return signed, nil
}

func (j *JWTTokenizer) TokenToSessionID(tokenStr string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceSession))
	if err != nil {
		return "", "", core.Wrap(core.KindInvalidCredential, "invalid or expired session token", err)
	}
	if !token.Valid {
		return "", "", core.E(core.KindInvalidCredential, "invalid or expired session token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.ID == "" {
		return "", "", core.E(core.KindInvalidCredential, "session token carries no session id")
	}
	return claims.ID, claims.Subject, nil
}
