package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/service"
)

// AuthHandlers exposes the sign-in lifecycle over HTTP.
type AuthHandlers struct {
	auth         *service.AuthService
	cookieSecure bool
	sessionTTL   time.Duration
}

func NewAuthHandlers(auth *service.AuthService, cookieSecure bool, sessionTTL time.Duration) *AuthHandlers {
	return &AuthHandlers{auth: auth, cookieSecure: cookieSecure, sessionTTL: sessionTTL}
}

// Challenge returns a freshly rendered challenge message for the
// client's wallet to sign.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	hostname := c.Query("hostname")
	if hostname == "" {
		hostname = c.Request.Host
	}

	challenge, err := h.auth.NewChallenge(hostname)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"message":  challenge.Message(),
		"nonce":    challenge.Nonce,
		"issuedAt": challenge.IssuedAt,
	})
}

// SignIn accepts the signed-message proof and, on success, sets the
// session cookie and returns the credential. Fields are deliberately
// not bind-validated: incomplete proofs must reach the orchestrator so
// the MissingCredentials rejection stays uniform.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var creds service.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	ident, session, token, err := h.auth.SignIn(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token, int(h.sessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"data": gin.H{
			"walletAddress": ident.WalletAddress,
			"accountType":   ident.AccountType,
			"publicKey":     ident.PublicKey,
			"expiresAt":     session.ExpiresAt,
		},
	})
}

// SignOut revokes the session record and instructs the client to drop
// the cookie. Signing out with an already-dead credential succeeds.
func (h *AuthHandlers) SignOut(c *gin.Context) {
	token := tokenFromRequest(c)
	if token != "" {
		if err := h.auth.SignOut(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	respondOK(c, gin.H{"message": "signed out"})
}

// SignOutEverywhere revokes all sessions of the caller's address.
func (h *AuthHandlers) SignOutEverywhere(c *gin.Context) {
	token := tokenFromRequest(c)
	revoked, err := h.auth.SignOutEverywhere(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, "", -1)
	respondOK(c, gin.H{"revoked": revoked})
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", "", h.cookieSecure, true)
}
