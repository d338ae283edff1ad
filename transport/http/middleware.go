package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/service"
)

// SessionCookieName is the fixed name of the session cookie.
const SessionCookieName = "paylinkr_session"

const (
	ctxSession       = "session"
	ctxWalletAddress = "walletAddress"
	ctxIdentity      = "identity"

	signInPath = "/auth/signin"
)

// tokenFromRequest extracts the credential from the session cookie or,
// for API clients, from a bearer Authorization header.
func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// SessionRequired validates the inbound credential on every protected
// route. Browser navigations are redirected to sign-in with the
// original target preserved; API calls get a 401 JSON body.
func SessionRequired(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		session, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			rejectUnauthenticated(c, err)
			return
		}

		c.Set(ctxSession, session)
		c.Set(ctxWalletAddress, session.WalletAddress)
		c.Next()
	}
}

// MerchantRequired guards merchant-only routes. The account class is
// read from the identity store, not the session, so upgrades and
// suspensions take effect immediately.
func MerchantRequired(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		address := c.GetString(ctxWalletAddress)
		ident, err := auth.RequireMerchant(c.Request.Context(), address)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxIdentity, ident)
		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context, err error) {
	if wantsHTML(c) && c.Request.Method == http.MethodGet {
		target := signInPath + "?callbackUrl=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	// Storage failures keep their 5xx mapping; everything else is 401.
	if !core.IsKind(err, core.KindStorageUnavailable) && core.KindOf(err) != core.KindInvalidCredential {
		err = core.E(core.KindInvalidCredential, core.Message(err))
	}
	respondError(c, err)
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
