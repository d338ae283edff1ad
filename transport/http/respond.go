package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/core"
)

// Stable wire codes, keyed by error kind. Clients key UI messages off
// these, so they must not change.
var wireCodes = map[core.Kind]struct {
	status int
	code   string
}{
	core.KindMissingCredentials: {http.StatusUnauthorized, "CredentialsSignin"},
	core.KindInvalidSignature:   {http.StatusUnauthorized, "CredentialsSignin"},
	core.KindInvalidCredential:  {http.StatusUnauthorized, "SessionRequired"},
	core.KindUnauthorized:       {http.StatusForbidden, "AccessDenied"},
	core.KindNotFound:           {http.StatusNotFound, "NotFound"},
	core.KindInvalidInput:       {http.StatusBadRequest, "InvalidInput"},
	core.KindStorageUnavailable: {http.StatusInternalServerError, "StorageUnavailable"},
	core.KindConfiguration:      {http.StatusInternalServerError, "Configuration"},
}

func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "Internal"
	if mapped, ok := wireCodes[core.KindOf(err)]; ok {
		status, code = mapped.status, mapped.code
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": core.Message(err),
		},
	})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
