// Package http wires the gin router, handlers and session middleware.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/service"
)

// RouterConfig carries the transport-level knobs.
type RouterConfig struct {
	CookieSecure bool
	SessionTTL   time.Duration
}

// SetupRouter builds the full route table: the auth lifecycle, the
// protected user/merchant/tag resources and the public tag lookup.
func SetupRouter(
	auth *service.AuthService,
	accounts *service.AccountService,
	paytags *service.PayTagService,
	cfg RouterConfig,
) *gin.Engine {
	router := gin.Default()

	authHandlers := NewAuthHandlers(auth, cfg.CookieSecure, cfg.SessionTTL)
	userHandlers := NewUserHandlers(auth, accounts)
	tagHandlers := NewPayTagHandlers(paytags)

	authGroup := router.Group("/auth")
	{
		authGroup.GET("/challenge", authHandlers.Challenge)
		authGroup.POST("/signin", authHandlers.SignIn)
		authGroup.POST("/signout", authHandlers.SignOut)
		authGroup.POST("/signout/all", authHandlers.SignOutEverywhere)
	}

	// Public tag lookup: payment pages resolve tags pre-auth.
	router.GET("/api/tags/:tagId", tagHandlers.Get)

	api := router.Group("/api")
	api.Use(SessionRequired(auth))
	{
		api.GET("/user", userHandlers.Me)
		api.PUT("/user/profile", userHandlers.UpdateProfile)
		api.GET("/user/merchant", userHandlers.Merchant)
		api.POST("/user/merchant", userHandlers.UpsertMerchant)

		merchant := api.Group("/user/merchant")
		merchant.Use(MerchantRequired(auth))
		{
			merchant.GET("/webhooks", userHandlers.ListWebhooks)
			merchant.POST("/webhooks", userHandlers.CreateWebhook)
			merchant.DELETE("/webhooks/:webhookId", userHandlers.DeleteWebhook)
			merchant.POST("/keys", userHandlers.CreateAPIKey)
		}

		api.GET("/tags", tagHandlers.List)
		api.POST("/tags", tagHandlers.Create)
		api.POST("/tags/:tagId/cancel", tagHandlers.Cancel)
		api.POST("/tags/:tagId/fulfill", tagHandlers.Fulfill)
	}

	return router
}
