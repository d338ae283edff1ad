package http

import (
	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/service"
)

// UserHandlers serves the identity's own profile and merchant records.
type UserHandlers struct {
	auth     *service.AuthService
	accounts *service.AccountService
}

func NewUserHandlers(auth *service.AuthService, accounts *service.AccountService) *UserHandlers {
	return &UserHandlers{auth: auth, accounts: accounts}
}

// Me returns the authenticated identity.
func (h *UserHandlers) Me(c *gin.Context) {
	address := c.GetString(ctxWalletAddress)
	ident, err := h.auth.Identity(c.Request.Context(), address)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ident)
}

func (h *UserHandlers) UpdateProfile(c *gin.Context) {
	var update service.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	ident, err := h.accounts.UpdateProfile(c.Request.Context(), c.GetString(ctxWalletAddress), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ident)
}

// Merchant returns the merchant sub-record, or null for personal
// accounts (not an error: the dashboard probes this).
func (h *UserHandlers) Merchant(c *gin.Context) {
	ident, err := h.auth.Identity(c.Request.Context(), c.GetString(ctxWalletAddress))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ident.Merchant)
}

// UpsertMerchant upgrades the account to merchant or updates business
// metadata. Deliberately not behind the merchant guard.
func (h *UserHandlers) UpsertMerchant(c *gin.Context) {
	var update service.MerchantUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	ident, err := h.accounts.UpsertMerchant(c.Request.Context(), c.GetString(ctxWalletAddress), update)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, ident)
}

func (h *UserHandlers) ListWebhooks(c *gin.Context) {
	ident := c.MustGet(ctxIdentity).(*core.Identity)
	respondOK(c, ident.Merchant.Webhooks)
}

func (h *UserHandlers) CreateWebhook(c *gin.Context) {
	var req struct {
		URL    string   `json:"url"`
		Events []string `json:"events"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	hook, err := h.accounts.AddWebhook(c.Request.Context(), c.GetString(ctxWalletAddress), req.URL, req.Events)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, hook)
}

func (h *UserHandlers) DeleteWebhook(c *gin.Context) {
	err := h.accounts.RemoveWebhook(c.Request.Context(), c.GetString(ctxWalletAddress), c.Param("webhookId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

func (h *UserHandlers) CreateAPIKey(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	key, err := h.accounts.CreateAPIKey(c.Request.Context(), c.GetString(ctxWalletAddress), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, key)
}
