package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/ports"
	"github.com/paylinkr/gatekeeper/service"
)

// PayTagHandlers serves payment-request CRUD and fulfillment.
type PayTagHandlers struct {
	paytags *service.PayTagService
}

func NewPayTagHandlers(paytags *service.PayTagService) *PayTagHandlers {
	return &PayTagHandlers{paytags: paytags}
}

func (h *PayTagHandlers) Create(c *gin.Context) {
	var input service.CreatePayTag
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	tag, err := h.paytags.Create(c.Request.Context(), c.GetString(ctxWalletAddress), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tag)
}

func (h *PayTagHandlers) List(c *gin.Context) {
	filter := ports.PayTagFilter{
		Status: core.PayTagStatus(c.Query("status")),
		Type:   core.PayTagType(c.Query("type")),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))

	tags, total, err := h.paytags.List(c.Request.Context(), c.GetString(ctxWalletAddress), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"tags": tags,
		"pagination": gin.H{
			"total": total,
			"limit": filter.Limit,
			"skip":  filter.Offset,
		},
	})
}

// Get resolves a tag by ID. Public: payment pages resolve tags without
// a session.
func (h *PayTagHandlers) Get(c *gin.Context) {
	tag, err := h.paytags.Get(c.Request.Context(), c.Param("tagId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tag)
}

func (h *PayTagHandlers) Cancel(c *gin.Context) {
	tag, err := h.paytags.Cancel(c.Request.Context(), c.GetString(ctxWalletAddress), c.Param("tagId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tag)
}

// Fulfill marks a tag paid by the authenticated caller.
func (h *PayTagHandlers) Fulfill(c *gin.Context) {
	var req struct {
		PaymentTxID string `json:"txId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, core.E(core.KindInvalidInput, "invalid request body"))
		return
	}

	tag, err := h.paytags.Fulfill(c.Request.Context(), c.GetString(ctxWalletAddress), c.Param("tagId"), req.PaymentTxID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tag)
}
