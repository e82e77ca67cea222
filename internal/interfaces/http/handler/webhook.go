package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
)

// WebhookHandler receives carrier status pushes
type WebhookHandler struct {
	BaseHandler
	trackingService *shippingapp.TrackingService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(trackingService *shippingapp.TrackingService) *WebhookHandler {
	return &WebhookHandler{
		trackingService: trackingService,
	}
}

// Receive godoc
// @Summary      Receive a carrier status webhook
// @Description  Processes a tracking push from the carrier. Always acknowledges
// @Description  with 200 OK; carriers retry on any other status, and unroutable
// @Description  payloads go to the dead-letter store instead
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /shipping/webhooks/carrier [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		// Acknowledge anyway; there is nothing to retry
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	// ProcessWebhook never returns an error for payload problems, only for
	// unexpected internal failures. Those still get a 200 so the carrier
	// does not hammer us with retries we cannot use.
	_ = h.trackingService.ProcessWebhook(c.Request.Context(), raw)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeadLetters godoc
// @Summary      List dead-lettered webhooks
// @Description  Returns recently dead-lettered webhook payloads for inspection and replay
// @Tags         webhooks
// @Produce      json
// @Param        limit query int false "Maximum entries to return (default 50)"
// @Success      200 {object} dto.Response
// @Router       /shipping/webhooks/dead-letters [get]
func (h *WebhookHandler) DeadLetters(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	letters, err := h.trackingService.DeadLetters(c.Request.Context(), limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, letters)
}
