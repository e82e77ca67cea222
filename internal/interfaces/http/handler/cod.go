package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/interfaces/http/dto"
)

// CODHandler handles cash-on-delivery API endpoints
type CODHandler struct {
	BaseHandler
	codService *shippingapp.CODService
}

// NewCODHandler creates a new CODHandler
func NewCODHandler(codService *shippingapp.CODService) *CODHandler {
	return &CODHandler{
		codService: codService,
	}
}

// Pending godoc
// @Summary      COD pending summary
// @Description  Lists delivered COD shipments whose cash has not been remitted yet
// @Tags         cod
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Success      200 {object} dto.Response{data=shippingapp.CODPendingResponse}
// @Router       /shipping/cod/pending [get]
func (h *CODHandler) Pending(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	summary, err := h.codService.Pending(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// MarkCollected godoc
// @Summary      Mark COD as collected
// @Description  Records that the carrier remitted the cash for a delivered COD shipment
// @Tags         cod
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/cod/collect [post]
func (h *CODHandler) MarkCollected(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid shipment ID format")
		return
	}

	shipment, err := h.codService.MarkCollected(c.Request.Context(), tenantID, shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// ListRemittances godoc
// @Summary      List COD remittances
// @Description  Paginated remittance history, newest first
// @Tags         cod
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]shippingapp.CODRemittanceResponse}
// @Router       /shipping/cod/remittances [get]
func (h *CODHandler) ListRemittances(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.codService.ListRemittances(c.Request.Context(), tenantID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
