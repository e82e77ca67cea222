package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
)

// ShipmentHandler handles shipment lifecycle API endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shippingapp.ShipmentService
	trackingService *shippingapp.TrackingService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shippingapp.ShipmentService, trackingService *shippingapp.TrackingService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService: shipmentService,
		trackingService: trackingService,
	}
}

// Create godoc
// @Summary      Create a shipment for a confirmed order
// @Description  Registers the order with the configured carrier and creates the shipment record
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body shippingapp.CreateShipmentRequest true "Shipment creation request"
// @Success      201 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments [post]
func (h *ShipmentHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req shippingapp.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, shipment)
}

// GetByID godoc
// @Summary      Get shipment by ID
// @Description  Retrieve a shipment with its tracking history, newest event first
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *gin.Context) {
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

	shipment, err := h.shipmentService.GetByID(c.Request.Context(), tenantID, shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// List godoc
// @Summary      List shipments
// @Description  List shipments with status, NDR and search filters
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Filter by shipment status"
// @Param        ndr_only query bool false "Only shipments with an open NDR"
// @Param        search query string false "Search by shipment number, AWB or carrier"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]shippingapp.ShipmentResponse}
// @Router       /shipping/shipments [get]
func (h *ShipmentHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var filter shippingapp.ShipmentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.shipmentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// AssignAWB godoc
// @Summary      Assign a tracking number
// @Description  Requests an AWB from the carrier for a shipment that has none yet
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shippingapp.AssignAWBRequest false "Courier selection"
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/awb [post]
func (h *ShipmentHandler) AssignAWB(c *gin.Context) {
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

	var req shippingapp.AssignAWBRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	shipment, err := h.shipmentService.AssignAWB(c.Request.Context(), tenantID, shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// SweepPendingAWBs godoc
// @Summary      Assign AWBs to pending shipments
// @Description  Retries AWB assignment for shipments whose initial attempt failed
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Success      200 {object} dto.Response{data=shippingapp.AWBSweepResult}
// @Router       /shipping/shipments/awb-sweep [post]
func (h *ShipmentHandler) SweepPendingAWBs(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	result, err := h.shipmentService.AssignPendingAWBs(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// GenerateLabel godoc
// @Summary      Generate a shipping label
// @Description  Requests the label PDF from the carrier; the shipment must have an AWB
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/label [post]
func (h *ShipmentHandler) GenerateLabel(c *gin.Context) {
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

	shipment, err := h.shipmentService.GenerateLabel(c.Request.Context(), tenantID, shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// SchedulePickup godoc
// @Summary      Schedule a pickup
// @Description  Books a courier pickup for the given date
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shippingapp.SchedulePickupRequest true "Pickup date"
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Router       /shipping/shipments/{id}/pickup [post]
func (h *ShipmentHandler) SchedulePickup(c *gin.Context) {
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

	var req shippingapp.SchedulePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shipment, err := h.shipmentService.SchedulePickup(c.Request.Context(), tenantID, shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// HandleNDR godoc
// @Summary      Act on a non-delivery report
// @Description  Instructs the carrier to reattempt delivery or return to origin
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Param        request body shippingapp.NDRActionRequest true "NDR action"
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/ndr [post]
func (h *ShipmentHandler) HandleNDR(c *gin.Context) {
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

	var req shippingapp.NDRActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shipment, err := h.shipmentService.HandleNDR(c.Request.Context(), tenantID, shipmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// Cancel godoc
// @Summary      Cancel a shipment
// @Description  Cancels the shipment with the carrier; terminal shipments are refused
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/cancel [post]
func (h *ShipmentHandler) Cancel(c *gin.Context) {
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

	shipment, err := h.shipmentService.Cancel(c.Request.Context(), tenantID, shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// SyncTracking godoc
// @Summary      Pull tracking from the carrier
// @Description  Fetches the latest tracking events and applies any status change
// @Tags         shipments
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Shipment ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/shipments/{id}/sync [post]
func (h *ShipmentHandler) SyncTracking(c *gin.Context) {
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

	shipment, err := h.trackingService.SyncTracking(c.Request.Context(), tenantID, shipmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, shipment)
}

// CheckServiceability godoc
// @Summary      Check lane serviceability
// @Description  Asks the carrier which couriers serve the pickup/delivery lane
// @Tags         shipments
// @Produce      json
// @Param        carrier_account_id query string true "Carrier account ID" format(uuid)
// @Param        pickup_pincode query string true "Pickup pincode"
// @Param        delivery_pincode query string true "Delivery pincode"
// @Param        weight_grams query int false "Package weight in grams"
// @Param        is_cod query bool false "Cash on delivery"
// @Success      200 {object} dto.Response{data=shippingapp.ServiceabilityResponse}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/serviceability [get]
func (h *ShipmentHandler) CheckServiceability(c *gin.Context) {
	var req shippingapp.ServiceabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.shipmentService.CheckServiceability(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
