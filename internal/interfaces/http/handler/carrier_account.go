package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	shippingapp "github.com/erp/shipping/internal/application/shipping"
	"github.com/erp/shipping/internal/interfaces/http/dto"
)

// CarrierAccountHandler handles carrier account API endpoints
type CarrierAccountHandler struct {
	BaseHandler
	accountService *shippingapp.CarrierAccountService
}

// NewCarrierAccountHandler creates a new CarrierAccountHandler
func NewCarrierAccountHandler(accountService *shippingapp.CarrierAccountService) *CarrierAccountHandler {
	return &CarrierAccountHandler{
		accountService: accountService,
	}
}

// Create godoc
// @Summary      Create a carrier account
// @Description  Registers carrier credentials for the tenant. Credentials are never echoed back
// @Tags         carrier-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body shippingapp.CreateCarrierAccountRequest true "Carrier account"
// @Success      201 {object} dto.Response{data=shippingapp.CarrierAccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/carrier-accounts [post]
func (h *CarrierAccountHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req shippingapp.CreateCarrierAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// Update godoc
// @Summary      Update a carrier account
// @Description  Patches account fields; changing credentials invalidates the cached token
// @Tags         carrier-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Carrier account ID" format(uuid)
// @Param        request body shippingapp.UpdateCarrierAccountRequest true "Fields to update"
// @Success      200 {object} dto.Response{data=shippingapp.CarrierAccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/carrier-accounts/{id} [put]
func (h *CarrierAccountHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req shippingapp.UpdateCarrierAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.Update(c.Request.Context(), tenantID, accountID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// GetByID godoc
// @Summary      Get carrier account by ID
// @Tags         carrier-accounts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Carrier account ID" format(uuid)
// @Success      200 {object} dto.Response{data=shippingapp.CarrierAccountResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/carrier-accounts/{id} [get]
func (h *CarrierAccountHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// List godoc
// @Summary      List carrier accounts
// @Tags         carrier-accounts
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]shippingapp.CarrierAccountResponse}
// @Router       /shipping/carrier-accounts [get]
func (h *CarrierAccountHandler) List(c *gin.Context) {
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

	result, err := h.accountService.List(c.Request.Context(), tenantID, listReq.Page, listReq.PageSize)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
