package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
	"github.com/erp/shipping/internal/infrastructure/config"
)

// ShipmentService orchestrates the shipment lifecycle against the carrier:
// order push, AWB assignment, label, pickup, NDR decisions and cancellation
type ShipmentService struct {
	shipments shipping.ShipmentRepository
	orders    order.SalesOrderRepository
	resolver  *CarrierContextResolver
	carrier   config.CarrierConfig
	tracking  config.TrackingConfig
	logger    *zap.Logger
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	shipments shipping.ShipmentRepository,
	orders order.SalesOrderRepository,
	resolver *CarrierContextResolver,
	carrier config.CarrierConfig,
	tracking config.TrackingConfig,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		orders:    orders,
		resolver:  resolver,
		carrier:   carrier,
		tracking:  tracking,
		logger:    logger,
	}
}

// Create pushes a confirmed order to the carrier and records the resulting
// shipment. The shipment row, its initial tracking event and the order's
// transition to PROCESSING are committed atomically; a carrier rejection
// leaves no local trace. AWB assignment is attempted immediately afterwards
// on a best-effort basis and retried by the sweep when it fails.
func (s *ShipmentService) Create(ctx context.Context, tenantID uuid.UUID, req CreateShipmentRequest) (*ShipmentResponse, error) {
	ord, err := s.orders.FindByIDForTenant(ctx, tenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !ord.IsShippable() {
		return nil, shipping.ErrOrderNotShippable
	}
	if existing, err := s.shipments.FindByOrder(ctx, tenantID, ord.ID); err == nil && existing != nil {
		return nil, shared.NewDomainError("SHIPMENT_EXISTS", "Order already has a shipment")
	}

	cc, err := s.resolver.Resolve(ctx, req.CarrierAccountID)
	if err != nil {
		return nil, err
	}

	params := s.buildCreateOrderParams(ord, cc.Account, req.PickupLocation)
	result, err := cc.Adapter.CreateOrder(ctx, params, cc.Token)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}

	shipmentNumber, err := s.shipments.GenerateShipmentNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	shipment, err := shipping.NewShipment(tenantID, shipmentNumber, ord.ID, req.CarrierAccountID, result.CarrierOrderID, result.ShipmentID)
	if err != nil {
		return nil, err
	}
	shipment.SetPackage(s.effectivePackage(ord))
	shipment.SetCOD(ord.EffectiveCODAmount())

	initial := shipping.NewShipmentTracking(
		shipment.ID, "Shipment Created", shipping.ShipmentStatusCreated.String(),
		"Order pushed to "+string(cc.Adapter.Provider()), "", "", nil, time.Now(),
	)
	if err := s.shipments.CreateWithOrderTransition(ctx, shipment, initial, order.StatusProcessing.String()); err != nil {
		return nil, err
	}

	if err := s.tryAssignAWB(ctx, shipment, cc, nil); err != nil {
		s.logger.Warn("AWB assignment deferred to sweep",
			zap.String("shipment_id", shipment.ID.String()),
			zap.String("shipment_number", shipment.ShipmentNumber),
			zap.Error(err))
	}

	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// AssignAWB requests a tracking number for a shipment that does not have one
func (s *ShipmentService) AssignAWB(ctx context.Context, tenantID, shipmentID uuid.UUID, req AssignAWBRequest) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.HasAWB() {
		return nil, shipping.ErrAWBAlreadyAssigned
	}
	cc, err := s.resolveForShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}
	if err := s.tryAssignAWB(ctx, shipment, cc, req.CourierCompanyID); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// AssignPendingAWBs retries AWB assignment for shipments whose best-effort
// assignment failed at creation time. A uuid.Nil tenant sweeps all tenants.
func (s *ShipmentService) AssignPendingAWBs(ctx context.Context, tenantID uuid.UUID) (*AWBSweepResult, error) {
	batch := s.tracking.AWBSweepBatchSize
	if batch <= 0 {
		batch = 50
	}
	pending, err := s.shipments.FindAWBPending(ctx, tenantID, batch)
	if err != nil {
		return nil, err
	}

	result := &AWBSweepResult{Scanned: len(pending)}
	for i := range pending {
		shipment := &pending[i]
		cc, err := s.resolveForShipment(ctx, shipment)
		if err != nil {
			result.Failed++
			s.logger.Warn("AWB sweep: carrier context unavailable",
				zap.String("shipment_id", shipment.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.tryAssignAWB(ctx, shipment, cc, nil); err != nil {
			result.Failed++
			s.logger.Warn("AWB sweep: assignment failed",
				zap.String("shipment_id", shipment.ID.String()),
				zap.Error(err))
			continue
		}
		result.Assigned++
	}
	return result, nil
}

// GenerateLabel produces a shipping label and records its location
func (s *ShipmentService) GenerateLabel(ctx context.Context, tenantID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if !shipment.HasAWB() {
		return nil, shipping.ErrNoAWB
	}
	cc, err := s.resolveForShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}

	result, err := cc.Adapter.GenerateLabel(ctx, s.carrierShipmentRef(shipment), cc.Token)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}

	shipment.SetLabelURL(result.LabelURL)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// SchedulePickup books a carrier pickup and moves the shipment into
// PICKUP_SCHEDULED
func (s *ShipmentService) SchedulePickup(ctx context.Context, tenantID, shipmentID uuid.UUID, req SchedulePickupRequest) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	cc, err := s.resolveForShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}

	result, err := cc.Adapter.SchedulePickup(ctx, s.carrierShipmentRef(shipment), req.PickupDate, cc.Token)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}

	shipment.MarkPickupScheduled()
	event := shipping.NewShipmentTracking(
		shipment.ID, shipping.ShipmentStatusPickupScheduled.String(), "2",
		"Pickup scheduled for "+req.PickupDate, "", "", nil, time.Now(),
	)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// HandleNDR executes the merchant's decision on a flagged non-delivery
// report: instruct the carrier to reattempt or to return to origin
func (s *ShipmentService) HandleNDR(ctx context.Context, tenantID, shipmentID uuid.UUID, req NDRActionRequest) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if !shipment.HasAWB() {
		return nil, shipping.ErrNoAWB
	}
	cc, err := s.resolveForShipment(ctx, shipment)
	if err != nil {
		return nil, err
	}

	params := &shipping.NDRActionParams{
		AWBNumber:        *shipment.AWBNumber,
		Action:           req.Action,
		ReattemptDate:    req.ReattemptDate,
		ReattemptAddress: req.ReattemptAddress,
		Comments:         req.Comments,
	}
	result, err := cc.Adapter.HandleNDR(ctx, params, cc.Token)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}

	shipment.ClearNDR()
	if req.Action == shipping.NDRActionRTO {
		now := time.Now()
		shipment.ApplyStatus(shipping.ShipmentStatusRTOInitiated, "Return to origin requested", now)
		event := shipping.NewShipmentTracking(
			shipment.ID, shipping.ShipmentStatusRTOInitiated.String(), "9",
			"Return to origin requested", "", "", nil, now,
		)
		if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
			return nil, err
		}
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// Cancel cancels the shipment with the carrier and marks it CANCELLED
// locally. Terminal shipments are refused before any carrier call is made.
func (s *ShipmentService) Cancel(ctx context.Context, tenantID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.Status.IsTerminal() {
		return nil, shipping.ErrShipmentTerminal
	}
	// Shipments that were never pushed to a carrier are cancelled locally only
	if shipment.CarrierOrderID != "" {
		cc, err := s.resolveForShipment(ctx, shipment)
		if err != nil {
			return nil, err
		}

		result, err := cc.Adapter.CancelShipment(ctx, s.cancelParams(shipment), cc.Token)
		if err != nil {
			return nil, err
		}
		if !result.Success {
			return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
		}
	}

	if err := shipment.Cancel(); err != nil {
		return nil, err
	}
	now := time.Now()
	event := shipping.NewShipmentTracking(
		shipment.ID, shipping.ShipmentStatusCancelled.String(), "8",
		"Shipment cancelled", "", "", nil, now,
	)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// CheckServiceability checks whether a pickup-delivery lane is serviceable
// and which couriers cover it
func (s *ShipmentService) CheckServiceability(ctx context.Context, req ServiceabilityRequest) (*ServiceabilityResponse, error) {
	cc, err := s.resolver.Resolve(ctx, req.CarrierAccountID)
	if err != nil {
		return nil, err
	}

	weight := req.WeightGrams
	if weight <= 0 {
		weight = s.carrier.DefaultWeightGrams
	}
	params := &shipping.ServiceabilityParams{
		PickupPincode:   req.PickupPincode,
		DeliveryPincode: req.DeliveryPincode,
		WeightGrams:     weight,
		IsCOD:           req.IsCOD,
	}
	result, err := cc.Adapter.CheckServiceability(ctx, params, cc.Token)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}

	resp := &ServiceabilityResponse{Serviceable: result.Serviceable}
	for _, c := range result.AvailableCouriers {
		resp.AvailableCouriers = append(resp.AvailableCouriers, CourierOptionResponse{
			CourierID:      c.CourierID,
			CourierName:    c.CourierName,
			EstimatedDays:  c.EstimatedDays,
			FreightCharge:  c.FreightCharge,
			CODCharges:     c.CODCharges,
			TotalCharge:    c.TotalCharge,
			IsCODAvailable: c.IsCODAvailable,
		})
	}
	return resp, nil
}

// GetByID retrieves a shipment with its tracking history, newest event first
func (s *ShipmentService) GetByID(ctx context.Context, tenantID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDWithEvents(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// List retrieves shipments with filtering and pagination
func (s *ShipmentService) List(ctx context.Context, tenantID uuid.UUID, filter ShipmentListFilter) (shared.Paginated[ShipmentResponse], error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.Status != nil {
		f.Filters["status"] = *filter.Status
	}
	if filter.NDROnly {
		f.Filters["ndr_status"] = string(shipping.NDRStatusActionRequired)
	}

	items, err := s.shipments.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return shared.Paginated[ShipmentResponse]{}, err
	}
	total, err := s.shipments.CountForTenant(ctx, tenantID, f)
	if err != nil {
		return shared.Paginated[ShipmentResponse]{}, err
	}

	responses := make([]ShipmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, ToShipmentResponse(&items[i]))
	}
	return shared.NewPaginated(responses, total, f.Page, f.PageSize), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *ShipmentService) resolveForShipment(ctx context.Context, shipment *shipping.Shipment) (*CarrierContext, error) {
	if shipment.CarrierAccountID == nil {
		return nil, shipping.ErrNoCarrierAccount
	}
	return s.resolver.Resolve(ctx, *shipment.CarrierAccountID)
}

// tryAssignAWB performs the carrier call and the guarded repository write.
// The guard makes a concurrent double assignment surface as
// ErrAWBAlreadyAssigned instead of overwriting the stored number.
func (s *ShipmentService) tryAssignAWB(ctx context.Context, shipment *shipping.Shipment, cc *CarrierContext, courierCompanyID *int) error {
	result, err := cc.Adapter.AssignAWB(ctx, s.carrierShipmentRef(shipment), courierCompanyID, cc.Token)
	if err != nil {
		return err
	}
	if !result.Success {
		return shared.NewDomainError("CARRIER_REJECTED", result.Error)
	}
	if err := shipment.AssignAWB(result.AWBNumber, result.CourierCompanyID, result.CourierName); err != nil {
		return err
	}
	return s.shipments.AssignAWB(ctx, shipment.ID, result.AWBNumber, result.CourierCompanyID, result.CourierName)
}

// cancelParams assembles both identifiers a carrier may cancel by. The
// waybill is the AWB when assigned, otherwise the carrier shipment id, which
// for direct carriers is the waybill allocated at manifest time.
func (s *ShipmentService) cancelParams(shipment *shipping.Shipment) *shipping.CancelParams {
	params := &shipping.CancelParams{
		CarrierOrderID: shipment.CarrierOrderID,
		AWBNumber:      shipment.CarrierShipmentID,
	}
	if shipment.AWBNumber != nil {
		params.AWBNumber = *shipment.AWBNumber
	}
	return params
}

// carrierShipmentRef picks the identifier carrier calls key on, falling back
// to the order id for carriers that never issue a distinct shipment id
func (s *ShipmentService) carrierShipmentRef(shipment *shipping.Shipment) string {
	if shipment.CarrierShipmentID != "" {
		return shipment.CarrierShipmentID
	}
	return shipment.CarrierOrderID
}

func (s *ShipmentService) buildCreateOrderParams(ord *order.SalesOrder, account *shipping.CarrierAccount, pickupOverride string) *shipping.CreateOrderParams {
	pickup := pickupOverride
	if pickup == "" {
		pickup = account.PickupLocationName
	}

	params := &shipping.CreateOrderParams{
		OrderNumber: ord.OrderNumber,
		OrderDate:   ord.CreatedAt.Format("2006-01-02"),

		BillingName:    ord.BillingOrShippingName(),
		BillingPhone:   ord.BillingOrShippingPhone(),
		BillingAddress: ord.BillingOrShippingAddress(),
		BillingCity:    ord.BillingOrShippingCity(),
		BillingState:   ord.BillingOrShippingState(),
		BillingPincode: ord.BillingOrShippingPincode(),
		BillingEmail:   ord.ShippingEmail,

		ShippingName:    ord.ShippingName,
		ShippingPhone:   ord.ShippingPhone,
		ShippingAddress: ord.ShippingAddress,
		ShippingCity:    ord.ShippingCity,
		ShippingState:   ord.ShippingState,
		ShippingPincode: ord.ShippingPincode,

		PaymentMethod: "Prepaid",
		SubTotal:      ord.Total,

		PickupLocationID: pickup,
	}
	if ord.IsCOD {
		params.PaymentMethod = "COD"
		params.CODAmount = ord.EffectiveCODAmount()
	}
	params.WeightGrams, params.LengthCm, params.BreadthCm, params.HeightCm = s.effectivePackage(ord)

	for _, item := range ord.Items {
		params.Items = append(params.Items, shipping.ShipmentItem{
			Name:         item.ProductName,
			SKU:          item.SKU,
			Units:        item.Quantity,
			SellingPrice: item.UnitPrice,
			HSNCode:      item.HSNCode,
		})
	}
	return params
}

// effectivePackage applies the configured package defaults to order
// dimensions that were never captured
func (s *ShipmentService) effectivePackage(ord *order.SalesOrder) (weight, length, breadth, height int) {
	weight = ord.WeightGrams
	if weight <= 0 {
		weight = s.carrier.DefaultWeightGrams
	}
	length = ord.LengthCm
	if length <= 0 {
		length = s.carrier.DefaultLengthCm
	}
	breadth = ord.BreadthCm
	if breadth <= 0 {
		breadth = s.carrier.DefaultBreadthCm
	}
	height = ord.HeightCm
	if height <= 0 {
		height = s.carrier.DefaultHeightCm
	}
	return weight, length, breadth, height
}
