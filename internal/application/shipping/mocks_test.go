package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// MockShipmentRepository is a mock implementation of ShipmentRepository
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByIDWithEvents(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByAWB(ctx context.Context, awbNumber string) (*shipping.Shipment, error) {
	args := m.Called(ctx, awbNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentRepository) FindAWBPending(ctx context.Context, tenantID uuid.UUID, limit int) ([]shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) CreateWithOrderTransition(ctx context.Context, shipment *shipping.Shipment, initial shipping.ShipmentTracking, orderStatus string) error {
	args := m.Called(ctx, shipment, initial, orderStatus)
	return args.Error(0)
}

func (m *MockShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) AssignAWB(ctx context.Context, shipmentID uuid.UUID, awbNumber string, courierCompanyID *int, courierName string) error {
	args := m.Called(ctx, shipmentID, awbNumber, courierCompanyID, courierName)
	return args.Error(0)
}

func (m *MockShipmentRepository) TrackingEventExists(ctx context.Context, shipmentID uuid.UUID, status string, eventAt time.Time) (bool, error) {
	args := m.Called(ctx, shipmentID, status, eventAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockShipmentRepository) TrackingEventExistsByCode(ctx context.Context, shipmentID uuid.UUID, statusCode string, eventAt time.Time) (bool, error) {
	args := m.Called(ctx, shipmentID, statusCode, eventAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockShipmentRepository) AppendTrackingEvent(ctx context.Context, event shipping.ShipmentTracking) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockShipmentRepository) CODPending(ctx context.Context, tenantID uuid.UUID) (*shipping.CODPendingSummary, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CODPendingSummary), args.Error(1)
}

func (m *MockShipmentRepository) GenerateShipmentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockCarrierAccountRepository is a mock implementation of CarrierAccountRepository
type MockCarrierAccountRepository struct {
	mock.Mock
}

func (m *MockCarrierAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.CarrierAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CarrierAccount), args.Error(1)
}

func (m *MockCarrierAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.CarrierAccount, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.CarrierAccount), args.Error(1)
}

func (m *MockCarrierAccountRepository) Save(ctx context.Context, account *shipping.CarrierAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockCarrierAccountRepository) UpdateToken(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, accountID, token, expiresAt)
	return args.Error(0)
}

// MockSalesOrderRepository is a mock implementation of SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, fulfillment order.FulfillmentStatus) error {
	args := m.Called(ctx, id, status, fulfillment)
	return args.Error(0)
}

// MockCODRemittanceRepository is a mock implementation of CODRemittanceRepository
type MockCODRemittanceRepository struct {
	mock.Mock
}

func (m *MockCODRemittanceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.CODRemittance, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.CODRemittance), args.Error(1)
}

func (m *MockCODRemittanceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeadLetterStore is a mock implementation of DeadLetterStore
type MockDeadLetterStore struct {
	mock.Mock
}

func (m *MockDeadLetterStore) Push(ctx context.Context, letter shipping.DeadLetter) error {
	args := m.Called(ctx, letter)
	return args.Error(0)
}

func (m *MockDeadLetterStore) Recent(ctx context.Context, limit int) ([]shipping.DeadLetter, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.DeadLetter), args.Error(1)
}

// MockCarrierAdapter is a mock implementation of CarrierAdapter
type MockCarrierAdapter struct {
	mock.Mock
	provider shipping.CarrierProvider
}

func (m *MockCarrierAdapter) Provider() shipping.CarrierProvider {
	if m.provider == "" {
		return shipping.CarrierProviderShiprocket
	}
	return m.provider
}

func (m *MockCarrierAdapter) Authenticate(ctx context.Context, apiKey, apiSecret string) (*shipping.AuthResult, error) {
	args := m.Called(ctx, apiKey, apiSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.AuthResult), args.Error(1)
}

func (m *MockCarrierAdapter) CreateOrder(ctx context.Context, params *shipping.CreateOrderParams, token string) (*shipping.CreateOrderResult, error) {
	args := m.Called(ctx, params, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CreateOrderResult), args.Error(1)
}

func (m *MockCarrierAdapter) AssignAWB(ctx context.Context, carrierShipmentID string, courierCompanyID *int, token string) (*shipping.AWBResult, error) {
	args := m.Called(ctx, carrierShipmentID, courierCompanyID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.AWBResult), args.Error(1)
}

func (m *MockCarrierAdapter) GenerateLabel(ctx context.Context, carrierShipmentID string, token string) (*shipping.LabelResult, error) {
	args := m.Called(ctx, carrierShipmentID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.LabelResult), args.Error(1)
}

func (m *MockCarrierAdapter) SchedulePickup(ctx context.Context, carrierShipmentID, pickupDate string, token string) (*shipping.PickupResult, error) {
	args := m.Called(ctx, carrierShipmentID, pickupDate, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.PickupResult), args.Error(1)
}

func (m *MockCarrierAdapter) GetTracking(ctx context.Context, awbNumber string, token string) (*shipping.TrackingResult, error) {
	args := m.Called(ctx, awbNumber, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.TrackingResult), args.Error(1)
}

func (m *MockCarrierAdapter) CheckServiceability(ctx context.Context, params *shipping.ServiceabilityParams, token string) (*shipping.ServiceabilityResult, error) {
	args := m.Called(ctx, params, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.ServiceabilityResult), args.Error(1)
}

func (m *MockCarrierAdapter) HandleNDR(ctx context.Context, params *shipping.NDRActionParams, token string) (*shipping.NDRActionResult, error) {
	args := m.Called(ctx, params, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.NDRActionResult), args.Error(1)
}

func (m *MockCarrierAdapter) CancelShipment(ctx context.Context, params *shipping.CancelParams, token string) (*shipping.CancelResult, error) {
	args := m.Called(ctx, params, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CancelResult), args.Error(1)
}

// staticRegistry resolves every provider to the same adapter
type staticRegistry struct {
	adapter shipping.CarrierAdapter
}

func (r *staticRegistry) Resolve(provider shipping.CarrierProvider) shipping.CarrierAdapter {
	return r.adapter
}
