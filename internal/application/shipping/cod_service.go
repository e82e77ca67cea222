package shipping

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// CODService tracks cash-on-delivery collections and carrier remittances
type CODService struct {
	shipments   shipping.ShipmentRepository
	remittances shipping.CODRemittanceRepository
}

// NewCODService creates a new CODService
func NewCODService(shipments shipping.ShipmentRepository, remittances shipping.CODRemittanceRepository) *CODService {
	return &CODService{
		shipments:   shipments,
		remittances: remittances,
	}
}

// Pending summarizes delivered COD shipments the carrier has not yet
// remitted
func (s *CODService) Pending(ctx context.Context, tenantID uuid.UUID) (*CODPendingResponse, error) {
	summary, err := s.shipments.CODPending(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	resp := &CODPendingResponse{
		TotalPending: summary.TotalPending,
		Count:        summary.Count,
	}
	for i := range summary.Shipments {
		resp.Shipments = append(resp.Shipments, ToShipmentResponse(&summary.Shipments[i]))
	}
	return resp, nil
}

// MarkCollected records that the carrier collected the COD amount on
// delivery. Prepaid shipments are refused.
func (s *CODService) MarkCollected(ctx context.Context, tenantID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.MarkCODCollected(); err != nil {
		return nil, err
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// ListRemittances lists carrier payout batches, newest first
func (s *CODService) ListRemittances(ctx context.Context, tenantID uuid.UUID, page, pageSize int) (shared.Paginated[CODRemittanceResponse], error) {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}

	batches, err := s.remittances.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return shared.Paginated[CODRemittanceResponse]{}, err
	}
	total, err := s.remittances.CountForTenant(ctx, tenantID)
	if err != nil {
		return shared.Paginated[CODRemittanceResponse]{}, err
	}

	responses := make([]CODRemittanceResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, ToCODRemittanceResponse(&batches[i]))
	}
	return shared.NewPaginated(responses, total, f.Page, f.PageSize), nil
}
