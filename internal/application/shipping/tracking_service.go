package shipping

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// TrackingService reconciles local shipment state with the carrier through
// two ingestion paths: on-demand pull sync and carrier-initiated webhooks.
// Both paths run every status code through the same mapping, so a shipment
// ends up in the same canonical state regardless of which path saw the
// update first.
type TrackingService struct {
	shipments   shipping.ShipmentRepository
	orders      order.SalesOrderRepository
	resolver    *CarrierContextResolver
	deadLetters shipping.DeadLetterStore
	logger      *zap.Logger
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(
	shipments shipping.ShipmentRepository,
	orders order.SalesOrderRepository,
	resolver *CarrierContextResolver,
	deadLetters shipping.DeadLetterStore,
	logger *zap.Logger,
) *TrackingService {
	return &TrackingService{
		shipments:   shipments,
		orders:      orders,
		resolver:    resolver,
		deadLetters: deadLetters,
		logger:      logger,
	}
}

// ---------------------------------------------------------------------------
// Pull sync
// ---------------------------------------------------------------------------

// SyncTracking fetches the shipment's full tracking history from the carrier
// and folds it into the local event log. Ingestion is idempotent on the
// (shipment, status, event timestamp) tuple, so repeated syncs append nothing
// new.
func (s *TrackingService) SyncTracking(ctx context.Context, tenantID, shipmentID uuid.UUID) (*ShipmentResponse, error) {
	shipment, err := s.shipments.FindByIDForTenant(ctx, tenantID, shipmentID)
	if err != nil {
		return nil, err
	}
	if !shipment.HasAWB() {
		return nil, shipping.ErrNoAWB
	}
	if shipment.CarrierAccountID == nil {
		return nil, shipping.ErrNoCarrierAccount
	}

	cc, err := s.resolver.Resolve(ctx, *shipment.CarrierAccountID)
	if err != nil {
		return nil, err
	}
	tracking, err := cc.Adapter.GetTracking(ctx, *shipment.AWBNumber, cc.Token)
	if err != nil {
		return nil, err
	}
	if !tracking.Success {
		return nil, shared.NewDomainError("CARRIER_REJECTED", tracking.Error)
	}

	for _, ev := range tracking.Events {
		exists, err := s.shipments.TrackingEventExists(ctx, shipment.ID, ev.Status, ev.Timestamp)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		event := shipping.NewShipmentTracking(
			shipment.ID, ev.Status, ev.StatusCode, ev.Description,
			ev.Location, ev.City, ev.RawPayload, ev.Timestamp,
		)
		if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
			return nil, err
		}
	}

	if mapped, ok := shipping.MapCarrierStatus(tracking.CurrentStatusCode); ok {
		shipment.ApplyStatus(mapped, tracking.CurrentStatus, time.Now())
		if err := s.shipments.Save(ctx, shipment); err != nil {
			return nil, err
		}
		if err := s.cascadeOrderStatus(ctx, shipment, mapped); err != nil {
			return nil, err
		}
	}

	resp := ToShipmentResponse(shipment)
	return &resp, nil
}

// ---------------------------------------------------------------------------
// Webhook ingestion
// ---------------------------------------------------------------------------

// webhookPayload is the carrier's push notification shape. Carriers are
// inconsistent about field names across webhook versions, so the known
// variants are all accepted.
type webhookPayload struct {
	AWB             string        `json:"awb"`
	AWBNumber       string        `json:"awb_number"`
	CurrentStatus   string        `json:"current_status"`
	Status          string        `json:"status"`
	CurrentStatusID statusCode    `json:"current_status_id"`
	ShipmentStatus  string        `json:"shipment_status"`
	Description     string        `json:"description"`
	NDRReason       string        `json:"ndr_reason"`
	ETD             string        `json:"etd"`
	Timestamp       string        `json:"timestamp"`
	Scans           []webhookScan `json:"scans"`
}

type webhookScan struct {
	Location string `json:"location"`
	CityName string `json:"city_name"`
}

// statusCode tolerates carriers sending the numeric status id as either a
// JSON number or a quoted string
type statusCode string

func (c *statusCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = statusCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = statusCode(n.String())
	return nil
}

func (c statusCode) String() string {
	return string(c)
}

func (p *webhookPayload) awb() string {
	if p.AWB != "" {
		return p.AWB
	}
	return p.AWBNumber
}

func (p *webhookPayload) statusText() string {
	if p.CurrentStatus != "" {
		return p.CurrentStatus
	}
	if p.Status != "" {
		return p.Status
	}
	return "Unknown"
}

func (p *webhookPayload) description() string {
	if p.ShipmentStatus != "" {
		return p.ShipmentStatus
	}
	return p.Description
}

// eventAt picks the carrier-reported event time, falling back to receipt time
func (p *webhookPayload) eventAt(now time.Time) time.Time {
	for _, raw := range []string{p.ETD, p.Timestamp} {
		if raw == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return now
}

// ProcessWebhook ingests one carrier push notification. The method never
// returns an error for unusable payloads: carriers treat any non-2xx answer
// as a delivery failure and retry, so payloads that cannot be routed to a
// shipment are parked in the dead letter store instead.
func (s *TrackingService) ProcessWebhook(ctx context.Context, raw []byte) error {
	now := time.Now()

	var payload webhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.deadLetter(ctx, "unparseable payload", "", raw, now)
		return nil
	}

	awb := payload.awb()
	if awb == "" {
		s.deadLetter(ctx, "missing AWB", "", raw, now)
		return nil
	}

	shipment, err := s.shipments.FindByAWB(ctx, awb)
	if err != nil || shipment == nil {
		s.deadLetter(ctx, "no shipment for AWB", awb, raw, now)
		return nil
	}

	statusCode := payload.CurrentStatusID.String()
	eventAt := payload.eventAt(now)

	// Best-effort dedupe on (shipment, status code, event time). Carriers
	// redeliver webhooks; an occasional duplicate slipping through is
	// harmless because status application is idempotent.
	exists, err := s.shipments.TrackingEventExistsByCode(ctx, shipment.ID, statusCode, eventAt)
	if err == nil && exists {
		return nil
	}

	var location, city string
	if len(payload.Scans) > 0 {
		location = payload.Scans[0].Location
		city = payload.Scans[0].CityName
	}
	event := shipping.NewShipmentTracking(
		shipment.ID, payload.statusText(), statusCode, payload.description(),
		location, city, raw, eventAt,
	)
	// An append failure is not fatal: a collision on the event log's
	// uniqueness key means the event is already recorded, and the status
	// application below is idempotent either way
	if err := s.shipments.AppendTrackingEvent(ctx, event); err != nil {
		s.logger.Warn("webhook: tracking event append skipped",
			zap.String("awb", awb), zap.Error(err))
	}

	dirty := false
	var mapped shipping.ShipmentStatus
	if m, ok := shipping.MapCarrierStatus(statusCode); ok {
		mapped = m
		shipment.ApplyStatus(m, payload.CurrentStatus, eventAt)
		dirty = true
	}
	if shipping.IsNDRCode(statusCode) {
		reason := payload.NDRReason
		if reason == "" {
			reason = payload.description()
		}
		if reason == "" {
			reason = "Delivery failed"
		}
		shipment.FlagNDR(reason)
		dirty = true
	}

	if dirty {
		if err := s.shipments.Save(ctx, shipment); err != nil {
			s.logger.Error("webhook: shipment update failed",
				zap.String("awb", awb), zap.Error(err))
			return nil
		}
		if mapped != "" {
			if err := s.cascadeOrderStatus(ctx, shipment, mapped); err != nil {
				s.logger.Error("webhook: order cascade failed",
					zap.String("awb", awb), zap.Error(err))
			}
		}
	}
	return nil
}

// DeadLetters lists the most recently parked webhook payloads
func (s *TrackingService) DeadLetters(ctx context.Context, limit int) ([]shipping.DeadLetter, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.deadLetters.Recent(ctx, limit)
}

// ---------------------------------------------------------------------------
// Shared
// ---------------------------------------------------------------------------

// cascadeOrderStatus mirrors the shipment's canonical status onto the linked
// sales order. Both ingestion paths use this one mapping.
func (s *TrackingService) cascadeOrderStatus(ctx context.Context, shipment *shipping.Shipment, status shipping.ShipmentStatus) error {
	switch status {
	case shipping.ShipmentStatusDelivered:
		return s.orders.UpdateStatus(ctx, shipment.OrderID, order.StatusDelivered, order.FulfillmentFulfilled)
	case shipping.ShipmentStatusPickedUp, shipping.ShipmentStatusInTransit, shipping.ShipmentStatusOutForDelivery:
		return s.orders.UpdateStatus(ctx, shipment.OrderID, order.StatusShipped, "")
	}
	return nil
}

func (s *TrackingService) deadLetter(ctx context.Context, reason, awb string, raw []byte, at time.Time) {
	letter := shipping.DeadLetter{
		Reason:     reason,
		AWBNumber:  awb,
		Payload:    raw,
		ReceivedAt: at,
	}
	if err := s.deadLetters.Push(ctx, letter); err != nil {
		s.logger.Error("webhook: dead letter push failed",
			zap.String("reason", reason), zap.Error(err))
		return
	}
	s.logger.Warn("webhook: payload dead-lettered",
		zap.String("reason", reason), zap.String("awb", awb))
}
