package shipping

import (
	"context"
	"time"
)

// DeadLetter is a webhook delivery that could not be routed to a shipment.
// The raw payload is preserved so operators can replay it once the cause is
// fixed.
type DeadLetter struct {
	Reason     string    `json:"reason"`
	AWBNumber  string    `json:"awb_number"`
	Payload    []byte    `json:"payload"`
	ReceivedAt time.Time `json:"received_at"`
}

// DeadLetterStore keeps unroutable webhook deliveries for later inspection
type DeadLetterStore interface {
	// Push records an unroutable delivery
	Push(ctx context.Context, letter DeadLetter) error

	// Recent returns up to limit of the most recently pushed letters,
	// newest first
	Recent(ctx context.Context, limit int) ([]DeadLetter, error)
}
