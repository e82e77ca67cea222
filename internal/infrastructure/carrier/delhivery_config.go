package carrier

import "time"

// DelhiveryConfig holds configuration for the Delhivery API integration
type DelhiveryConfig struct {
	// APIBaseURL is the base URL for the Delhivery track API
	APIBaseURL string
	// PickupLocation is the registered warehouse name used for pickup requests
	PickupLocation string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// DelhiveryProductionAPIURL is the production API endpoint
	DelhiveryProductionAPIURL = "https://track.delhivery.com"

	// delhiveryTokenTTL reflects Delhivery's static API tokens, which do not
	// rotate on a short schedule
	delhiveryTokenTTL = 365 * 24 * time.Hour
)

// NewDelhiveryConfig creates a new Delhivery configuration with defaults
func NewDelhiveryConfig() *DelhiveryConfig {
	return &DelhiveryConfig{
		APIBaseURL:     DelhiveryProductionAPIURL,
		PickupLocation: "Primary",
		TimeoutSeconds: 30,
	}
}

// Validate validates the Delhivery configuration, filling in defaults
func (c *DelhiveryConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DelhiveryProductionAPIURL
	}
	if c.PickupLocation == "" {
		c.PickupLocation = "Primary"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
