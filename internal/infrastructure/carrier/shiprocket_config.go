package carrier

import (
	"errors"
	"time"
)

// ShiprocketConfig holds configuration for the Shiprocket API integration
type ShiprocketConfig struct {
	// APIBaseURL is the base URL for the Shiprocket external API
	APIBaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// ShiprocketProductionAPIURL is the production API endpoint
	ShiprocketProductionAPIURL = "https://apiv2.shiprocket.in/v1/external"

	// shiprocketTokenTTL is the documented lifetime of a Shiprocket bearer token
	shiprocketTokenTTL = 10 * 24 * time.Hour
)

// ErrShiprocketConfigMissingBaseURL indicates an empty API base URL
var ErrShiprocketConfigMissingBaseURL = errors.New("shiprocket: API base URL is required")

// NewShiprocketConfig creates a new Shiprocket configuration with defaults
func NewShiprocketConfig() *ShiprocketConfig {
	return &ShiprocketConfig{
		APIBaseURL:     ShiprocketProductionAPIURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Shiprocket configuration, filling in defaults
func (c *ShiprocketConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = ShiprocketProductionAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}
