package clover

// Config represents the configuration for the Clover merchant API client
type Config struct {
	// MerchantID is the Clover merchant identifier all inventory and
	// order endpoints are scoped under
	MerchantID string

	// APIToken is the merchant API bearer token
	APIToken string

	// BaseURL is the merchant API root, e.g.
	// https://apisandbox.dev.clover.com/v3/merchants
	BaseURL string

	// CheckoutBaseURL is the hosted checkout service root
	CheckoutBaseURL string

	// ChargeURL is the ecommerce charge endpoint tried first
	ChargeURL string

	// ChargeFallbackURL is tried when ChargeURL rejects the request,
	// covering tokens minted against the other environment
	ChargeFallbackURL string
}

// IsConfigured reports whether merchant credentials are present. When
// they are not, read operations return empty results and write
// operations fail with ErrNotConfigured, so the rest of the system
// keeps working without a connected merchant.
func (c *Config) IsConfigured() bool {
	return c.MerchantID != "" && c.APIToken != ""
}

// Validate checks if the configuration is usable for API calls
func (c *Config) Validate() error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if c.BaseURL == "" {
		return ErrInvalidRequest
	}
	return nil
}
