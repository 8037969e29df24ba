// Package cost converts token usage into dollars for telemetry accounting.
package cost

import "github.com/wayline/suppliersync/config"

// Rates holds the per-1000-token prices for prompt and completion tokens
type Rates struct {
	PricePer1KIn  float64
	PricePer1KOut float64
}

// DefaultRates returns the standard pricing used when nothing is configured
func DefaultRates() Rates {
	return Rates{PricePer1KIn: 0.005, PricePer1KOut: 0.015}
}

// FromConfig builds rates from the cost configuration
func FromConfig(cfg config.CostConfig) Rates {
	return Rates{PricePer1KIn: cfg.PricePer1KIn, PricePer1KOut: cfg.PricePer1KOut}
}

// Cost computes the dollar cost of a call from its token counts
func (r Rates) Cost(tokensIn, tokensOut int) float64 {
	return float64(tokensIn)/1000.0*r.PricePer1KIn + float64(tokensOut)/1000.0*r.PricePer1KOut
}
