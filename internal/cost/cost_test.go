package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wayline/suppliersync/config"
)

func TestCost_DefaultRates(t *testing.T) {
	rates := DefaultRates()

	// 1000 in + 1000 out = 0.005 + 0.015
	assert.InDelta(t, 0.020, rates.Cost(1000, 1000), 1e-9)
	assert.InDelta(t, 0.0, rates.Cost(0, 0), 1e-9)
	assert.InDelta(t, 0.0025, rates.Cost(500, 0), 1e-9)
	assert.InDelta(t, 0.0075, rates.Cost(0, 500), 1e-9)
}

func TestCost_FromConfig(t *testing.T) {
	rates := FromConfig(config.CostConfig{PricePer1KIn: 0.01, PricePer1KOut: 0.02})

	assert.InDelta(t, 0.03, rates.Cost(1000, 1000), 1e-9)
}
