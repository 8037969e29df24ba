package governance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wayline/suppliersync/config"
	"github.com/wayline/suppliersync/models"
)

func testConfig() config.GovernanceConfig {
	return config.GovernanceConfig{
		MaxDailyPriceDrift: 0.20,
		MinMarginPct:       0.05,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func proposal(sku string, price float64) models.PriceChangeProposal {
	return models.PriceChangeProposal{SKU: sku, NewPrice: price}
}

func TestEnforce_ApprovesHealthyMargin(t *testing.T) {
	engine := NewEngine(testConfig())

	// 50% margin, current price known but no change date: no drift constraint
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("WF-001", 150.0)},
		Reference{
			WholesaleBySKU:    map[string]float64{"WF-001": 100.0},
			CurrentPriceBySKU: map[string]float64{"WF-001": 140.0},
		},
	)

	require.Len(t, approved, 1)
	assert.Empty(t, rejected)
	assert.Equal(t, "WF-001", approved[0].SKU)
}

func TestEnforce_RejectsMarginBelowMinimum(t *testing.T) {
	engine := NewEngine(testConfig())

	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 104.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 100.0}},
	)

	assert.Empty(t, approved)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonMarginBelowMinimum, rejected[0].Reason)
	assert.Contains(t, rejected[0].Details, "4.0%")
}

func TestEnforce_MarginBoundaryIsInclusive(t *testing.T) {
	engine := NewEngine(testConfig())

	// Margin exactly at the threshold approves; only margin < threshold rejects
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 105.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 100.0}},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_RejectsRetailBelowWholesale(t *testing.T) {
	engine := NewEngine(testConfig())

	_, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 80.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 100.0}},
	)

	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonRetailBelowWholesale, rejected[0].Reason)
	assert.Contains(t, rejected[0].Details, "$80.00")
	assert.Contains(t, rejected[0].Details, "$100.00")
}

func TestEnforce_RejectsMissingSKU(t *testing.T) {
	engine := NewEngine(testConfig())

	// Missing SKU wins regardless of price validity
	_, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("", -5.0)},
		Reference{},
	)

	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonMissingSKU, rejected[0].Reason)
}

func TestEnforce_RejectsUnknownSKU(t *testing.T) {
	engine := NewEngine(testConfig())

	_, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("GHOST-1", 150.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 100.0}},
	)

	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonUnknownSKU, rejected[0].Reason)
	assert.Contains(t, rejected[0].Details, "GHOST-1")
}

func TestEnforce_PriceValidity(t *testing.T) {
	engine := NewEngine(testConfig())

	tests := []struct {
		name   string
		price  float64
		reason RejectReason
	}{
		{"zero price", 0, ReasonPriceMustBePositive},
		{"negative price", -10, ReasonPriceMustBePositive},
		{"NaN price", math.NaN(), ReasonInvalidPriceFormat},
		{"infinite price", math.Inf(1), ReasonInvalidPriceFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rejected := engine.Enforce(
				[]models.PriceChangeProposal{proposal("X", tt.price)},
				Reference{WholesaleBySKU: map[string]float64{"X": 50.0}},
			)
			require.Len(t, rejected, 1)
			assert.Equal(t, tt.reason, rejected[0].Reason)
		})
	}
}

func TestEnforce_BlockedCategoryNeverApproved(t *testing.T) {
	cfg := testConfig()
	cfg.BlockedCategories = []string{"Clearance"}
	engine := NewEngine(cfg)

	for _, price := range []float64{50.0, 500.0, 5000.0} {
		_, rejected := engine.Enforce(
			[]models.PriceChangeProposal{proposal("X", price)},
			Reference{
				WholesaleBySKU: map[string]float64{"X": 10.0},
				CategoryBySKU:  map[string]string{"X": "Clearance"},
			},
		)
		require.Len(t, rejected, 1, "price %v", price)
		assert.Equal(t, ReasonCategoryBlocked, rejected[0].Reason)
	}
}

func TestEnforce_AllowList(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedCategories = []string{"Couches", "Dining"}
	engine := NewEngine(cfg)

	refs := Reference{
		WholesaleBySKU: map[string]float64{"A": 100.0, "B": 100.0},
		CategoryBySKU:  map[string]string{"A": "Couches", "B": "Office"},
	}

	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("A", 150.0), proposal("B", 150.0)},
		refs,
	)

	require.Len(t, approved, 1)
	assert.Equal(t, "A", approved[0].SKU)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonCategoryNotAllowed, rejected[0].Reason)
	assert.Contains(t, rejected[0].Details, "Office")
}

func TestEnforce_AllowListSkippedForUnknownCategory(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedCategories = []string{"Couches"}
	engine := NewEngine(cfg)

	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 150.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 100.0}},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_EmptyAllowListIsUnrestricted(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedCategories = []string{}
	engine := NewEngine(cfg)

	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 150.0)},
		Reference{
			WholesaleBySKU: map[string]float64{"X": 100.0},
			CategoryBySKU:  map[string]string{"X": "Couches"},
		},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_MAPFloor(t *testing.T) {
	engine := NewEngine(testConfig())

	refs := Reference{
		WholesaleBySKU: map[string]float64{"X": 100.0},
		MAPPriceBySKU:  map[string]float64{"X": 160.0},
	}

	_, rejected := engine.Enforce([]models.PriceChangeProposal{proposal("X", 150.0)}, refs)
	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonBelowMAPPrice, rejected[0].Reason)

	approved, rejected := engine.Enforce([]models.PriceChangeProposal{proposal("X", 160.0)}, refs)
	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_DailyDriftExceeded(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	engine := NewEngine(testConfig()).WithClock(fixedClock(now))

	// 100 -> 150 changed earlier today: 50% > 20% cap
	_, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 150.0)},
		Reference{
			WholesaleBySKU:     map[string]float64{"X": 50.0},
			CurrentPriceBySKU:  map[string]float64{"X": 100.0},
			LastPriceDateBySKU: map[string]time.Time{"X": now.Add(-2 * time.Hour)},
		},
	)

	require.Len(t, rejected, 1)
	assert.Equal(t, ReasonDailyDriftExceeded, rejected[0].Reason)
	assert.Contains(t, rejected[0].Details, "50.0%")
}

func TestEnforce_DriftWithinCapApproved(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	engine := NewEngine(testConfig()).WithClock(fixedClock(now))

	// 100 -> 115 today: 15% <= 20%
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 115.0)},
		Reference{
			WholesaleBySKU:     map[string]float64{"X": 50.0},
			CurrentPriceBySKU:  map[string]float64{"X": 100.0},
			LastPriceDateBySKU: map[string]time.Time{"X": now.Add(-2 * time.Hour)},
		},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_DriftIgnoresPriorDayChanges(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 30, 0, 0, time.Local)
	engine := NewEngine(testConfig()).WithClock(fixedClock(now))

	// Last change was less than 24h ago but on the prior calendar day, so any
	// magnitude of change passes the drift rule.
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 300.0)},
		Reference{
			WholesaleBySKU:     map[string]float64{"X": 50.0},
			CurrentPriceBySKU:  map[string]float64{"X": 100.0},
			LastPriceDateBySKU: map[string]time.Time{"X": now.Add(-3 * time.Hour)},
		},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_DriftSkippedWithoutHistory(t *testing.T) {
	engine := NewEngine(testConfig())

	// Current price known, no last-change date: drift check skipped
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 300.0)},
		Reference{
			WholesaleBySKU:    map[string]float64{"X": 50.0},
			CurrentPriceBySKU: map[string]float64{"X": 100.0},
		},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_ZeroWholesaleApproves(t *testing.T) {
	engine := NewEngine(testConfig())

	// Wholesale of zero: the epsilon guard keeps the margin computation
	// finite and any positive price clears the floor.
	approved, rejected := engine.Enforce(
		[]models.PriceChangeProposal{proposal("X", 10.0)},
		Reference{WholesaleBySKU: map[string]float64{"X": 0.0}},
	)

	assert.Len(t, approved, 1)
	assert.Empty(t, rejected)
}

func TestEnforce_Idempotent(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.Local)
	engine := NewEngine(testConfig()).WithClock(fixedClock(now))

	proposals := []models.PriceChangeProposal{
		proposal("A", 150.0),
		proposal("B", 104.0),
		proposal("", 9.0),
		proposal("C", 80.0),
	}
	refs := Reference{
		WholesaleBySKU: map[string]float64{"A": 100.0, "B": 100.0, "C": 100.0},
	}

	approved1, rejected1 := engine.Enforce(proposals, refs)
	approved2, rejected2 := engine.Enforce(proposals, refs)

	assert.Equal(t, approved1, approved2)
	assert.Equal(t, rejected1, rejected2)
}

func TestEnforce_OrderPreserved(t *testing.T) {
	engine := NewEngine(testConfig())

	proposals := []models.PriceChangeProposal{
		proposal("A", 150.0),
		proposal("B", 150.0),
		proposal("C", 150.0),
	}
	refs := Reference{
		WholesaleBySKU: map[string]float64{"A": 100.0, "B": 100.0, "C": 100.0},
	}

	approved, _ := engine.Enforce(proposals, refs)
	require.Len(t, approved, 3)
	assert.Equal(t, "A", approved[0].SKU)
	assert.Equal(t, "B", approved[1].SKU)
	assert.Equal(t, "C", approved[2].SKU)
}
