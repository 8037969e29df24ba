// Package governance implements the deterministic business-rule engine for
// proposed retail price changes. The engine performs no I/O: callers gather
// the reference maps (wholesale prices, categories, price history, MAP
// floors) and receive the same split of approved and rejected proposals for
// the same inputs every time.
package governance

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wayline/suppliersync/config"
	"github.com/wayline/suppliersync/models"
)

// RejectReason is the enumerated code attached to a governance rejection
type RejectReason string

const (
	ReasonMissingSKU          RejectReason = "missing_sku"
	ReasonUnknownSKU          RejectReason = "unknown_sku"
	ReasonInvalidPriceFormat  RejectReason = "invalid_price_format"
	ReasonPriceMustBePositive RejectReason = "price_must_be_positive"
	ReasonCategoryNotAllowed  RejectReason = "category_not_allowed"
	ReasonCategoryBlocked     RejectReason = "category_blocked"
	ReasonRetailBelowWholesale RejectReason = "retail_below_wholesale"
	ReasonMarginBelowMinimum  RejectReason = "margin_below_minimum"
	ReasonBelowMAPPrice       RejectReason = "below_map_price"
	ReasonDailyDriftExceeded  RejectReason = "daily_drift_exceeded"
)

// epsilon guards the divisions against zero wholesale or current prices
const epsilon = 1e-6

// Rejection is a proposal that failed a policy check
type Rejection struct {
	Proposal models.PriceChangeProposal `json:"proposal"`
	Reason   RejectReason               `json:"reject_reason"`
	Details  string                     `json:"reject_details"`
}

// Reference carries the lookup data the rules evaluate against. Map presence
// doubles as knowledge: a SKU absent from CurrentPriceBySKU or
// LastPriceDateBySKU simply skips the drift check, and a SKU absent from
// MAPPriceBySKU has no advertised-price floor.
type Reference struct {
	WholesaleBySKU     map[string]float64
	CategoryBySKU      map[string]string
	CurrentPriceBySKU  map[string]float64
	LastPriceDateBySKU map[string]time.Time
	MAPPriceBySKU      map[string]float64
}

// Engine evaluates price change proposals against the configured policy
type Engine struct {
	minMarginPct  float64
	maxDailyDrift float64
	blocked       map[string]struct{}
	allowed       map[string]struct{} // nil when no allow-list is configured, meaning unrestricted
	now           func() time.Time
}

// NewEngine creates an engine from governance configuration
func NewEngine(cfg config.GovernanceConfig) *Engine {
	e := &Engine{
		minMarginPct:  cfg.MinMarginPct,
		maxDailyDrift: cfg.MaxDailyPriceDrift,
		blocked:       make(map[string]struct{}, len(cfg.BlockedCategories)),
		now:           time.Now,
	}
	for _, c := range cfg.BlockedCategories {
		e.blocked[c] = struct{}{}
	}
	if len(cfg.AllowedCategories) > 0 {
		e.allowed = make(map[string]struct{}, len(cfg.AllowedCategories))
		for _, c := range cfg.AllowedCategories {
			e.allowed[c] = struct{}{}
		}
	}
	return e
}

// WithClock replaces the engine clock. The drift rule compares calendar days,
// so tests pin the clock instead of racing midnight.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Enforce applies the policy rules to each proposal in order, short-circuiting
// on the first failure. Rules, in order: SKU present, SKU known to the
// catalog, price is a finite positive number, category allow-list, category
// block-list, wholesale floor, minimum margin, MAP floor, same-day drift cap.
func (e *Engine) Enforce(proposals []models.PriceChangeProposal, refs Reference) (approved []models.PriceChangeProposal, rejected []Rejection) {
	approved = []models.PriceChangeProposal{}
	rejected = []Rejection{}

	for _, p := range proposals {
		if rej, ok := e.evaluate(p, refs); ok {
			rejected = append(rejected, rej)
		} else {
			approved = append(approved, p)
		}
	}
	return approved, rejected
}

// evaluate runs the rule chain for a single proposal. The second return is
// true when the proposal was rejected.
func (e *Engine) evaluate(p models.PriceChangeProposal, refs Reference) (Rejection, bool) {
	reject := func(reason RejectReason, details string) (Rejection, bool) {
		return Rejection{Proposal: p, Reason: reason, Details: details}, true
	}

	if p.SKU == "" {
		return reject(ReasonMissingSKU, "proposal has no SKU")
	}
	if _, known := refs.WholesaleBySKU[p.SKU]; !known {
		return reject(ReasonUnknownSKU, fmt.Sprintf("SKU %s not found in catalog", p.SKU))
	}

	newPrice := p.NewPrice
	if math.IsNaN(newPrice) || math.IsInf(newPrice, 0) {
		return reject(ReasonInvalidPriceFormat, fmt.Sprintf("price is not a finite number: %v", newPrice))
	}
	if newPrice <= 0 {
		return reject(ReasonPriceMustBePositive, fmt.Sprintf("price must be greater than 0, got %g", newPrice))
	}

	// Category checks only apply when the category is known
	if category := refs.CategoryBySKU[p.SKU]; category != "" {
		if e.allowed != nil {
			if _, ok := e.allowed[category]; !ok {
				return reject(ReasonCategoryNotAllowed,
					fmt.Sprintf("category %q is not in allowed list: %v", category, e.allowedList()))
			}
		}
		if _, blocked := e.blocked[category]; blocked {
			return reject(ReasonCategoryBlocked, fmt.Sprintf("category %q is blocked", category))
		}
	}

	wholesale := refs.WholesaleBySKU[p.SKU]
	if newPrice < wholesale {
		return reject(ReasonRetailBelowWholesale,
			fmt.Sprintf("retail price $%.2f cannot be below wholesale $%.2f", newPrice, wholesale))
	}

	margin := (newPrice - wholesale) / math.Max(wholesale, epsilon)
	if margin < e.minMarginPct {
		return reject(ReasonMarginBelowMinimum,
			fmt.Sprintf("margin %.1f%% is below minimum %.0f%%", margin*100, e.minMarginPct*100))
	}

	if mapPrice, ok := refs.MAPPriceBySKU[p.SKU]; ok && newPrice < mapPrice {
		return reject(ReasonBelowMAPPrice,
			fmt.Sprintf("price $%.2f is below MAP $%.2f", newPrice, mapPrice))
	}

	// Drift cap only applies when the last recorded change happened today;
	// a SKU without price history has no drift constraint.
	currentPrice, haveCurrent := refs.CurrentPriceBySKU[p.SKU]
	lastDate, haveDate := refs.LastPriceDateBySKU[p.SKU]
	if haveCurrent && haveDate && sameCalendarDay(lastDate, e.now()) {
		drift := math.Abs(newPrice-currentPrice) / math.Max(currentPrice, epsilon)
		if drift > e.maxDailyDrift {
			return reject(ReasonDailyDriftExceeded,
				fmt.Sprintf("price change %.1f%% exceeds daily limit %.0f%% ($%.2f -> $%.2f)",
					drift*100, e.maxDailyDrift*100, currentPrice, newPrice))
		}
	}

	return Rejection{}, false
}

// allowedList renders the allow-list in stable order for rejection details
func (e *Engine) allowedList() []string {
	list := make([]string, 0, len(e.allowed))
	for c := range e.allowed {
		list = append(list, c)
	}
	sort.Strings(list)
	return list
}

// sameCalendarDay reports whether a and b fall on the same local calendar
// date. Calendar date, not a rolling 24h window: a change late yesterday does
// not constrain a change early today.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
