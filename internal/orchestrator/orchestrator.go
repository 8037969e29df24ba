// Package orchestrator runs one full supplier-sync cycle: supplier feed
// updates, buyer price proposals filtered through governance, and CX
// follow-up actions, all persisted inside a single database transaction.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wayline/suppliersync/internal/agents"
	"github.com/wayline/suppliersync/internal/cost"
	"github.com/wayline/suppliersync/internal/governance"
	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories"
	"go.uber.org/zap"
)

const (
	defaultSupplierReason = "supplier_update"
	defaultPricingReason  = "pricing"
)

// Result summarizes one committed orchestration run
type Result struct {
	RunID           string                        `json:"run_id"`
	SupplierUpdates []models.SupplierUpdateRecord `json:"supplier_updates"`
	ApprovedPrices  []models.PriceEvent           `json:"approved_prices"`
	RejectedPrices  []governance.Rejection        `json:"rejected_prices"`
	CXActions       []models.CXAction             `json:"cx_actions"`
}

// Orchestrator coordinates the agents, the governance engine and the store
type Orchestrator struct {
	txm     repositories.TransactionManager
	catalog repositories.CatalogRepository
	pricing repositories.PricingRepository
	audit   repositories.AuditRepository
	agents  *agents.Runner
	engine  *governance.Engine
	rates   cost.Rates
	logger  *zap.Logger
}

// New creates an orchestrator
func New(
	txm repositories.TransactionManager,
	catalog repositories.CatalogRepository,
	pricing repositories.PricingRepository,
	audit repositories.AuditRepository,
	runner *agents.Runner,
	engine *governance.Engine,
	rates cost.Rates,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		txm:     txm,
		catalog: catalog,
		pricing: pricing,
		audit:   audit,
		agents:  runner,
		engine:  engine,
		rates:   rates,
		logger:  logger,
	}
}

// Run executes one cycle. Every write of the cycle happens inside one
// transaction: if any step fails, including an agent call, nothing is
// persisted and the error is returned.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	result := &Result{
		RunID:           runID,
		SupplierUpdates: []models.SupplierUpdateRecord{},
		ApprovedPrices:  []models.PriceEvent{},
		RejectedPrices:  []governance.Rejection{},
		CXActions:       []models.CXAction{},
	}

	o.logger.Info("orchestration run starting", zap.String("run_id", runID))

	err := o.txm.InTransaction(ctx, func(txCtx context.Context) error {
		products, err := o.catalog.ListActive(txCtx)
		if err != nil {
			return err
		}

		updates, err := o.runSupplierStep(txCtx, runID, products, result)
		if err != nil {
			return err
		}

		// The supplier step may have moved wholesale prices or categories,
		// so the buyer works from a fresh read.
		products, err = o.catalog.ListActive(txCtx)
		if err != nil {
			return err
		}

		if err := o.runBuyerStep(txCtx, runID, products, updates, result); err != nil {
			return err
		}

		products, err = o.catalog.ListActive(txCtx)
		if err != nil {
			return err
		}

		return o.runCXStep(txCtx, runID, products, result)
	})
	if err != nil {
		o.logger.Error("orchestration run failed",
			zap.String("run_id", runID),
			zap.Error(err))
		return nil, fmt.Errorf("orchestration run %s failed: %w", runID, err)
	}

	o.logger.Info("orchestration run committed",
		zap.String("run_id", runID),
		zap.Int("supplier_updates", len(result.SupplierUpdates)),
		zap.Int("approved_prices", len(result.ApprovedPrices)),
		zap.Int("rejected_prices", len(result.RejectedPrices)),
		zap.Int("cx_actions", len(result.CXActions)))
	return result, nil
}

// runSupplierStep records an audit row for every validated update and
// returns the updates so the buyer can see what the supplier changed. The
// catalog mutation itself is skipped for unknown SKUs and wrong-shaped
// values, but the audit trail keeps the row either way.
func (o *Orchestrator) runSupplierStep(ctx context.Context, runID string, products []models.Product, result *Result) ([]models.SupplierUpdate, error) {
	contextJSON, err := catalogContext(products)
	if err != nil {
		return nil, err
	}

	updates, telemetry, err := o.agents.ProposeSupplierUpdates(ctx, contextJSON)
	if err != nil {
		return nil, err
	}
	if err := o.recordTelemetry(ctx, runID, telemetry); err != nil {
		return nil, err
	}

	bySKU := make(map[string]models.Product, len(products))
	for _, p := range products {
		bySKU[p.SKU] = p
	}

	for _, u := range updates {
		var oldValue *string
		if product, known := bySKU[u.SKU]; known {
			old, applied, err := o.applySupplierUpdate(ctx, product, u)
			if err != nil {
				return nil, err
			}
			if applied {
				oldValue = &old
			} else {
				o.logger.Warn("supplier update value rejected, mutation skipped",
					zap.String("run_id", runID),
					zap.String("sku", u.SKU),
					zap.String("field", u.Field))
			}
		} else {
			o.logger.Warn("supplier update for unknown sku, mutation skipped",
				zap.String("run_id", runID),
				zap.String("sku", u.SKU))
		}

		reason := u.Reason
		if reason == "" {
			reason = defaultSupplierReason
		}
		record := models.SupplierUpdateRecord{
			SKU:      u.SKU,
			Field:    u.Field,
			OldValue: oldValue,
			NewValue: u.ValueText(),
			Reason:   reason,
			RunID:    runID,
		}
		if err := o.audit.InsertSupplierUpdate(ctx, &record); err != nil {
			return nil, err
		}
		result.SupplierUpdates = append(result.SupplierUpdates, record)
	}

	return updates, nil
}

// applySupplierUpdate mutates one product field. It returns the previous
// value as text and whether the update was applied; a value of the wrong
// shape for the field is skipped, not an error.
func (o *Orchestrator) applySupplierUpdate(ctx context.Context, product models.Product, u models.SupplierUpdate) (string, bool, error) {
	switch u.Field {
	case models.FieldWholesalePrice:
		price, ok := u.NumericValue()
		if !ok || price <= 0 {
			return "", false, nil
		}
		old := formatPrice(product.WholesalePrice)
		if err := o.catalog.UpdateWholesalePrice(ctx, u.SKU, price); err != nil {
			return "", false, err
		}
		return old, true, nil
	case models.FieldName:
		value, ok := u.StringValue()
		if !ok {
			return "", false, nil
		}
		if err := o.catalog.UpdateTextField(ctx, u.SKU, models.FieldName, value); err != nil {
			return "", false, err
		}
		return product.Name, true, nil
	case models.FieldCategory:
		value, ok := u.StringValue()
		if !ok {
			return "", false, nil
		}
		if err := o.catalog.UpdateTextField(ctx, u.SKU, models.FieldCategory, value); err != nil {
			return "", false, err
		}
		return product.Category, true, nil
	default:
		return "", false, nil
	}
}

func (o *Orchestrator) runBuyerStep(ctx context.Context, runID string, products []models.Product, updates []models.SupplierUpdate, result *Result) error {
	contextJSON, err := buyerContext(products, updates)
	if err != nil {
		return err
	}

	proposals, telemetry, err := o.agents.ProposePriceChanges(ctx, contextJSON)
	if err != nil {
		return err
	}
	if err := o.recordTelemetry(ctx, runID, telemetry); err != nil {
		return err
	}

	refs, err := o.buildReference(ctx, products)
	if err != nil {
		return err
	}

	approved, rejected := o.engine.Enforce(proposals, refs)

	for _, p := range approved {
		prev, found, err := o.catalog.GetRetailPrice(ctx, p.SKU)
		if err != nil {
			return err
		}
		event := models.PriceEvent{
			SKU:      p.SKU,
			NewPrice: p.NewPrice,
			Reason:   p.Reason,
			RunID:    runID,
		}
		if event.Reason == "" {
			event.Reason = defaultPricingReason
		}
		if found {
			prevCopy := prev
			event.PrevPrice = &prevCopy
		}

		if err := o.catalog.UpdateRetailPrice(ctx, p.SKU, p.NewPrice); err != nil {
			return err
		}
		if err := o.pricing.InsertPriceEvent(ctx, &event); err != nil {
			return err
		}
		result.ApprovedPrices = append(result.ApprovedPrices, event)
	}

	for _, rej := range rejected {
		record := models.RejectedPrice{
			SKU:           rej.Proposal.SKU,
			ProposedPrice: rej.Proposal.NewPrice,
			RejectReason:  string(rej.Reason),
			RejectDetails: rej.Details,
			RunID:         runID,
		}
		if current, ok := refs.CurrentPriceBySKU[rej.Proposal.SKU]; ok {
			currentCopy := current
			record.CurrentPrice = &currentCopy
		}
		if err := o.pricing.InsertRejectedPrice(ctx, &record); err != nil {
			return err
		}
		result.RejectedPrices = append(result.RejectedPrices, rej)
	}

	return nil
}

// buildReference assembles the lookup maps governance evaluates against.
// For the current price, event history wins over the catalog: the latest
// price event per SKU carries both the price and its date, while SKUs with
// no history fall back to the catalog price with no date, which skips the
// drift rule.
func (o *Orchestrator) buildReference(ctx context.Context, products []models.Product) (governance.Reference, error) {
	refs := governance.Reference{
		WholesaleBySKU:     make(map[string]float64, len(products)),
		CategoryBySKU:      make(map[string]string, len(products)),
		CurrentPriceBySKU:  make(map[string]float64, len(products)),
		LastPriceDateBySKU: make(map[string]time.Time),
		MAPPriceBySKU:      map[string]float64{},
	}

	skus := make([]string, 0, len(products))
	for _, p := range products {
		skus = append(skus, p.SKU)
		refs.WholesaleBySKU[p.SKU] = p.WholesalePrice
		refs.CategoryBySKU[p.SKU] = p.Category
		refs.CurrentPriceBySKU[p.SKU] = p.RetailPrice
	}

	latest, err := o.pricing.LatestPriceEvents(ctx, skus)
	if err != nil {
		return governance.Reference{}, err
	}
	for sku, event := range latest {
		refs.CurrentPriceBySKU[sku] = event.NewPrice
		refs.LastPriceDateBySKU[sku] = event.CreatedAt
	}

	return refs, nil
}

func (o *Orchestrator) runCXStep(ctx context.Context, runID string, products []models.Product, result *Result) error {
	contextJSON, err := catalogContext(products)
	if err != nil {
		return err
	}

	actions, telemetry, err := o.agents.ProposeCXActions(ctx, contextJSON)
	if err != nil {
		return err
	}
	if err := o.recordTelemetry(ctx, runID, telemetry); err != nil {
		return err
	}

	for _, action := range actions {
		details, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to encode cx action for %s: %w", action.SKU, err)
		}
		event := models.CXEvent{
			SKU:       action.SKU,
			EventType: models.CXEventTypeAgentAction,
			Action:    action.Action,
			Details:   string(details),
			RunID:     runID,
		}
		if err := o.audit.InsertCXEvent(ctx, &event); err != nil {
			return err
		}
		result.CXActions = append(result.CXActions, action)
	}

	return nil
}

// recordTelemetry prices the call and appends it to the agent log
func (o *Orchestrator) recordTelemetry(ctx context.Context, runID string, telemetry models.AgentTelemetry) error {
	telemetry.CostUSD = o.rates.Cost(telemetry.TokensIn, telemetry.TokensOut)
	return o.audit.InsertAgentLog(ctx, runID, telemetry)
}

// catalogContext is the agent prompt payload shared by the supplier and CX
// steps. The buyer additionally sees the supplier updates from this run.
func catalogContext(products []models.Product) (string, error) {
	payload := struct {
		Catalog []models.CatalogEntry `json:"catalog"`
	}{Catalog: models.CatalogView(products)}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog context: %w", err)
	}
	return string(data), nil
}

func buyerContext(products []models.Product, updates []models.SupplierUpdate) (string, error) {
	if updates == nil {
		updates = []models.SupplierUpdate{}
	}
	payload := struct {
		Catalog         []models.CatalogEntry   `json:"catalog"`
		SupplierUpdates []models.SupplierUpdate `json:"supplier_updates"`
	}{Catalog: models.CatalogView(products), SupplierUpdates: updates}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode pricing context: %w", err)
	}
	return string(data), nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
