// Package agents wraps the non-deterministic completion calls behind strict
// output validation. Each adapter serializes its context, invokes the
// completion client, and parses the response into typed records, dropping
// anything malformed. Malformed model output never fails a run; only a
// failure of the underlying call propagates, and callers treat that as fatal
// to the cycle.
package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/wayline/suppliersync/internal/llm"
	"github.com/wayline/suppliersync/models"
	"go.uber.org/zap"
)

// Agent names and steps recorded in telemetry
const (
	agentSupplier = "supplier"
	agentBuyer    = "buyer"
	agentCX       = "cx"

	stepProposeUpdates      = "propose_updates"
	stepProposePriceChanges = "propose_price_changes"
	stepProposeActions      = "propose_actions"
)

// Runner invokes the three proposal agents
type Runner struct {
	client   llm.Client
	validate *validator.Validate
	logger   *zap.Logger
}

// NewRunner creates a Runner around a completion client
func NewRunner(client llm.Client, logger *zap.Logger) *Runner {
	return &Runner{
		client:   client,
		validate: validator.New(),
		logger:   logger,
	}
}

// ProposeSupplierUpdates asks the supplier agent for catalog updates.
// Records that fail schema validation, or whose new_value does not match the
// targeted field's type, are dropped.
func (r *Runner) ProposeSupplierUpdates(ctx context.Context, contextJSON string) ([]models.SupplierUpdate, models.AgentTelemetry, error) {
	system := "You propose supplier updates as JSON."
	user := fmt.Sprintf("%s\nCONTEXT:\n%s", supplierPrompt, contextJSON)

	completion, err := r.client.ChatJSON(ctx, system, user)
	if err != nil {
		return nil, models.AgentTelemetry{}, fmt.Errorf("supplier agent call failed: %w", err)
	}

	items := []models.SupplierUpdate{}
	for _, raw := range decodeItems(completion.Text, "updates") {
		var update models.SupplierUpdate
		if err := json.Unmarshal(raw, &update); err != nil {
			r.logger.Debug("dropping unparseable supplier update", zap.Error(err))
			continue
		}
		if err := r.validate.Struct(update); err != nil {
			r.logger.Debug("dropping invalid supplier update",
				zap.String("sku", update.SKU), zap.Error(err))
			continue
		}
		if !valueMatchesField(update) {
			r.logger.Debug("dropping supplier update with mismatched value type",
				zap.String("sku", update.SKU), zap.String("field", update.Field))
			continue
		}
		items = append(items, update)
	}

	return items, telemetry(agentSupplier, stepProposeUpdates, user, completion), nil
}

// ProposePriceChanges asks the buyer agent for retail price changes
func (r *Runner) ProposePriceChanges(ctx context.Context, contextJSON string) ([]models.PriceChangeProposal, models.AgentTelemetry, error) {
	system := "You output JSON list of price changes."
	user := fmt.Sprintf("%s\nCONTEXT:\n%s", buyerPrompt, contextJSON)

	completion, err := r.client.ChatJSON(ctx, system, user)
	if err != nil {
		return nil, models.AgentTelemetry{}, fmt.Errorf("buyer agent call failed: %w", err)
	}

	items := []models.PriceChangeProposal{}
	for _, raw := range decodeItems(completion.Text, "prices") {
		var proposal models.PriceChangeProposal
		if err := json.Unmarshal(raw, &proposal); err != nil {
			r.logger.Debug("dropping unparseable price change", zap.Error(err))
			continue
		}
		if err := r.validate.Struct(proposal); err != nil {
			r.logger.Debug("dropping invalid price change",
				zap.String("sku", proposal.SKU), zap.Error(err))
			continue
		}
		items = append(items, proposal)
	}

	return items, telemetry(agentBuyer, stepProposePriceChanges, user, completion), nil
}

// ProposeCXActions asks the CX agent for customer-experience actions
func (r *Runner) ProposeCXActions(ctx context.Context, contextJSON string) ([]models.CXAction, models.AgentTelemetry, error) {
	system := "You output JSON list of CX actions."
	user := fmt.Sprintf("%s\nCONTEXT:\n%s", cxPrompt, contextJSON)

	completion, err := r.client.ChatJSON(ctx, system, user)
	if err != nil {
		return nil, models.AgentTelemetry{}, fmt.Errorf("cx agent call failed: %w", err)
	}

	items := []models.CXAction{}
	for _, raw := range decodeItems(completion.Text, "actions") {
		var action models.CXAction
		if err := json.Unmarshal(raw, &action); err != nil {
			r.logger.Debug("dropping unparseable cx action", zap.Error(err))
			continue
		}
		if err := r.validate.Struct(action); err != nil {
			r.logger.Debug("dropping invalid cx action",
				zap.String("sku", action.SKU), zap.Error(err))
			continue
		}
		items = append(items, action)
	}

	return items, telemetry(agentCX, stepProposeActions, user, completion), nil
}

// decodeItems extracts the record list from a model response: an object with
// the named key, or a bare array. Anything else yields no items.
func decodeItems(text, key string) []json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		if rawList, ok := obj[key]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(rawList, &items); err == nil {
				return items
			}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items
	}
	return nil
}

// valueMatchesField checks that a supplier update's new_value suits the
// targeted field: numeric for wholesale_price, non-empty string otherwise.
func valueMatchesField(u models.SupplierUpdate) bool {
	if u.Field == models.FieldWholesalePrice {
		v, ok := u.NumericValue()
		return ok && v >= 0
	}
	_, ok := u.StringValue()
	return ok
}

// telemetry builds the per-call record. Cost stays zero here; it is priced
// from token counts when the orchestrator persists the record.
func telemetry(agent, step, prompt string, completion *llm.Completion) models.AgentTelemetry {
	return models.AgentTelemetry{
		Agent:     agent,
		Step:      step,
		Prompt:    prompt,
		Response:  completion.Text,
		TokensIn:  completion.Usage.PromptTokens,
		TokensOut: completion.Usage.CompletionTokens,
		LatencyMs: completion.LatencyMs,
		CostUSD:   0,
	}
}
