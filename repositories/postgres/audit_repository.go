package postgres

import (
	"context"
	"fmt"

	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements repositories.AuditRepository
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// InsertSupplierUpdate records an applied supplier feed update
func (r *AuditRepository) InsertSupplierUpdate(ctx context.Context, update *models.SupplierUpdateRecord) error {
	query := `
		INSERT INTO supplier_updates (sku, field, old_value, new_value, reason, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		update.SKU, update.Field, update.OldValue, update.NewValue,
		update.Reason, update.RunID,
	).Scan(&update.ID, &update.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert supplier update for %s: %w", update.SKU, err)
	}

	r.logger.Debug("supplier update recorded",
		zap.String("sku", update.SKU),
		zap.String("field", update.Field),
		zap.String("run_id", update.RunID))
	return nil
}

// InsertCXEvent records a customer experience action
func (r *AuditRepository) InsertCXEvent(ctx context.Context, event *models.CXEvent) error {
	query := `
		INSERT INTO cx_events (sku, event_type, action, details, run_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		event.SKU, event.EventType, event.Action, event.Details, event.RunID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cx event for %s: %w", event.SKU, err)
	}

	r.logger.Debug("cx event recorded",
		zap.String("sku", event.SKU),
		zap.String("action", event.Action),
		zap.String("run_id", event.RunID))
	return nil
}

// InsertAgentLog records one agent call's telemetry
func (r *AuditRepository) InsertAgentLog(ctx context.Context, runID string, telemetry models.AgentTelemetry) error {
	query := `
		INSERT INTO agent_logs (run_id, agent, step, prompt, response, tokens_in, tokens_out, latency_ms, cost_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query,
		runID, telemetry.Agent, telemetry.Step,
		telemetry.Prompt, telemetry.Response,
		telemetry.TokensIn, telemetry.TokensOut,
		telemetry.LatencyMs, telemetry.CostUSD); err != nil {
		return fmt.Errorf("failed to insert agent log for %s/%s: %w", telemetry.Agent, telemetry.Step, err)
	}

	r.logger.Debug("agent log recorded",
		zap.String("run_id", runID),
		zap.String("agent", telemetry.Agent),
		zap.Int("tokens_in", telemetry.TokensIn),
		zap.Int("tokens_out", telemetry.TokensOut))
	return nil
}

// ListCXEvents returns the most recent customer experience events
func (r *AuditRepository) ListCXEvents(ctx context.Context, limit int) ([]models.CXEvent, error) {
	query := `
		SELECT id, sku, event_type, action, details, run_id, created_at
		FROM cx_events
		ORDER BY id DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cx events: %w", err)
	}
	defer rows.Close()

	var events []models.CXEvent
	for rows.Next() {
		var e models.CXEvent
		if err := rows.Scan(&e.ID, &e.SKU, &e.EventType, &e.Action,
			&e.Details, &e.RunID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cx event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cx events: %w", err)
	}

	return events, nil
}
