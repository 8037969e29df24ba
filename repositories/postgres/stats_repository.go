package postgres

import (
	"context"
	"fmt"

	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories"
	"go.uber.org/zap"
)

// StatsRepository implements repositories.StatsRepository
type StatsRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *DB, logger *zap.Logger) repositories.StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// Overview returns headline counts across the store
func (r *StatsRepository) Overview(ctx context.Context) (models.StatsOverview, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE is_active = true),
			(SELECT COUNT(*) FROM price_events),
			(SELECT COUNT(*) FROM rejected_prices),
			(SELECT COUNT(*) FROM cx_events)
	`

	executor := GetExecutor(ctx, r.db)
	var overview models.StatsOverview
	err := executor.QueryRowContext(ctx, query).Scan(
		&overview.ActiveSKUs,
		&overview.ApprovedPriceEvents,
		&overview.RejectedPrices,
		&overview.CXEvents,
	)
	if err != nil {
		return models.StatsOverview{}, fmt.Errorf("failed to query stats overview: %w", err)
	}

	return overview, nil
}

// AgentMetrics aggregates telemetry totals plus per-run breakdowns for the
// most recent runs
func (r *StatsRepository) AgentMetrics(ctx context.Context, runLimit int) (models.AgentMetrics, error) {
	executor := GetExecutor(ctx, r.db)

	totalsQuery := `
		SELECT
			COALESCE(SUM(cost_usd), 0),
			COALESCE(SUM(tokens_in + tokens_out), 0),
			COALESCE(AVG(latency_ms), 0)
		FROM agent_logs
	`

	metrics := models.AgentMetrics{Runs: []models.RunMetrics{}}
	err := executor.QueryRowContext(ctx, totalsQuery).Scan(
		&metrics.TotalCost,
		&metrics.TotalTokens,
		&metrics.AvgLatency,
	)
	if err != nil {
		return models.AgentMetrics{}, fmt.Errorf("failed to query agent metrics totals: %w", err)
	}

	runsQuery := `
		SELECT run_id,
			COALESCE(SUM(cost_usd), 0),
			COALESCE(SUM(tokens_in + tokens_out), 0),
			COALESCE(AVG(latency_ms), 0),
			COUNT(*)
		FROM agent_logs
		GROUP BY run_id
		ORDER BY MAX(created_at) DESC
		LIMIT $1
	`

	rows, err := executor.QueryContext(ctx, runsQuery, runLimit)
	if err != nil {
		return models.AgentMetrics{}, fmt.Errorf("failed to query per-run metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var run models.RunMetrics
		if err := rows.Scan(&run.RunID, &run.CostUSD, &run.TotalTokens,
			&run.AvgLatencyMs, &run.Calls); err != nil {
			return models.AgentMetrics{}, fmt.Errorf("failed to scan run metrics: %w", err)
		}
		metrics.Runs = append(metrics.Runs, run)
	}
	if err := rows.Err(); err != nil {
		return models.AgentMetrics{}, fmt.Errorf("failed to iterate run metrics: %w", err)
	}

	r.logger.Debug("agent metrics aggregated",
		zap.Float64("total_cost", metrics.TotalCost),
		zap.Int("runs", len(metrics.Runs)))
	return metrics, nil
}
