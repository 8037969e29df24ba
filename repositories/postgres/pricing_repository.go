package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/wayline/suppliersync/models"
	"github.com/wayline/suppliersync/repositories"
	"go.uber.org/zap"
)

// PricingRepository implements repositories.PricingRepository
type PricingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPricingRepository creates a new pricing repository
func NewPricingRepository(db *DB, logger *zap.Logger) repositories.PricingRepository {
	return &PricingRepository{
		db:     db,
		logger: logger,
	}
}

// LatestPriceEvents returns, per SKU, the approved price event with the
// highest id. SKUs with no event history are absent from the map.
func (r *PricingRepository) LatestPriceEvents(ctx context.Context, skus []string) (map[string]models.PriceEvent, error) {
	latest := make(map[string]models.PriceEvent)
	if len(skus) == 0 {
		return latest, nil
	}

	placeholders := make([]string, len(skus))
	args := make([]interface{}, len(skus))
	for i, sku := range skus {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = sku
	}

	query := fmt.Sprintf(`
		SELECT pe1.id, pe1.sku, pe1.prev_price, pe1.new_price, pe1.reason, pe1.run_id, pe1.created_at
		FROM price_events pe1
		WHERE pe1.sku IN (%s)
		  AND pe1.id = (SELECT MAX(pe2.id) FROM price_events pe2 WHERE pe2.sku = pe1.sku)
	`, strings.Join(placeholders, ", "))

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest price events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.PriceEvent
		if err := rows.Scan(&e.ID, &e.SKU, &e.PrevPrice, &e.NewPrice,
			&e.Reason, &e.RunID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price event: %w", err)
		}
		latest[e.SKU] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price events: %w", err)
	}

	return latest, nil
}

// InsertPriceEvent records an approved price change
func (r *PricingRepository) InsertPriceEvent(ctx context.Context, event *models.PriceEvent) error {
	query := `
		INSERT INTO price_events (sku, prev_price, new_price, reason, run_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		event.SKU, event.PrevPrice, event.NewPrice, event.Reason, event.RunID,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert price event for %s: %w", event.SKU, err)
	}

	r.logger.Debug("price event recorded",
		zap.String("sku", event.SKU),
		zap.Float64("new_price", event.NewPrice),
		zap.String("run_id", event.RunID))
	return nil
}

// InsertRejectedPrice records a proposal rejected by governance
func (r *PricingRepository) InsertRejectedPrice(ctx context.Context, rejected *models.RejectedPrice) error {
	query := `
		INSERT INTO rejected_prices (sku, proposed_price, current_price, reject_reason, reject_details, run_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	executor := GetExecutor(ctx, r.db)
	err := executor.QueryRowContext(ctx, query,
		rejected.SKU, rejected.ProposedPrice, rejected.CurrentPrice,
		rejected.RejectReason, rejected.RejectDetails, rejected.RunID,
	).Scan(&rejected.ID, &rejected.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rejected price for %s: %w", rejected.SKU, err)
	}

	r.logger.Debug("rejected price recorded",
		zap.String("sku", rejected.SKU),
		zap.String("reason", rejected.RejectReason),
		zap.String("run_id", rejected.RunID))
	return nil
}

// ListPriceEvents returns the most recent approved price events
func (r *PricingRepository) ListPriceEvents(ctx context.Context, limit int) ([]models.PriceEvent, error) {
	query := `
		SELECT id, sku, prev_price, new_price, reason, run_id, created_at
		FROM price_events
		ORDER BY id DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list price events: %w", err)
	}
	defer rows.Close()

	var events []models.PriceEvent
	for rows.Next() {
		var e models.PriceEvent
		if err := rows.Scan(&e.ID, &e.SKU, &e.PrevPrice, &e.NewPrice,
			&e.Reason, &e.RunID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price events: %w", err)
	}

	return events, nil
}

// ListRejectedPrices returns the most recent rejected proposals
func (r *PricingRepository) ListRejectedPrices(ctx context.Context, limit int) ([]models.RejectedPrice, error) {
	query := `
		SELECT id, sku, proposed_price, current_price, reject_reason, reject_details, run_id, created_at
		FROM rejected_prices
		ORDER BY id DESC
		LIMIT $1
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rejected prices: %w", err)
	}
	defer rows.Close()

	var rejected []models.RejectedPrice
	for rows.Next() {
		var rp models.RejectedPrice
		if err := rows.Scan(&rp.ID, &rp.SKU, &rp.ProposedPrice, &rp.CurrentPrice,
			&rp.RejectReason, &rp.RejectDetails, &rp.RunID, &rp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rejected price: %w", err)
		}
		rejected = append(rejected, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rejected prices: %w", err)
	}

	return rejected, nil
}
