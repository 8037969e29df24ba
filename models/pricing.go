package models

import "time"

// PriceChangeProposal is a retail price change proposed by the buyer agent.
// Ephemeral: it only becomes durable as a PriceEvent (approved) or a
// RejectedPrice (rejected by governance).
type PriceChangeProposal struct {
	SKU      string  `json:"sku" validate:"required"`
	NewPrice float64 `json:"new_price" validate:"required,gt=0"`
	Reason   string  `json:"reason,omitempty"`
}

// PriceEvent is the append-only record of an applied price change
type PriceEvent struct {
	ID        int64    `json:"id" db:"id"`
	SKU       string   `json:"sku" db:"sku"`
	PrevPrice *float64 `json:"prev_price,omitempty" db:"prev_price"`
	NewPrice  float64  `json:"new_price" db:"new_price"`
	Reason    string   `json:"reason" db:"reason"`
	RunID     string   `json:"run_id" db:"run_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the PriceEvent model
func (PriceEvent) TableName() string {
	return "price_events"
}

// RejectedPrice is the append-only record of a governance rejection.
// CurrentPrice is nil when no authoritative price was known at rejection time.
type RejectedPrice struct {
	ID            int64    `json:"id" db:"id"`
	SKU           string   `json:"sku" db:"sku"`
	ProposedPrice float64  `json:"proposed_price" db:"proposed_price"`
	CurrentPrice  *float64 `json:"current_price,omitempty" db:"current_price"`
	RejectReason  string   `json:"reject_reason" db:"reject_reason"`
	RejectDetails string   `json:"reject_details" db:"reject_details"`
	RunID         string   `json:"run_id" db:"run_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the RejectedPrice model
func (RejectedPrice) TableName() string {
	return "rejected_prices"
}
