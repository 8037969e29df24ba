package models

import "time"

// CXEventTypeAgentAction marks CX events recorded from agent proposals
const CXEventTypeAgentAction = "agent_action"

// CXAction is a customer-experience improvement proposed by the CX agent
type CXAction struct {
	SKU     string `json:"sku" validate:"required"`
	Action  string `json:"action" validate:"required"`
	Details string `json:"details" validate:"required"`
}

// CXEvent is the append-only record of a CX action
type CXEvent struct {
	ID        int64     `json:"id" db:"id"`
	SKU       string    `json:"sku" db:"sku"`
	EventType string    `json:"event_type" db:"event_type"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	RunID     string    `json:"run_id" db:"run_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the CXEvent model
func (CXEvent) TableName() string {
	return "cx_events"
}
