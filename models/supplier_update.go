package models

import (
	"fmt"
	"strconv"
	"time"
)

// Mutable product fields a supplier update may target
const (
	FieldWholesalePrice = "wholesale_price"
	FieldName           = "name"
	FieldCategory       = "category"
)

// SupplierUpdate is a catalog change proposed by the supplier agent.
// NewValue is a JSON number for wholesale_price and a JSON string for
// name/category; the adapter drops records that do not match.
type SupplierUpdate struct {
	SKU      string      `json:"sku" validate:"required"`
	Field    string      `json:"field" validate:"required,oneof=wholesale_price name category"`
	NewValue interface{} `json:"new_value" validate:"required"`
	Reason   string      `json:"reason,omitempty"`
}

// NumericValue returns NewValue as a float64. Numeric strings are accepted
// because suppliers routinely quote prices as text.
func (u SupplierUpdate) NumericValue() (float64, bool) {
	switch v := u.NewValue.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// StringValue returns NewValue as a non-empty string.
func (u SupplierUpdate) StringValue() (string, bool) {
	s, ok := u.NewValue.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// ValueText renders NewValue for the audit log's text column.
func (u SupplierUpdate) ValueText() string {
	switch v := u.NewValue.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// SupplierUpdateRecord is the durable audit row for a validated supplier
// update. OldValue is nil when the catalog mutation was skipped.
type SupplierUpdateRecord struct {
	ID        int64     `json:"id" db:"id"`
	SKU       string    `json:"sku" db:"sku"`
	Field     string    `json:"field" db:"field"`
	OldValue  *string   `json:"old_value,omitempty" db:"old_value"`
	NewValue  string    `json:"new_value" db:"new_value"`
	Reason    string    `json:"reason" db:"reason"`
	RunID     string    `json:"run_id" db:"run_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the SupplierUpdateRecord model
func (SupplierUpdateRecord) TableName() string {
	return "supplier_updates"
}
