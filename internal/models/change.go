package models

import "time"

// PropertyChange represents a detected change of a listing
type PropertyChange struct {
	ID              int64     `json:"id"`
	PropertyID      int64     `json:"property_id"`
	ChangeType      string    `json:"change_type"` // price_change, status_change, new_listing
	OldValue        string    `json:"old_value,omitempty"`
	NewValue        string    `json:"new_value,omitempty"`
	ChangeMagnitude *float64  `json:"change_magnitude,omitempty"` // For price changes
	DetectedAt      time.Time `json:"detected_at"`
}

// ChangeType constants
const (
	ChangeTypePrice  = "price_change"
	ChangeTypeStatus = "status_change"
	ChangeTypeNew    = "new_listing"
)
