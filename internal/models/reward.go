package models

import "time"

// RewardAdjustment is an append-only audit record of an APR change
type RewardAdjustment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	OldAPR     float64   `json:"old_apr"`
	NewAPR     float64   `json:"new_apr"`
	AdjustedOn time.Time `json:"adjusted_on"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
