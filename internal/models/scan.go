package models

import "time"

// Scan is an append-only log entry of one channel health check.
type Scan struct {
	ID        int64     `json:"id,omitempty"`
	ChannelID int64     `json:"channel_id" validate:"required,gt=0"`
	TestedAt  time.Time `json:"tested_at"`
	Success   bool      `json:"success"`
	Details   *string   `json:"details,omitempty"`
	VPNUsed   *string   `json:"vpn_used,omitempty" validate:"omitempty,max=50"`
}
