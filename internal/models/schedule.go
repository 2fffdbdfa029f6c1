package models

import "time"

// Schedule is one airing of a program on a channel.
// EndTime must be strictly after StartTime; the database does not check it.
type Schedule struct {
	ID        int64     `json:"id,omitempty"`
	ChannelID int64     `json:"channel_id" validate:"required,gt=0"`
	ProgramID int64     `json:"program_id" validate:"required,gt=0"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Source    *string   `json:"source,omitempty" validate:"omitempty,max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// Duration returns the length of the airing.
func (s *Schedule) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}
