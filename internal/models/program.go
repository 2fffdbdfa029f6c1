package models

import "time"

// Program is a piece of content with editorial metadata. The same program
// can air many times on many channels.
type Program struct {
	ID              int64      `json:"id,omitempty"`
	Title           string     `json:"title" validate:"required,max=255"`
	Description     *string    `json:"description,omitempty"`
	EpisodeTitle    *string    `json:"episode_title,omitempty" validate:"omitempty,max=255"`
	SeasonNumber    *int       `json:"season_number,omitempty" validate:"omitempty,min=0"`
	EpisodeNumber   *int       `json:"episode_number,omitempty" validate:"omitempty,min=0"`
	Genre           *string    `json:"genre,omitempty" validate:"omitempty,max=100"`
	Subcategory     *string    `json:"subcategory,omitempty" validate:"omitempty,max=100"`
	Rating          *string    `json:"rating,omitempty" validate:"omitempty,max=50"`
	OriginalAirDate *time.Time `json:"original_air_date,omitempty"`
	Actors          []string   `json:"actors,omitempty"`
	Directors       []string   `json:"directors,omitempty"`
	Writers         []string   `json:"writers,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty" validate:"omitempty,max=512"`
	Source          *string    `json:"source,omitempty" validate:"omitempty,max=100"`
	CreatedAt       time.Time  `json:"created_at"`
}
