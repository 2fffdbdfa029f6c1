package store

import (
	"context"
	"errors"
	"time"

	"github.com/voyagen/tvdetection/internal/models"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store defines persistence for channels, programs, schedules, recordings and scans.
type Store interface {
	// CreateChannel inserts a channel. Status defaults to unknown.
	CreateChannel(ctx context.Context, ch *models.Channel) error
	GetChannel(ctx context.Context, id int64) (*models.Channel, error)
	GetChannelByName(ctx context.Context, name string) (*models.Channel, error)
	// UpdateChannel applies a partial update and returns the stored row.
	UpdateChannel(ctx context.Context, id int64, fields ChannelUpdate) (*models.Channel, error)
	// DeleteChannel fails with a foreign key violation while anything references the channel.
	DeleteChannel(ctx context.Context, id int64) error

	CreateProgram(ctx context.Context, p *models.Program) error
	GetProgram(ctx context.Context, id int64) (*models.Program, error)
	UpdateProgram(ctx context.Context, p *models.Program) error
	DeleteProgram(ctx context.Context, id int64) error

	// CreateSchedule rejects end_time <= start_time before touching the database.
	CreateSchedule(ctx context.Context, s *models.Schedule) error
	GetSchedule(ctx context.Context, id int64) (*models.Schedule, error)
	// ListSchedules returns airings on a channel that overlap [from, to), ordered by start time.
	ListSchedules(ctx context.Context, channelID int64, from, to time.Time) ([]models.Schedule, error)
	// UpdateSchedule rewrites a schedule and re-syncs the references of its pending recording.
	UpdateSchedule(ctx context.Context, s *models.Schedule) error
	DeleteSchedule(ctx context.Context, id int64) error

	// CreateRecording books a pending recording for r.ScheduleID. Channel and
	// program ids are copied from the schedule; a zero window takes the schedule's.
	CreateRecording(ctx context.Context, r *models.Recording) error
	GetRecording(ctx context.Context, id int64) (*models.Recording, error)
	GetRecordingBySchedule(ctx context.Context, scheduleID int64) (*models.Recording, error)
	// TransitionRecording moves a recording one step forward under a row lock.
	TransitionRecording(ctx context.Context, id int64, t models.RecordingTransition) (*models.Recording, error)

	// RecordScan appends a scan and sets the channel's status and last_tested atomically.
	RecordScan(ctx context.Context, scan *models.Scan, status models.ChannelStatus) error
	// ListScans returns the newest scans of a channel first.
	ListScans(ctx context.Context, channelID int64, limit int) ([]models.Scan, error)
}

// ChannelUpdate holds mutable fields of a channel.
// Pointer fields: nil = don't change, non-nil = set. For nullable text
// columns a pointer to "" clears the column. A nil TuningDetails is unchanged.
type ChannelUpdate struct {
	Name          *string
	Description   *string
	TuningType    *models.TuningType
	TuningDetails models.TuningDetails
	EPGSource     *string
	GroupCategory *string
	GeoBlocked    *bool
	VPNCountry    *string
	Status        *models.ChannelStatus
	LastTested    *time.Time
}

func (u ChannelUpdate) apply(ch *models.Channel) {
	if u.Name != nil {
		ch.Name = *u.Name
	}
	if u.Description != nil {
		ch.Description = nullable(*u.Description)
	}
	if u.TuningType != nil {
		ch.TuningType = *u.TuningType
	}
	if u.TuningDetails != nil {
		ch.TuningDetails = u.TuningDetails
	}
	if u.EPGSource != nil {
		ch.EPGSource = nullable(*u.EPGSource)
	}
	if u.GroupCategory != nil {
		ch.GroupCategory = nullable(*u.GroupCategory)
	}
	if u.GeoBlocked != nil {
		ch.GeoBlocked = *u.GeoBlocked
	}
	if u.VPNCountry != nil {
		ch.VPNCountry = nullable(*u.VPNCountry)
	}
	if u.Status != nil {
		ch.Status = *u.Status
	}
	if u.LastTested != nil {
		t := *u.LastTested
		ch.LastTested = &t
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
