package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/voyagen/tvdetection/internal/models"
	"github.com/voyagen/tvdetection/internal/store"
)

// Margins widen a recording window around the scheduled airing.
type Margins struct {
	Before time.Duration
	After  time.Duration
}

// ErrNegativeMargin is returned when a margin would shrink the window.
var ErrNegativeMargin = errors.New("recording margins must not be negative")

// BookRecording creates the pending recording for a schedule, padded by m.
// A second booking for the same schedule fails with a unique violation.
func BookRecording(ctx context.Context, s store.Store, scheduleID int64, m Margins) (*models.Recording, error) {
	if m.Before < 0 || m.After < 0 {
		return nil, ErrNegativeMargin
	}
	sch, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("GetSchedule: %w", err)
	}
	r := &models.Recording{
		ScheduleID: sch.ID,
		StartTime:  sch.StartTime.Add(-m.Before),
		EndTime:    sch.EndTime.Add(m.After),
	}
	if err := s.CreateRecording(ctx, r); err != nil {
		return nil, fmt.Errorf("CreateRecording: %w", err)
	}
	return r, nil
}

// StartRecording moves a pending recording to recording. filePath may be
// empty when the capture target is not known yet.
func StartRecording(ctx context.Context, s store.Store, id int64, filePath string) (*models.Recording, error) {
	return transition(ctx, s, id, models.RecordingTransition{
		Status:   models.RecordingStatusRecording,
		FilePath: optional(filePath),
	})
}

// CompleteRecording marks a running recording completed with its output file.
func CompleteRecording(ctx context.Context, s store.Store, id int64, filePath string) (*models.Recording, error) {
	return transition(ctx, s, id, models.RecordingTransition{
		Status:   models.RecordingStatusCompleted,
		FilePath: optional(filePath),
	})
}

// FailRecording marks a running recording failed. reason is required.
func FailRecording(ctx context.Context, s store.Store, id int64, reason string) (*models.Recording, error) {
	return transition(ctx, s, id, models.RecordingTransition{
		Status:       models.RecordingStatusFailed,
		ErrorMessage: reason,
	})
}

func transition(ctx context.Context, s store.Store, id int64, t models.RecordingTransition) (*models.Recording, error) {
	r, err := s.TransitionRecording(ctx, id, t)
	if err != nil {
		return nil, fmt.Errorf("TransitionRecording: %w", err)
	}
	return r, nil
}
