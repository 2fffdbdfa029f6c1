package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Recording is a capture job tied to a schedule. ChannelID and ProgramID are
// copies of the schedule's references.
type Recording struct {
	ID           int64           `json:"id,omitempty"`
	ScheduleID   int64           `json:"schedule_id" validate:"required,gt=0"`
	ChannelID    int64           `json:"channel_id" validate:"required,gt=0"`
	ProgramID    int64           `json:"program_id" validate:"required,gt=0"`
	StartTime    time.Time       `json:"start_time" validate:"required"`
	EndTime      time.Time       `json:"end_time" validate:"required,gtfield=StartTime"`
	FilePath     *string         `json:"file_path,omitempty" validate:"omitempty,max=512"`
	Status       RecordingStatus `json:"status" validate:"required,oneof=pending recording completed failed"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// ErrInvalidTransition is wrapped by every *TransitionError.
var ErrInvalidTransition = errors.New("invalid recording status transition")

// TransitionError reports a rejected status change.
type TransitionError struct {
	From RecordingStatus
	To   RecordingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("recording status %s -> %s is not allowed", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

var recordingTransitions = map[RecordingStatus][]RecordingStatus{
	RecordingStatusPending:   {RecordingStatusRecording},
	RecordingStatusRecording: {RecordingStatusCompleted, RecordingStatusFailed},
}

// CanTransition reports whether a recording may move from one status to the next.
func CanTransition(from, to RecordingStatus) bool {
	for _, next := range recordingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a *TransitionError when from -> to is not allowed.
func ValidateTransition(from, to RecordingStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// RecordingTransition describes one forward step of a recording.
type RecordingTransition struct {
	Status RecordingStatus
	// FilePath is recorded when non-nil. A completed recording must have one.
	FilePath *string
	// ErrorMessage is required for, and only accepted with, RecordingStatusFailed.
	ErrorMessage string
	// At stamps completed_at on terminal states. Zero means now.
	At time.Time
}

// Apply moves r to t.Status, filling the dependent columns. r is left
// untouched when the transition or the resulting row is invalid.
func (r *Recording) Apply(t RecordingTransition) error {
	if err := ValidateTransition(r.Status, t.Status); err != nil {
		return err
	}

	at := t.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	next := *r
	next.Status = t.Status
	if t.FilePath != nil {
		p := *t.FilePath
		next.FilePath = &p
	}

	msg := strings.TrimSpace(t.ErrorMessage)
	switch t.Status {
	case RecordingStatusFailed:
		if msg == "" {
			return NewValidationError("recording", FieldError{Field: "error_message", Message: "is required when failed"})
		}
		next.ErrorMessage = &msg
		next.CompletedAt = &at
	case RecordingStatusCompleted:
		if next.FilePath == nil || *next.FilePath == "" {
			return NewValidationError("recording", FieldError{Field: "file_path", Message: "is required when completed"})
		}
		next.CompletedAt = &at
	}
	if msg != "" && t.Status != RecordingStatusFailed {
		return NewValidationError("recording", FieldError{Field: "error_message", Message: "is only allowed when failed"})
	}

	if err := Validate(&next); err != nil {
		return err
	}
	*r = next
	return nil
}
