package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voyagen/tvdetection/internal/models"
)

const recordingColumns = `id, schedule_id, channel_id, program_id, start_time, end_time,
	file_path, status, error_message, created_at, completed_at`

func scanRecording(row pgx.Row) (*models.Recording, error) {
	var r models.Recording
	err := row.Scan(
		&r.ID, &r.ScheduleID, &r.ChannelID, &r.ProgramID, &r.StartTime, &r.EndTime,
		&r.FilePath, &r.Status, &r.ErrorMessage, &r.CreatedAt, &r.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecording books a pending recording for r.ScheduleID. The schedule row
// is share-locked so its references cannot change underneath the insert.
func (p *Postgres) CreateRecording(ctx context.Context, r *models.Recording) error {
	op := fmt.Sprintf("CreateRecording schedule %d", r.ScheduleID)
	return p.withTx(ctx, func(q querier) error {
		sch, err := scanSchedule(q.QueryRow(ctx,
			`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1 FOR SHARE`, r.ScheduleID))
		if err != nil {
			return dbErr(op, err)
		}
		r.ChannelID = sch.ChannelID
		r.ProgramID = sch.ProgramID
		if r.StartTime.IsZero() {
			r.StartTime = sch.StartTime
		}
		if r.EndTime.IsZero() {
			r.EndTime = sch.EndTime
		}
		r.Status = models.RecordingStatusPending
		r.ErrorMessage = nil
		r.CompletedAt = nil
		if err := models.Validate(r); err != nil {
			return err
		}
		err = q.QueryRow(ctx,
			`INSERT INTO recordings (schedule_id, channel_id, program_id, start_time, end_time, file_path, status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			r.ScheduleID, r.ChannelID, r.ProgramID, r.StartTime, r.EndTime, r.FilePath, string(r.Status),
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return dbErr(op, err)
		}
		return nil
	})
}

// GetRecording returns a single recording by id.
func (p *Postgres) GetRecording(ctx context.Context, id int64) (*models.Recording, error) {
	r, err := scanRecording(p.db.QueryRow(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE id = $1`, id))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetRecording %d", id), err)
	}
	return r, nil
}

// GetRecordingBySchedule returns the recording booked for a schedule.
func (p *Postgres) GetRecordingBySchedule(ctx context.Context, scheduleID int64) (*models.Recording, error) {
	r, err := scanRecording(p.db.QueryRow(ctx,
		`SELECT `+recordingColumns+` FROM recordings WHERE schedule_id = $1`, scheduleID))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetRecordingBySchedule %d", scheduleID), err)
	}
	return r, nil
}

// TransitionRecording locks the recording, checks the move and writes the new
// status with its file path, error message and completion time.
func (p *Postgres) TransitionRecording(ctx context.Context, id int64, t models.RecordingTransition) (*models.Recording, error) {
	op := fmt.Sprintf("TransitionRecording %d", id)
	var out *models.Recording
	err := p.withTx(ctx, func(q querier) error {
		r, err := scanRecording(q.QueryRow(ctx,
			`SELECT `+recordingColumns+` FROM recordings WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return dbErr(op, err)
		}
		if err := r.Apply(t); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		_, err = q.Exec(ctx,
			`UPDATE recordings SET status = $2, file_path = $3, error_message = $4, completed_at = $5
			 WHERE id = $1`,
			id, string(r.Status), r.FilePath, r.ErrorMessage, r.CompletedAt,
		)
		if err != nil {
			return dbErr(op, err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
