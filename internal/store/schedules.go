package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/voyagen/tvdetection/internal/models"
)

const scheduleColumns = `id, channel_id, program_id, start_time, end_time, source, created_at`

func scanSchedule(row pgx.Row) (*models.Schedule, error) {
	var s models.Schedule
	if err := row.Scan(&s.ID, &s.ChannelID, &s.ProgramID, &s.StartTime, &s.EndTime, &s.Source, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSchedule validates and inserts s. The database has no CHECK on the
// time window, so an inverted or empty window never reaches SQL.
func (p *Postgres) CreateSchedule(ctx context.Context, s *models.Schedule) error {
	if err := models.Validate(s); err != nil {
		return err
	}
	err := p.db.QueryRow(ctx,
		`INSERT INTO schedules (channel_id, program_id, start_time, end_time, source)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		s.ChannelID, s.ProgramID, s.StartTime, s.EndTime, s.Source,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return dbErr("CreateSchedule", err)
	}
	return nil
}

// GetSchedule returns a single schedule by id.
func (p *Postgres) GetSchedule(ctx context.Context, id int64) (*models.Schedule, error) {
	s, err := scanSchedule(p.db.QueryRow(ctx,
		`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`, id))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetSchedule %d", id), err)
	}
	return s, nil
}

// ListSchedules returns airings on channelID overlapping [from, to).
func (p *Postgres) ListSchedules(ctx context.Context, channelID int64, from, to time.Time) ([]models.Schedule, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE channel_id = $1 AND start_time < $3 AND end_time > $2
		 ORDER BY start_time`,
		channelID, from, to,
	)
	if err != nil {
		return nil, dbErr("ListSchedules", err)
	}
	defer rows.Close()

	var out []models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, dbErr("ListSchedules scan", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("ListSchedules", err)
	}
	return out, nil
}

// UpdateSchedule rewrites s. A recording that has not started yet follows the
// schedule's channel and program; later recordings keep what they captured.
func (p *Postgres) UpdateSchedule(ctx context.Context, s *models.Schedule) error {
	if err := models.Validate(s); err != nil {
		return err
	}
	op := fmt.Sprintf("UpdateSchedule %d", s.ID)
	return p.withTx(ctx, func(q querier) error {
		tag, err := q.Exec(ctx,
			`UPDATE schedules SET channel_id = $2, program_id = $3, start_time = $4, end_time = $5, source = $6
			 WHERE id = $1`,
			s.ID, s.ChannelID, s.ProgramID, s.StartTime, s.EndTime, s.Source,
		)
		if err != nil {
			return dbErr(op, err)
		}
		if err := mustAffect(op, tag); err != nil {
			return err
		}
		_, err = q.Exec(ctx,
			`UPDATE recordings SET channel_id = $2, program_id = $3
			 WHERE schedule_id = $1 AND status = 'pending'`,
			s.ID, s.ChannelID, s.ProgramID,
		)
		if err != nil {
			return dbErr(op+" resync recording", err)
		}
		return nil
	})
}

// DeleteSchedule deletes a schedule. A recording restricts it.
func (p *Postgres) DeleteSchedule(ctx context.Context, id int64) error {
	op := fmt.Sprintf("DeleteSchedule %d", id)
	tag, err := p.db.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return dbErr(op, err)
	}
	return mustAffect(op, tag)
}
