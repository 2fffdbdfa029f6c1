package store

import (
	"context"
	"fmt"
	"time"

	"github.com/voyagen/tvdetection/internal/models"
)

const defaultScanLimit = 50

// RecordScan appends scan and sets the channel's status and last_tested to the
// scan's outcome in one transaction.
func (p *Postgres) RecordScan(ctx context.Context, scan *models.Scan, status models.ChannelStatus) error {
	if err := models.Validate(scan); err != nil {
		return err
	}
	if !status.Valid() {
		return models.NewValidationError("channel", models.FieldError{Field: "status", Message: "must be one of unknown working broken geo_blocked"})
	}
	if scan.TestedAt.IsZero() {
		scan.TestedAt = time.Now().UTC()
	}
	op := fmt.Sprintf("RecordScan channel %d", scan.ChannelID)
	return p.withTx(ctx, func(q querier) error {
		err := q.QueryRow(ctx,
			`INSERT INTO scans (channel_id, tested_at, success, details, vpn_used)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			scan.ChannelID, scan.TestedAt, scan.Success, scan.Details, scan.VPNUsed,
		).Scan(&scan.ID)
		if err != nil {
			return dbErr(op, err)
		}
		tag, err := q.Exec(ctx,
			`UPDATE channels SET status = $2, last_tested = $3 WHERE id = $1`,
			scan.ChannelID, string(status), scan.TestedAt,
		)
		if err != nil {
			return dbErr(op, err)
		}
		return mustAffect(op, tag)
	})
}

// ListScans returns up to limit scans of a channel, newest first.
// A non-positive limit uses the default.
func (p *Postgres) ListScans(ctx context.Context, channelID int64, limit int) ([]models.Scan, error) {
	if limit <= 0 {
		limit = defaultScanLimit
	}
	rows, err := p.db.Query(ctx,
		`SELECT id, channel_id, tested_at, success, details, vpn_used FROM scans
		 WHERE channel_id = $1
		 ORDER BY tested_at DESC, id DESC
		 LIMIT $2`,
		channelID, limit,
	)
	if err != nil {
		return nil, dbErr("ListScans", err)
	}
	defer rows.Close()

	var out []models.Scan
	for rows.Next() {
		var s models.Scan
		if err := rows.Scan(&s.ID, &s.ChannelID, &s.TestedAt, &s.Success, &s.Details, &s.VPNUsed); err != nil {
			return nil, dbErr("ListScans scan", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, dbErr("ListScans", err)
	}
	return out, nil
}
