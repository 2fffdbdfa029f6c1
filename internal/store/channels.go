package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voyagen/tvdetection/internal/models"
)

const channelColumns = `id, name, description, tuning_type, tuning_details, epg_source,
	group_category, geo_blocked, vpn_country, last_tested, status, created_at, updated_at`

func scanChannel(row pgx.Row) (*models.Channel, error) {
	var ch models.Channel
	err := row.Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.TuningType, &ch.TuningDetails, &ch.EPGSource,
		&ch.GroupCategory, &ch.GeoBlocked, &ch.VPNCountry, &ch.LastTested, &ch.Status,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// CreateChannel validates and inserts ch, filling in its id and timestamps.
func (p *Postgres) CreateChannel(ctx context.Context, ch *models.Channel) error {
	if ch.Status == "" {
		ch.Status = models.ChannelStatusUnknown
	}
	if err := models.Validate(ch); err != nil {
		return err
	}
	err := p.db.QueryRow(ctx,
		`INSERT INTO channels (name, description, tuning_type, tuning_details, epg_source,
		   group_category, geo_blocked, vpn_country, last_tested, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		ch.Name, ch.Description, string(ch.TuningType), ch.TuningDetails, ch.EPGSource,
		ch.GroupCategory, ch.GeoBlocked, ch.VPNCountry, ch.LastTested, string(ch.Status),
	).Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return dbErr("CreateChannel", err)
	}
	return nil
}

// GetChannel returns a single channel by id.
func (p *Postgres) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	ch, err := scanChannel(p.db.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetChannel %d", id), err)
	}
	return ch, nil
}

// GetChannelByName returns a single channel by its unique name.
func (p *Postgres) GetChannelByName(ctx context.Context, name string) (*models.Channel, error) {
	ch, err := scanChannel(p.db.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE name = $1`, name))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetChannelByName %q", name), err)
	}
	return ch, nil
}

// UpdateChannel locks the row, applies fields, revalidates and writes it back.
// updated_at is refreshed by a trigger.
func (p *Postgres) UpdateChannel(ctx context.Context, id int64, fields ChannelUpdate) (*models.Channel, error) {
	var out *models.Channel
	err := p.withTx(ctx, func(q querier) error {
		ch, err := scanChannel(q.QueryRow(ctx,
			`SELECT `+channelColumns+` FROM channels WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return dbErr(fmt.Sprintf("UpdateChannel %d", id), err)
		}
		fields.apply(ch)
		if err := models.Validate(ch); err != nil {
			return err
		}
		err = q.QueryRow(ctx,
			`UPDATE channels SET name = $2, description = $3, tuning_type = $4, tuning_details = $5,
			   epg_source = $6, group_category = $7, geo_blocked = $8, vpn_country = $9,
			   last_tested = $10, status = $11
			 WHERE id = $1
			 RETURNING updated_at`,
			id, ch.Name, ch.Description, string(ch.TuningType), ch.TuningDetails,
			ch.EPGSource, ch.GroupCategory, ch.GeoBlocked, ch.VPNCountry,
			ch.LastTested, string(ch.Status),
		).Scan(&ch.UpdatedAt)
		if err != nil {
			return dbErr(fmt.Sprintf("UpdateChannel %d", id), err)
		}
		out = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteChannel deletes a channel. Schedules, recordings and scans restrict it.
func (p *Postgres) DeleteChannel(ctx context.Context, id int64) error {
	op := fmt.Sprintf("DeleteChannel %d", id)
	tag, err := p.db.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return dbErr(op, err)
	}
	return mustAffect(op, tag)
}
