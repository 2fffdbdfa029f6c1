package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/voyagen/tvdetection/internal/models"
)

const programColumns = `id, title, description, episode_title, season_number, episode_number,
	genre, subcategory, rating, original_air_date, actors, directors, writers,
	image_url, source, created_at`

func scanProgram(row pgx.Row) (*models.Program, error) {
	var pr models.Program
	err := row.Scan(
		&pr.ID, &pr.Title, &pr.Description, &pr.EpisodeTitle, &pr.SeasonNumber, &pr.EpisodeNumber,
		&pr.Genre, &pr.Subcategory, &pr.Rating, &pr.OriginalAirDate, &pr.Actors, &pr.Directors, &pr.Writers,
		&pr.ImageURL, &pr.Source, &pr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// CreateProgram validates and inserts pr, filling in its id and created_at.
func (p *Postgres) CreateProgram(ctx context.Context, pr *models.Program) error {
	if err := models.Validate(pr); err != nil {
		return err
	}
	err := p.db.QueryRow(ctx,
		`INSERT INTO programs (title, description, episode_title, season_number, episode_number,
		   genre, subcategory, rating, original_air_date, actors, directors, writers, image_url, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at`,
		pr.Title, pr.Description, pr.EpisodeTitle, pr.SeasonNumber, pr.EpisodeNumber,
		pr.Genre, pr.Subcategory, pr.Rating, pr.OriginalAirDate,
		jsonList(pr.Actors), jsonList(pr.Directors), jsonList(pr.Writers), pr.ImageURL, pr.Source,
	).Scan(&pr.ID, &pr.CreatedAt)
	if err != nil {
		return dbErr("CreateProgram", err)
	}
	return nil
}

// GetProgram returns a single program by id.
func (p *Postgres) GetProgram(ctx context.Context, id int64) (*models.Program, error) {
	pr, err := scanProgram(p.db.QueryRow(ctx,
		`SELECT `+programColumns+` FROM programs WHERE id = $1`, id))
	if err != nil {
		return nil, dbErr(fmt.Sprintf("GetProgram %d", id), err)
	}
	return pr, nil
}

// UpdateProgram rewrites every mutable column of pr.
func (p *Postgres) UpdateProgram(ctx context.Context, pr *models.Program) error {
	if err := models.Validate(pr); err != nil {
		return err
	}
	op := fmt.Sprintf("UpdateProgram %d", pr.ID)
	tag, err := p.db.Exec(ctx,
		`UPDATE programs SET title = $2, description = $3, episode_title = $4, season_number = $5,
		   episode_number = $6, genre = $7, subcategory = $8, rating = $9, original_air_date = $10,
		   actors = $11, directors = $12, writers = $13, image_url = $14, source = $15
		 WHERE id = $1`,
		pr.ID, pr.Title, pr.Description, pr.EpisodeTitle, pr.SeasonNumber,
		pr.EpisodeNumber, pr.Genre, pr.Subcategory, pr.Rating, pr.OriginalAirDate,
		jsonList(pr.Actors), jsonList(pr.Directors), jsonList(pr.Writers), pr.ImageURL, pr.Source,
	)
	if err != nil {
		return dbErr(op, err)
	}
	return mustAffect(op, tag)
}

// DeleteProgram deletes a program. Schedules and recordings restrict it.
func (p *Postgres) DeleteProgram(ctx context.Context, id int64) error {
	op := fmt.Sprintf("DeleteProgram %d", id)
	tag, err := p.db.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return dbErr(op, err)
	}
	return mustAffect(op, tag)
}
