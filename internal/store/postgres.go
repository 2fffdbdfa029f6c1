package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	pgxzerolog "github.com/jackc/pgx-zerolog"
	"github.com/rs/zerolog"

	"github.com/voyagen/tvdetection/internal/sqlerr"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	db   DB
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a Postgres store from a DSN. SQL is traced through log
// when its level is debug or lower. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string, log zerolog.Logger, connectTimeout time.Duration) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if log.GetLevel() <= zerolog.DebugLevel {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzerolog.NewLogger(log),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
	if connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{db: pool, pool: pool}, nil
}

// NewPostgresFromDB wraps an existing pool or connection.
func NewPostgresFromDB(db DB) *Postgres {
	return &Postgres{db: db}
}

// Close closes the connection pool, if this store owns one.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// withTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic.
func (p *Postgres) withTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", sqlerr.Convert(err))
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", sqlerr.Convert(err))
	}
	return nil
}

// dbErr maps a driver error for op. Missing rows become ErrNotFound.
func dbErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, sqlerr.Convert(err))
}

// mustAffect returns ErrNotFound when an UPDATE or DELETE matched nothing.
func mustAffect(op string, tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// jsonList stores a nil slice as SQL NULL rather than JSON null.
func jsonList(v []string) any {
	if v == nil {
		return nil
	}
	return v
}
