package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/voyagen/tvdetection/internal/cache"
	"github.com/voyagen/tvdetection/internal/config"
	"github.com/voyagen/tvdetection/internal/logger"
	"github.com/voyagen/tvdetection/internal/store"
)

const usage = `usage: tvdetection [-config file] <command>

commands:
  migrate        apply all pending migrations (default)
  down [steps]   roll back the last steps migrations (default 1, 0 = all)
  version        print the applied schema version
  verify         check connectivity and that every table and enum type exists
`

type command struct {
	name  string
	steps int
}

var errUsage = errors.New("invalid arguments")

func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "migrate"}, nil
	}
	cmd := command{name: args[0], steps: 1}
	switch cmd.name {
	case "migrate", "version", "verify":
		if len(args) > 1 {
			return command{}, errUsage
		}
	case "down":
		if len(args) > 2 {
			return command{}, errUsage
		}
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return command{}, errUsage
			}
			cmd.steps = n
		}
	default:
		return command{}, errUsage
	}
	return cmd, nil
}

func main() {
	configPath := flag.String("config", "", "Optional config file path (YAML); else use env DATABASE_URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cmd, err := parseCommand(flag.Args())
	if err != nil {
		flag.Usage()
		os.Exit(2)
	}

	var cfg *config.Config
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, cfg, log); err != nil {
		log.Error().Err(err).Str("command", cmd.name).Msg("failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd command, cfg *config.Config, log zerolog.Logger) error {
	switch cmd.name {
	case "migrate":
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		v, _, err := store.SchemaVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		log.Info().Uint("version", v).Msg("schema up to date")
		return nil

	case "down":
		if err := store.RollbackMigrations(cfg.DatabaseURL, cmd.steps); err != nil {
			return err
		}
		v, _, err := store.SchemaVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		log.Info().Uint("version", v).Int("steps", cmd.steps).Msg("schema rolled back")
		return purgeCache(ctx, cfg, log)

	case "version":
		v, dirty, err := store.SchemaVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		log.Info().Uint("version", v).Bool("dirty", dirty).Msg("schema version")
		fmt.Println(v)
		return nil

	case "verify":
		return verify(ctx, cfg, log)
	}
	return errUsage
}

// verify checks the schema, then opens the pool the way services do and
// round-trips a lookup through the cache when Redis is configured.
func verify(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := store.VerifySchema(ctx, cfg.DatabaseURL); err != nil {
		return err
	}
	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL, log, cfg.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pg.Close()

	var s store.Store = pg
	if cfg.RedisURL != "" {
		rds, err := cache.New(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		s = store.NewCachedStore(pg, rds, cfg.CacheTTL, log)
		log.Info().Msg("redis connected (caching enabled)")
	} else {
		log.Info().Msg("redis disabled (REDIS_URL not set)")
	}

	if _, err := s.ListScans(ctx, 0, 1); err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if _, err := s.GetChannel(ctx, 0); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("query: %w", err)
	}
	log.Info().Msg("schema verified")
	return nil
}

// purgeCache drops cached channels and programs after a rollback.
func purgeCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RedisURL == "" {
		return nil
	}
	rds, err := cache.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rds.Close()
	// Purge never reaches the inner store.
	if err := store.NewCachedStore(nil, rds, cfg.CacheTTL, log).Purge(ctx); err != nil {
		log.Warn().Err(err).Msg("cache purge failed")
	}
	return nil
}
