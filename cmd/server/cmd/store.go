package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bookly/event-booking/internal/api/handler"
	"github.com/bookly/event-booking/internal/api/metrics"
	"github.com/bookly/event-booking/internal/core/ports"
	"github.com/bookly/event-booking/internal/infrastructure/db/memory"
	"github.com/bookly/event-booking/internal/infrastructure/db/mongo"
	"github.com/bookly/event-booking/internal/infrastructure/db/postgres"
	"github.com/bookly/event-booking/internal/infrastructure/db/redis"
	"github.com/bookly/event-booking/internal/pkg/config"
)

// backend bundles the repositories of the selected store driver together with
// the optional cache, the readiness checks and the shutdown hooks.
type backend struct {
	users    ports.UserRepository
	events   ports.EventRepository
	bookings ports.BookingRepository
	cache    ports.EventListCache

	checks  map[string]handler.Checker
	closers []func(context.Context)
}

func (b *backend) Close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i](ctx)
	}
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{checks: make(map[string]handler.Checker)}

	if err := b.openStore(ctx, cfg, log); err != nil {
		b.Close(ctx)
		return nil, err
	}
	if cfg.Redis.Enabled {
		if err := b.openCache(ctx, cfg, log); err != nil {
			b.Close(ctx)
			return nil, err
		}
	}
	return b, nil
}

func (b *backend) openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		if cfg.Postgres.AutoMigrate {
			if err := postgres.MigrateUp(cfg.Postgres.URL); err != nil {
				return err
			}
			log.Info().Msg("postgres migrations applied")
		}
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func(context.Context) { pool.Close() })
		b.users = postgres.NewUserRepository(pool)
		b.events = postgres.NewEventRepository(pool)
		b.bookings = postgres.NewBookingRepository(pool)
		b.checks["postgres"] = pool.Ping

	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func(ctx context.Context) { _ = client.Disconnect(ctx) })
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		b.users = mongo.NewUserRepository(db)
		b.events = mongo.NewEventRepository(db)
		b.bookings = mongo.NewBookingRepository(db)
		b.checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		b.users = store.Users()
		b.events = store.Events()
		b.bookings = store.Bookings()

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")
	return nil
}

func (b *backend) openCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	b.closers = append(b.closers, func(context.Context) { _ = client.Close() })

	cache := redis.NewEventListCache(client, cfg.Redis.CacheTTL)
	cache.OnLookup = metrics.ObserveEventsCache
	b.cache = cache
	b.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("events cache enabled")
	return nil
}
