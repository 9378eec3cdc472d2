package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"onboard/internal/audit"
	identityservice "onboard/internal/identity/service"
	identitystore "onboard/internal/identity/store"
	"onboard/internal/onboarding/events"
	"onboard/internal/onboarding/guard"
	onboardingservice "onboard/internal/onboarding/service"
	onboardingstore "onboard/internal/onboarding/store"
	"onboard/internal/platform/config"
	"onboard/internal/platform/database"
	"onboard/internal/platform/health"
	"onboard/internal/platform/kafka/producer"
	"onboard/internal/platform/mongodb"
	"onboard/internal/platform/redis"
	ratelimit "onboard/internal/ratelimit/middleware"
	ratelimitstore "onboard/internal/ratelimit/store"
	"onboard/migrations"
)

// infra holds the optional backends and the stores selected from them. Every
// backend falls back to an in-process implementation when unconfigured.
type infra struct {
	pool     *database.Pool
	mongo    *mongodb.Client
	redis    *redis.Client
	producer *producer.Producer

	users        identityservice.Store
	applications onboardingservice.Store
	auditStore   audit.Store
	guard        onboardingservice.SubmitGuard
	events       onboardingservice.EventPublisher
	limits       ratelimit.Store
	localLimits  *ratelimitstore.InMemory

	closers []func(context.Context) error
}

func openInfra(ctx context.Context, cfg config.Config, reg prometheus.Registerer, log *slog.Logger, checks *health.Handler) (*infra, error) {
	in := &infra{}
	if err := in.openPostgres(ctx, cfg, reg, log, checks); err != nil {
		return in, err
	}
	if err := in.openMongo(ctx, cfg, log, checks); err != nil {
		return in, err
	}
	if err := in.openRedis(ctx, cfg, reg, log, checks); err != nil {
		return in, err
	}
	if err := in.openKafka(cfg, log, checks); err != nil {
		return in, err
	}
	return in, nil
}

func (in *infra) openPostgres(ctx context.Context, cfg config.Config, reg prometheus.Registerer, log *slog.Logger, checks *health.Handler) error {
	pool, err := database.New(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if pool == nil {
		log.Warn("DATABASE_URL not set; accounts, applications and audit events are kept in memory")
		in.users = identitystore.NewInMemory()
		in.applications = onboardingstore.NewInMemory()
		in.auditStore = audit.NewInMemoryStore()
		return nil
	}
	in.pool = pool
	in.closers = append(in.closers, func(context.Context) error { return pool.Close() })
	checks.RegisterCheck("postgres", pool.Health)
	pool.RegisterMetrics(reg)

	applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database ready", "migrations_applied", applied)

	in.users = identitystore.NewPostgres(pool.DB())
	in.applications = onboardingstore.NewPostgres(pool.DB())
	in.auditStore = audit.NewPostgresStore(pool.DB())
	return nil
}

func (in *infra) openMongo(ctx context.Context, cfg config.Config, log *slog.Logger, checks *health.Handler) error {
	client, err := mongodb.New(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if client == nil {
		return nil
	}
	in.mongo = client
	in.closers = append(in.closers, client.Close)
	checks.RegisterCheck("mongodb", client.Health)

	store := onboardingstore.NewMongo(client.Database(), cfg.Mongo.Collection)
	if err := store.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongodb indexes: %w", err)
	}
	in.applications = store
	log.Info("application records stored in mongodb", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
	return nil
}

func (in *infra) openRedis(ctx context.Context, cfg config.Config, reg prometheus.Registerer, log *slog.Logger, checks *health.Handler) error {
	client, err := redis.New(ctx, cfg.Redis, reg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if client == nil {
		log.Warn("REDIS_URL not set; submission guard and rate limits are local to this process")
		in.guard = guard.NewMemory(cfg.Server.SubmitLockTTL)
		in.localLimits = ratelimitstore.NewInMemory()
		in.limits = in.localLimits
		return nil
	}
	in.redis = client
	in.closers = append(in.closers, func(context.Context) error { return client.Close() })
	checks.RegisterCheck("redis", client.Health)
	in.guard = guard.NewRedis(client.Client, cfg.Server.SubmitLockTTL)
	in.limits = ratelimitstore.NewRedis(client.Client)
	return nil
}

func (in *infra) openKafka(cfg config.Config, log *slog.Logger, checks *health.Handler) error {
	if cfg.Kafka.Brokers == "" {
		in.events = events.Noop{}
		return nil
	}
	p, err := producer.New(cfg.Kafka, log)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	in.producer = p
	in.closers = append(in.closers, func(context.Context) error { return p.Close() })
	checks.RegisterCheck("kafka", p.Health)
	in.events = events.NewKafka(p, cfg.Kafka.Topic)
	log.Info("publishing lifecycle events", "topic", cfg.Kafka.Topic)
	return nil
}

// close releases backends in reverse order of opening.
func (in *infra) close(ctx context.Context, log *slog.Logger) {
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](ctx); err != nil {
			log.Error("failed to close backend", "error", err)
		}
	}
}
