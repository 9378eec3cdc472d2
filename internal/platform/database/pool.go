package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"onboard/internal/platform/config"
)

// Pool wraps the application's *sql.DB with health checks and pool metrics.
type Pool struct {
	db *sql.DB
}

// New opens a PostgreSQL pool through the pgx stdlib driver and pings it.
// Returns nil, nil if the URL is empty, which selects the in-memory stores.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{db: db}, nil
}

// DB returns the underlying *sql.DB for query operations.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Health checks if the database is reachable.
func (p *Pool) Health(ctx context.Context) error {
	if p == nil || p.db == nil {
		return fmt.Errorf("database not configured")
	}
	return p.db.PingContext(ctx)
}

func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// RegisterMetrics exposes connection pool gauges sampled at scrape time.
func (p *Pool) RegisterMetrics(reg prometheus.Registerer) {
	f := promauto.With(reg)
	gauge := func(name, help string, value func(sql.DBStats) float64) {
		f.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, func() float64 {
			return value(p.db.Stats())
		})
	}
	gauge("onboard_db_open_connections", "Established connections, in use and idle",
		func(s sql.DBStats) float64 { return float64(s.OpenConnections) })
	gauge("onboard_db_in_use_connections", "Connections currently in use",
		func(s sql.DBStats) float64 { return float64(s.InUse) })
	gauge("onboard_db_idle_connections", "Idle connections",
		func(s sql.DBStats) float64 { return float64(s.Idle) })
	gauge("onboard_db_wait_seconds", "Total time blocked waiting for a connection",
		func(s sql.DBStats) float64 { return s.WaitDuration.Seconds() })
}
