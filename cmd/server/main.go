package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"onboard/internal/audit"
	fileshandler "onboard/internal/files/handler"
	filesservice "onboard/internal/files/service"
	filesstore "onboard/internal/files/store"
	identityhandler "onboard/internal/identity/handler"
	identityservice "onboard/internal/identity/service"
	"onboard/internal/identity/token"
	"onboard/internal/onboarding/adapters"
	onboardinghandler "onboard/internal/onboarding/handler"
	onboardingmetrics "onboard/internal/onboarding/metrics"
	onboardingservice "onboard/internal/onboarding/service"
	"onboard/internal/platform/config"
	"onboard/internal/platform/health"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	"onboard/internal/platform/metrics"
	"onboard/internal/platform/tracer"
	ratelimit "onboard/internal/ratelimit/middleware"
	ratelimitmodels "onboard/internal/ratelimit/models"
	httptransport "onboard/internal/transport/http"
)

const (
	devSigningKey      = "dev-secret-key-change-in-production"
	auditBufferSize    = 256
	poolStatsInterval  = 15 * time.Second
	limitSweepInterval = time.Minute
	publicRouteTimeout = 30 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Config, log *slog.Logger) error {
	if cfg.Server.IsProduction() && cfg.Server.JWTSigningKey == devSigningKey {
		return errors.New("JWT_SIGNING_KEY must be set in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing onboard",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
	)

	reg := metrics.NewRegistry()
	checks := health.New(cfg.Server.Environment)

	in, err := openInfra(ctx, cfg, reg, log, checks)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		in.close(closeCtx, log)
	}()
	if err != nil {
		return err
	}

	blobs, err := filesstore.NewDisk(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("upload storage: %w", err)
	}
	defer blobs.Close() //nolint:errcheck // read-only handle on shutdown
	checks.RegisterCheck("uploads", blobs.Ping)

	trail := audit.NewPublisher(in.auditStore,
		audit.WithAsyncBuffer(auditBufferSize),
		audit.WithPublisherLogger(log),
	)
	defer trail.Close()

	tokens := token.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.TokenTTL)
	identity := identityservice.New(in.users, tokens,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(metrics.New(reg)),
		identityservice.WithAuditTrail(trail),
	)
	if cfg.Bootstrap.HREmail != "" && cfg.Bootstrap.HRPassword != "" {
		if err := identity.EnsureHR(ctx, cfg.Bootstrap.HREmail, cfg.Bootstrap.HRPassword); err != nil {
			return fmt.Errorf("bootstrap HR account: %w", err)
		}
		log.Info("HR account ready", "email", cfg.Bootstrap.HREmail)
	}

	files := filesservice.New(blobs,
		filesservice.WithLogger(log),
		filesservice.WithMaxBytes(cfg.Uploads.MaxBytes),
		filesservice.WithPublicBaseURL(cfg.Uploads.PublicBaseURL),
	)
	onboarding := onboardingservice.New(in.applications, adapters.NewUploader(files),
		onboardingservice.WithLogger(log),
		onboardingservice.WithMetrics(onboardingmetrics.New(reg)),
		onboardingservice.WithTracer(tracer.NewOTel()),
		onboardingservice.WithSubmitGuard(in.guard),
		onboardingservice.WithEventPublisher(in.events),
		onboardingservice.WithAuditTrail(trail),
	)
	onboardingHandler := onboardinghandler.New(onboarding, log,
		onboardinghandler.WithMaxFileBytes(files.MaxBytes()),
	)

	var limiter *ratelimit.Middleware
	if !cfg.RateLimit.Disabled {
		limiter = ratelimit.New(in.limits,
			ratelimit.WithLogger(log),
			ratelimit.WithRegisterer(reg),
			ratelimit.WithLimit(ratelimitmodels.ClassAuth, perMinute(cfg.RateLimit.AuthPerMinute)),
			ratelimit.WithLimit(ratelimitmodels.ClassWrite, perMinute(cfg.RateLimit.WritePerMinute)),
		)
	}

	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:        log,
		Registry:      reg,
		Tokens:        tokens,
		Health:        checks,
		Public:        []httptransport.RouteRegistrar{identityhandler.New(identity, log)},
		Authenticated: []httptransport.RouteRegistrar{fileshandler.New(files, log), onboardingHandler},
		HR:            []httptransport.HRRouteRegistrar{onboardingHandler},
		RateLimit:     limiter,
		JSONTimeout:   publicRouteTimeout,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if in.redis != nil {
		g.Go(func() error {
			return in.redis.RunPoolStats(gctx, poolStatsInterval)
		})
	}
	if in.localLimits != nil {
		g.Go(func() error {
			return in.localLimits.RunSweeper(gctx, limitSweepInterval, time.Hour)
		})
	}
	return g.Wait()
}

// perMinute turns a configured budget into a limit; zero keeps the default.
func perMinute(n int) ratelimitmodels.Limit {
	return ratelimitmodels.Limit{Requests: n, Window: time.Minute}
}
