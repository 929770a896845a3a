package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/onyxandcode/onyx-site/internal/api/router"
	"github.com/onyxandcode/onyx-site/internal/app/bootstrap"
	"github.com/onyxandcode/onyx-site/internal/auth"
	"github.com/onyxandcode/onyx-site/internal/chat"
	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/internal/dashboard"
	httpmiddleware "github.com/onyxandcode/onyx-site/internal/http/middleware"
	"github.com/onyxandcode/onyx-site/internal/intake"
	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/observability/metrics"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/internal/sidechannel"
	"github.com/onyxandcode/onyx-site/internal/web"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

const (
	shutdownTimeout   = 30 * time.Second
	limiterSweepEvery = time.Minute
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting onyx-site",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.limiter.Run(ctx, limiterSweepEvery)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	// Notifications already accepted still get their chance to send.
	if err := app.dispatcher.WaitContext(shutdownCtx); err != nil {
		logger.Warn("side-channel tasks still running at exit", "error", err)
	}
	logger.Info("server stopped")
}

type application struct {
	handler    http.Handler
	dispatcher *sidechannel.Dispatcher
	limiter    *httpmiddleware.RateLimiter
	closers    []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires every component from cfg. Missing optional infrastructure
// (Postgres, Redis, AWS, email) degrades to in-memory or disabled variants.
func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	app := &application{}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		app.closers = append(app.closers, pool.Close)
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}
	stores := bootstrap.BuildStores(pool, redisClient, cfg, logger)
	if stores.SQL != nil {
		app.closers = append(app.closers, func() { _ = stores.SQL.Close() })
	}

	var awsCfg *aws.Config
	if bootstrap.NeedsAWS(cfg) {
		loaded, err := bootstrap.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Warn("aws config unavailable, s3 and ses disabled", "error", err)
		} else {
			awsCfg = &loaded
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	siteMetrics := metrics.NewSiteMetrics(registry)

	app.dispatcher = sidechannel.NewDispatcher(logger,
		sidechannel.WithInline(!cfg.NotifyAsync),
		sidechannel.WithObserver(siteMetrics),
	)

	notifier, channels := bootstrap.BuildNotifier(cfg, awsCfg, nil, logger)
	logger.Info("lead notification channels", "channels", channels)

	fallback := intake.Fallback{Phone: cfg.FallbackPhone, WhatsApp: cfg.FallbackWhatsApp}
	pages := web.New(web.Config{
		BaseURL:  cfg.PublicBaseURL,
		Fallback: fallback,
		Projects: stores.Projects,
		Logger:   logger,
	})

	submitter := intake.NewSubmitter(intake.SubmitterConfig{
		Leads:       stores.Leads,
		Notifier:    notifier,
		Attachments: bootstrap.BuildAttachmentStore(awsCfg, cfg, logger),
		Dispatcher:  app.dispatcher,
		Recorder:    siteMetrics,
		Logger:      logger,
	})

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions, err := auth.NewSessions(secret, cfg.SessionTTL, cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	allowed := auth.NewAllowlist(cfg.DashboardEmails()...)
	if allowed.Len() == 0 {
		logger.Warn("dashboard allowlist empty, set DASHBOARD_ALLOWED_EMAILS or ADMIN_EMAIL")
	}
	authService := auth.NewService(stores.Users, auth.NewHasher(0), logger, auth.WithAllowlist(allowed))
	if err := seedAdmin(ctx, cfg, authService, logger); err != nil {
		return nil, err
	}
	providers := auth.NewProviders(auth.OAuthConfig{
		BaseURL:            cfg.PublicBaseURL,
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		GitHubClientID:     cfg.GitHubClientID,
		GitHubClientSecret: cfg.GitHubClientSecret,
	})
	logger.Info("oauth providers", "providers", providers.Names())

	app.limiter = httpmiddleware.NewRateLimiter(cfg.LeadRateLimit, cfg.LeadRateBurst)

	app.handler = router.New(&router.Config{
		Logger:             logger,
		Pages:              pages,
		IntakeHandler:      intake.NewHandler(submitter, intake.HandlerConfig{Fallback: fallback, MaxUploadBytes: cfg.MaxUploadBytes, Pages: pages, Logger: logger}),
		ProjectsHandler:    projects.NewHandler(stores.Projects, logger),
		LeadsHandler:       leads.NewHandler(stores.Leads, logger),
		AuthHandler:        auth.NewHandler(authService, sessions, auth.HandlerConfig{Providers: providers, Pages: pages, Logger: logger}),
		Sessions:           sessions,
		DashboardAllowlist: allowed,
		DashboardHandler: dashboard.NewHandler(dashboard.HandlerConfig{
			Projects: stores.Projects,
			Stats:    stores.Stats,
			Users:    authService,
			Pages:    pages,
			Logger:   logger,
		}),
		ChatHandler:        chat.NewHandler(chat.NewResponder(nil), chat.HandlerConfig{Recorder: siteMetrics, Logger: logger}),
		RateLimiter:        app.limiter,
		HealthChecks:       healthChecks(pool, redisClient),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		MetricsToken:       cfg.MetricsToken,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	return app, nil
}

// sessionSecret returns SESSION_SECRET. Outside production a random secret is
// generated, which logs everyone out on restart.
func sessionSecret(cfg *appconfig.Config, logger *logging.Logger) (string, error) {
	if secret := strings.TrimSpace(cfg.SessionSecret); secret != "" {
		return secret, nil
	}
	if cfg.IsProduction() {
		return "", auth.ErrSessionSecretRequired
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn("SESSION_SECRET not set, using an ephemeral secret")
	return hex.EncodeToString(buf), nil
}

func seedAdmin(ctx context.Context, cfg *appconfig.Config, svc *auth.Service, logger *logging.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	user, err := svc.EnsurePasswordUser(ctx, cfg.AdminEmail, "", cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}
	logger.Info("admin user ready", "user_id", user.ID)
	return nil
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
