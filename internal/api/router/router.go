package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/onyxandcode/onyx-site/internal/auth"
	"github.com/onyxandcode/onyx-site/internal/chat"
	"github.com/onyxandcode/onyx-site/internal/dashboard"
	httpmiddleware "github.com/onyxandcode/onyx-site/internal/http/middleware"
	"github.com/onyxandcode/onyx-site/internal/intake"
	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/internal/web"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	Pages           *web.Pages
	IntakeHandler   *intake.Handler
	ProjectsHandler *projects.Handler
	LeadsHandler    *leads.Handler
	AuthHandler     *auth.Handler
	ChatHandler     *chat.Handler

	Sessions           httpmiddleware.SessionVerifier
	// DashboardAllowlist limits the session-gated routes to these emails.
	// Nil admits nobody.
	DashboardAllowlist *auth.Allowlist
	DashboardHandler   *dashboard.Handler

	// RateLimiter throttles lead submission, chat and password sign-in per client IP.
	RateLimiter *httpmiddleware.RateLimiter

	HealthChecks       map[string]HealthCheck
	MetricsHandler     http.Handler
	MetricsToken       string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		throttle = httpmiddleware.RateLimit(cfg.RateLimiter)
	}

	// Public pages, health checks and assets
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.With(requireToken(cfg.MetricsToken)).Handle("/metrics", cfg.MetricsHandler)
		}
		public.Handle("/static/*", web.Static())

		if cfg.Pages != nil {
			public.Get("/", cfg.Pages.Landing)
			public.Get("/web-design-monaghan", cfg.Pages.LocalLanding)
			public.Get("/success", cfg.Pages.Success)
			public.Get("/labs", cfg.Pages.Labs)
			public.Get("/splash", cfg.Pages.Splash)
		}
		if cfg.ProjectsHandler != nil {
			public.Get("/api/projects", cfg.ProjectsHandler.ListPublic)
		}
	})

	// Lead intake
	if cfg.IntakeHandler != nil {
		r.With(throttle).Post("/contact", cfg.IntakeHandler.Submit)
		r.With(throttle).Post("/api/leads", cfg.IntakeHandler.Submit)
	}

	// Chat widget
	if cfg.ChatHandler != nil {
		r.Route("/api/chat", func(c chi.Router) {
			c.With(throttle).Post("/message", cfg.ChatHandler.HandleMessage)
			c.Get("/ws", cfg.ChatHandler.HandleWebSocket)
		})
	}

	// Sign-in
	if cfg.AuthHandler != nil {
		r.Get(auth.LoginPath, cfg.AuthHandler.LoginPage)
		r.Route("/auth", func(a chi.Router) {
			a.With(throttle).Post("/login", cfg.AuthHandler.Login)
			a.Post("/logout", cfg.AuthHandler.Logout)
			a.Get("/session", cfg.AuthHandler.Session)
			a.Get("/oauth/{provider}", cfg.AuthHandler.OAuthStart)
			a.Get("/oauth/{provider}/callback", cfg.AuthHandler.OAuthCallback)
		})
	}

	// Session-gated routes. RequireSession and the allowlist run before any
	// handler, so an unknown visitor never triggers a project or lead read.
	if cfg.Sessions != nil {
		r.Group(func(private chi.Router) {
			private.Use(httpmiddleware.RequireSession(cfg.Sessions))
			private.Use(httpmiddleware.RequireAllowedEmail(cfg.DashboardAllowlist))
			if cfg.DashboardHandler != nil {
				private.Get(auth.DashboardPath, cfg.DashboardHandler.Page)
				private.Get("/api/dashboard", cfg.DashboardHandler.API)
			}
			if cfg.LeadsHandler != nil {
				private.Get("/api/dashboard/leads", cfg.LeadsHandler.ListLeads)
			}
		})
	}

	if cfg.Pages != nil {
		r.NotFound(cfg.Pages.NotFound)
	}

	return r
}
