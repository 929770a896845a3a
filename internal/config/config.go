package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	Env           string `env:"ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	DatabaseURL     string        `env:"DATABASE_URL"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisTLS        bool          `env:"REDIS_TLS" envDefault:"false"`
	ProjectCacheTTL time.Duration `env:"PROJECT_CACHE_TTL" envDefault:"5m"`

	// Lead intake
	FormRelayURL     string  `env:"FORM_RELAY_URL" envDefault:"https://formspree.io/f/mbddjynj"`
	NotifyAsync      bool    `env:"NOTIFY_ASYNC" envDefault:"true"`
	NotifyEmailTo    string  `env:"NOTIFY_EMAIL_TO"`
	MaxUploadBytes   int64   `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
	FallbackPhone    string  `env:"FALLBACK_PHONE" envDefault:"+353894459967"`
	FallbackWhatsApp string  `env:"FALLBACK_WHATSAPP" envDefault:"https://wa.me/353894459967"`
	LeadRateLimit    float64 `env:"LEAD_RATE_LIMIT" envDefault:"0.2"`
	LeadRateBurst    int     `env:"LEAD_RATE_BURST" envDefault:"5"`

	// Email channel: none, sendgrid or ses
	EmailProvider     string `env:"EMAIL_PROVIDER" envDefault:"none"`
	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME" envDefault:"Onyx & Code"`
	SESFromEmail      string `env:"SES_FROM_EMAIL"`
	SESFromName       string `env:"SES_FROM_NAME" envDefault:"Onyx & Code"`

	AWSRegion           string `env:"AWS_REGION" envDefault:"eu-west-1"`
	AWSAccessKeyID      string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpointOverride string `env:"AWS_ENDPOINT_OVERRIDE"`
	AttachmentBucket    string `env:"ATTACHMENT_BUCKET"`

	// Auth
	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	GitHubClientID     string        `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string        `env:"GITHUB_CLIENT_SECRET"`
	AdminEmail         string        `env:"ADMIN_EMAIL"`
	AdminPassword      string        `env:"ADMIN_PASSWORD"`

	// DashboardAllowedEmails may open the dashboard; empty means ADMIN_EMAIL only.
	DashboardAllowedEmails []string `env:"DASHBOARD_ALLOWED_EMAILS" envSeparator:","`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// MetricsToken, when set, is required as a bearer token on /metrics.
	MetricsToken string `env:"METRICS_TOKEN"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.EmailProvider = strings.ToLower(strings.TrimSpace(cfg.EmailProvider))
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &cfg, nil
}

// DashboardEmails returns the dashboard allowlist, falling back to AdminEmail.
func (c *Config) DashboardEmails() []string {
	var out []string
	for _, e := range c.DashboardAllowedEmails {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	if len(out) == 0 && strings.TrimSpace(c.AdminEmail) != "" {
		out = []string{strings.TrimSpace(c.AdminEmail)}
	}
	return out
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
