package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/onyxandcode/onyx-site/internal/auth"
	appconfig "github.com/onyxandcode/onyx-site/internal/config"
	"github.com/onyxandcode/onyx-site/internal/dashboard"
	"github.com/onyxandcode/onyx-site/internal/leads"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, project cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPostgresPool connects to DATABASE_URL. A blank URL returns nil, nil.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	return pool, nil
}

// Stores groups the persistence layer. Without a pool every store is in memory.
type Stores struct {
	Leads    leads.Repository
	Projects projects.Repository
	Users    auth.UserRepository
	Stats    dashboard.StatsSource
	// SQL is the database/sql view of the pool, nil when running in memory.
	SQL *sql.DB
}

// BuildStores wires repositories over pool, fronting projects with the Redis
// cache when redisClient is set.
func BuildStores(pool *pgxpool.Pool, redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) Stores {
	if logger == nil {
		logger = logging.Default()
	}
	var s Stores
	if pool == nil {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		s.Leads = leads.NewInMemoryRepository()
		s.Projects = projects.NewInMemoryRepository()
		s.Users = auth.NewInMemoryUserRepository()
	} else {
		s.Leads = leads.NewPostgresRepository(pool)
		s.Projects = projects.NewPostgresRepository(pool)
		s.Users = auth.NewPostgresUserRepository(pool)
		s.SQL = stdlib.OpenDBFromPool(pool)
	}

	s.Projects = projects.NewCachedRepository(s.Projects, redisClient, cfg.ProjectCacheTTL, logger)

	if s.SQL != nil {
		s.Stats = dashboard.NewSQLStats(s.SQL)
	} else {
		s.Stats = dashboard.RepositoryStats{Leads: s.Leads, Projects: s.Projects}
	}
	return s
}
