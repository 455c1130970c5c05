// Package bootstrap wires the process-wide runtime shared by the server and CLI commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"karmafeed/internal/cache"
	"karmafeed/internal/config"
	"karmafeed/internal/database"
	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/observability"
	"karmafeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data.
	SeedDemo bool
	// ServiceVersion is reported on traces.
	ServiceVersion string
}

// Runtime holds the connections opened by InitRuntime.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to the database and Redis, installs tracing and
// optionally seeds demo data.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    observability.ServiceName,
		ServiceVersion: opts.ServiceVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	cache.ConfigureTTL(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	if opts.SeedDemo {
		if err := seedIfEmpty(db); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return &Runtime{
		DB:              db,
		Redis:           cache.GetClient(),
		shutdownTracing: shutdownTracing,
	}, nil
}

// ShutdownTracing flushes pending spans.
func (r *Runtime) ShutdownTracing(ctx context.Context) error {
	if r == nil || r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

func seedIfEmpty(db *gorm.DB) error {
	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("demo seed skipped, database not empty", slog.Int64("users", users))
		return nil
	}
	_, err := seed.Seed(db, seed.Options{
		NumUsers:           20,
		NumPosts:           40,
		MaxCommentsPerPost: 15,
	})
	return err
}
