// Package app wires configuration, connections and services for the binaries under cmd/.
package app

import (
	"context"
	"log/slog"

	rediscache "github.com/SscSPs/edu_center_app/internal/adapters/cache/redis"
	"github.com/SscSPs/edu_center_app/internal/adapters/database/pgsql"
	portssvc "github.com/SscSPs/edu_center_app/internal/core/ports/services"
	"github.com/SscSPs/edu_center_app/internal/core/services"
	"github.com/SscSPs/edu_center_app/internal/platform/config"
	"github.com/SscSPs/edu_center_app/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Infra bundles the long-lived connections of a process.
type Infra struct {
	DB    *pgxpool.Pool
	Redis *redis.Client // nil when REDIS_ADDR is empty
}

// Connect opens the database pool and, when configured, the Redis client.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Infra, error) {
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, err
	}
	infra := &Infra{DB: pool}

	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, running without progress cache and creation lock")
		return infra, nil
	}
	client, err := rediscache.NewClient(ctx, rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, err
	}
	infra.Redis = client
	logger.Info("Redis connection established", slog.String("addr", cfg.RedisAddr))
	return infra, nil
}

// Close releases every connection.
func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	database.ClosePgxPool(i.DB)
}

// Services builds the service container on top of the connections.
func (i *Infra) Services(cfg *config.Config, days portssvc.DayNameLocalizer) *portssvc.ServiceContainer {
	var opts []services.JournalServiceOption
	if days != nil {
		opts = append(opts, services.WithDayNameLocalizer(days))
	}
	if i.Redis != nil {
		opts = append(opts,
			services.WithProgressCache(rediscache.NewProgressCache(i.Redis, cfg.ProgressCacheTTL)),
			services.WithCreationLocker(rediscache.NewCreationLock(i.Redis, cfg.JournalLockTTL)),
		)
	}
	return services.NewServiceContainer(cfg, pgsql.NewRepositoryProvider(i.DB), opts...)
}
