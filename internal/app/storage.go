package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/appointment"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/config"
	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/db"
	redisclient "github.com/FabiQuint18/Dental-Clinic-Management-System/internal/redis"
)

type StoreRepository interface {
	appointment.Repository
	appointment.DirectoryWriter
}

// Deps holds the backing services a binary opened. Pool and Redis are nil
// when the configuration does not call for them.
type Deps struct {
	Repo  StoreRepository
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

// Open connects storage and, when needed, Redis according to cfg.
func Open(ctx context.Context, cfg config.Config, appName string) (*Deps, error) {
	deps := &Deps{}

	switch cfg.Storage {
	case config.StoragePostgres:
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, appName)
		cancel()
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("connected to Postgres")
		deps.Pool = pool
		deps.Repo = appointment.NewPgRepository(pool)
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		deps.Repo = appointment.NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	if cfg.UsesRedis() {
		rdb, err := redisclient.NewRedisClient(cfg)
		if err != nil {
			deps.Close()
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
		deps.Redis = rdb
	}

	return deps, nil
}

// Locker picks the booking lock for cfg.
func (d *Deps) Locker(cfg config.Config) appointment.Locker {
	if d.Redis != nil && cfg.LockBackend == config.LockRedis {
		return redisclient.NewBookingLocker(d.Redis, cfg.LockTTL, cfg.LockWait, cfg.LockRetry)
	}
	return appointment.NewLocalLocker()
}

func (d *Deps) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}
	if d.Pool != nil {
		d.Pool.Close()
	}
}
