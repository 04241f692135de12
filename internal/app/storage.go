package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/internal/storage/postgres"
	"github.com/xenking/storefront/internal/storage/redis"
	"github.com/xenking/storefront/internal/storage/sqlite"
)

// backend is an opened storage driver.
type backend struct {
	carts  cart.Storage
	orders order.Repository
	// ping is nil for in-process drivers.
	ping  func(ctx context.Context) error
	close func()
}

func openStorage(ctx context.Context, lg *zap.Logger, cfg StorageConfig) (*backend, error) {
	lg.Info("Opening storage", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case DriverNone:
		return &backend{orders: memory.NewOrders(), close: func() {}}, nil
	case DriverMemory:
		return &backend{carts: memory.NewKV(), orders: memory.NewOrders(), close: func() {}}, nil
	case DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "sqlite handle")
		}
		return &backend{
			carts:  sqlite.NewKV(db),
			orders: sqlite.NewOrderRepository(db),
			ping:   sqlDB.PingContext,
			close: func() {
				if err := sqlite.Close(db); err != nil {
					lg.Warn("Close sqlite", zap.Error(err))
				}
			},
		}, nil
	case DriverRedis:
		rdb, err := redis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		return &backend{
			carts:  redis.NewKV(rdb, cfg.RedisPrefix),
			orders: redis.NewOrderRepository(rdb, cfg.RedisPrefix),
			ping:   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close: func() {
				if err := rdb.Close(); err != nil {
					lg.Warn("Close redis", zap.Error(err))
				}
			},
		}, nil
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		return &backend{
			carts:  postgres.NewKV(pool),
			orders: postgres.NewOrderRepository(pool),
			ping:   pool.Ping,
			close:  pool.Close,
		}, nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
