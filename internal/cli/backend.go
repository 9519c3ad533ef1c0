package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accessflow/internal/config"
	"github.com/dmitrijs2005/accessflow/internal/repositories/kv"
)

func noopClose() error { return nil }

// openRepository opens the key-value backend selected by cfg. The returned
// function releases its connections.
func openRepository(ctx context.Context, cfg *config.Config) (kv.Repository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return kv.NewMemoryRepository(), noopClose, nil

	case config.DriverFile:
		r, err := kv.NewFileRepository(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return r, noopClose, nil

	case config.DriverSQLite:
		db, err := kv.OpenSQLite(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewSQLiteRepository(db), db.Close, nil

	case config.DriverPostgres:
		db, err := kv.OpenPostgres(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewPostgresRepository(db), db.Close, nil

	case config.DriverRedis:
		client, err := kv.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewRedisRepository(client), client.Close, nil

	case config.DriverS3:
		r, err := kv.OpenS3(ctx, kv.S3Options{
			Bucket:   cfg.S3.Bucket,
			Region:   cfg.S3.Region,
			Endpoint: cfg.S3.Endpoint,
			User:     cfg.S3.User,
			Password: cfg.S3.Password,
			Prefix:   cfg.S3.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, noopClose, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
