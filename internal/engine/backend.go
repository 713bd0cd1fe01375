package engine

import (
	"coinbot/internal/engine/interfaces"
	"coinbot/internal/providers"
	"coinbot/internal/structures"
	"context"
	"fmt"
)

// NewBackend opens the configured snapshot store. The returned cleanup closes it.
func NewBackend(conf *structures.Config, secrets *structures.Secrets, logger providers.Logger) (interfaces.BackendInterface, func(), error) {
	var (
		backend interfaces.BackendInterface
		err     error
	)

	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	switch conf.Persistence.Driver {
	case "redis":
		backend, err = NewRedisBackend(ctx, conf.Persistence.RedisAddr, secrets.RedisPassword, conf.Persistence.RedisDB, conf.Persistence.RedisKey)
	case "sqlite":
		backend, err = NewSQLiteBackend(ctx, conf.Persistence.SQLitePath)
	case "file", "":
		backend = NewFileBackend(conf.Persistence.FilePath)
	default:
		err = fmt.Errorf("unknown persistence driver %q", conf.Persistence.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Infof(providers.TypeStore, "Snapshot backend: %s", backend.Name())
	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Errorf(providers.TypeStore, "Closing snapshot backend: %s", err)
		}
	}
	return backend, cleanup, nil
}
