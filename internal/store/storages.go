package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-store/internal/config"
	"github.com/MKhiriev/go-vault-store/internal/logger"
)

// NewBackend opens the backend selected by cfg.Driver. For the sqlite driver
// the database file is created if needed and pending migrations are applied.
func NewBackend(ctx context.Context, cfg config.Storage, log *logger.Logger) (Backend, error) {
	log.Info().Str("driver", cfg.Driver).Msg("creating storage backend...")

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryBackend(cfg.Memory.Path)

	case "sqlite":
		db, err := NewConnectSQLite(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection error: %w", err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return NewSQLiteBackend(db, log), nil

	case "badger":
		return NewBadgerBackend(cfg.Badger, log)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
