package factory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/PIS-2020-2021/PIS/internal/config"
	"github.com/PIS-2020-2021/PIS/internal/media"
	storepkg "github.com/PIS-2020-2021/PIS/internal/store"
	storepg "github.com/PIS-2020-2021/PIS/internal/store/postgres"
	storesqlite "github.com/PIS-2020-2021/PIS/internal/store/sqlite"
)

// Storage bundles the graph store and the media store of one backend.
type Storage struct {
	Store storepkg.Store
	Media media.Store
	db    *sql.DB
}

// Close releases the database connection.
func (s *Storage) Close() error { return s.db.Close() }

// NewStorage opens the backend selected by cfg.DBDriver and ensures its
// schema exists.
func NewStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.DBDriver {
	case "sqlite":
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Str("path", cfg.SQLitePath).Msg("store opened")
		return &Storage{Store: storesqlite.NewWithDB(db), Media: media.NewSQLStore(db, media.SQLite), db: db}, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("LIZE_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		log.Debug().Str("driver", cfg.DBDriver).Msg("store opened")
		return &Storage{Store: storepg.NewWithDB(db), Media: media.NewSQLStore(db, media.Postgres), db: db}, nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
}
