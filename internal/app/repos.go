package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/ehon-backend/internal/data/db"
	"github.com/yungbote/ehon-backend/internal/data/repos/books"
	"github.com/yungbote/ehon-backend/internal/data/repos/premises"
	"github.com/yungbote/ehon-backend/internal/data/repos/sessions"
	"github.com/yungbote/ehon-backend/internal/platform/gcp"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

type Repos struct {
	Books    books.Repo
	Premises premises.Repo
	Sessions sessions.Store
	// DB is set for the sqlite and postgres record stores.
	DB *gorm.DB
}

func wireRepos(ctx context.Context, log *logger.Logger, cfg Config) (Repos, []func() error, error) {
	log.Info("Wiring repos...", "record_store", cfg.RecordStore)
	var (
		out     Repos
		closers []func() error
	)

	switch cfg.RecordStore {
	case StoreSheets:
		sheets, err := gcp.NewSheets(ctx, log, cfg.googleCredentials(), cfg.SpreadsheetID)
		if err != nil {
			return Repos{}, closers, fmt.Errorf("init sheets: %w", err)
		}
		out.Books = books.NewSheetsRepo(sheets, cfg.BooksSheet, log)
		out.Premises = premises.NewSheetsRepo(sheets, cfg.PremiseRange, log)
	case StoreSQLite, StorePostgres:
		gdb, err := db.Open(log, db.Config{Driver: cfg.RecordStore, DSN: cfg.DatabaseDSN})
		if err != nil {
			return Repos{}, closers, fmt.Errorf("init database: %w", err)
		}
		if sqlDB, err := gdb.DB(); err == nil {
			closers = append(closers, sqlDB.Close)
		}
		if err := db.AutoMigrateAll(gdb); err != nil {
			return Repos{}, closers, fmt.Errorf("automigrate: %w", err)
		}
		out.DB = gdb
		out.Books = books.NewGormRepo(gdb, log)
		out.Premises = premises.NewGormRepo(gdb, log)
	case StoreMemory:
		out.Books = books.NewMemoryRepo()
		out.Premises = premises.NewMemoryRepo()
	default:
		return Repos{}, closers, fmt.Errorf("unsupported record store %q", cfg.RecordStore)
	}

	if cfg.PremiseSeedFile != "" {
		if _, err := premises.SeedIfEmpty(ctx, out.Premises, cfg.PremiseSeedFile, log); err != nil {
			return Repos{}, closers, fmt.Errorf("seed premises: %w", err)
		}
	}

	if cfg.RedisAddr != "" {
		store, closeRedis, err := sessions.NewRedisStore(ctx, log, sessions.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			return Repos{}, closers, fmt.Errorf("init redis sessions: %w", err)
		}
		closers = append(closers, closeRedis)
		out.Sessions = store
	} else {
		out.Sessions = sessions.NewMemoryStore(cfg.SessionTTL)
	}
	return out, closers, nil
}
