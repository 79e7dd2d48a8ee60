package cmd

import (
	"context"
	"fmt"

	"github.com/nekoden/nekoden/backend/handlers"
	"github.com/nekoden/nekoden/internal/domain/actionlog"
	"github.com/nekoden/nekoden/internal/domain/pet"
	"github.com/nekoden/nekoden/internal/domain/rewards"
	"github.com/nekoden/nekoden/internal/gateways/database/repositories"
	"github.com/nekoden/nekoden/internal/gateways/memory"
	"github.com/nekoden/nekoden/nekoden"
	"github.com/nekoden/nekoden/nekoden/database"
	"github.com/nekoden/nekoden/nekoden/logger"
)

type stores struct {
	pet     pet.Repository
	logs    actionlog.Repository
	rewards rewards.Repository
	// nil for the memory driver
	pinger handlers.Pinger
	close  func()
}

// openStores connects the configured storage driver. Postgres schemas are
// created on every start; the statements are idempotent.
func openStores(ctx context.Context, c *nekoden.Config) (*stores, error) {
	if c.Storage.Driver == "memory" {
		logger.LogSystem("Using in-memory storage, state is lost on restart")
		store := memory.NewStore()
		return &stores{
			pet:     store,
			logs:    store,
			rewards: store,
			close:   func() {},
		}, nil
	}

	db, err := openDatabase(ctx, c.DB)
	if err != nil {
		return nil, err
	}
	if err = db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &stores{
		pet:     repositories.NewPetStateRepository(db.BunDB()),
		logs:    repositories.NewActionLogRepository(db.BunDB()),
		rewards: repositories.NewRewardRepository(db.BunDB()),
		pinger:  db,
		close:   db.Close,
	}, nil
}

func openDatabase(ctx context.Context, c nekoden.DBConfig) (*database.DB, error) {
	db, err := database.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err = db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.LogSystem("Database connected",
		"host", c.Host,
		"database", c.Database)
	return db, nil
}
