package main

import (
	"github.com/pageza/ai-book/backend/config"
	"github.com/pageza/ai-book/backend/internal/database"
	"github.com/pageza/ai-book/backend/internal/logging"
)

// migrate applies pending schema migrations and exits
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("migration failed")
	}
	logging.Info().Str("driver", cfg.DBDriver).Msg("migrations applied")
}
