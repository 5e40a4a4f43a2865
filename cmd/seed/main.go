package main

import (
	"context"

	"github.com/pageza/ai-book/backend/config"
	"github.com/pageza/ai-book/backend/internal/database"
	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/types"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// seed creates demo readers for local testing
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
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	profiles := service.NewProfileService(db)
	quizzes := service.NewQuizService(db)

	readers := []struct {
		id      int64
		profile types.ProfileInput
		quiz    *types.QuizInput
	}{
		{
			id: 1001,
			profile: types.ProfileInput{
				Username:         strPtr("anna_reads"),
				FirstName:        strPtr("Anna"),
				PreferredGenres:  []string{"классика", "роман"},
				PreferredAuthors: []string{"Ремарк", "Толстой"},
			},
			quiz: &types.QuizInput{FavoriteBook: "Три товарища", BooksPerYear: intPtr(24)},
		},
		{
			id: 1002,
			profile: types.ProfileInput{
				Username:        strPtr("spacefan"),
				PreferredGenres: []string{"фантастика"},
			},
			quiz: &types.QuizInput{FavoriteBook: "Дюна", BooksPerYear: intPtr(10)},
		},
		{
			id: 1003,
			profile: types.ProfileInput{
				Username: strPtr("newcomer"),
				Lang:     "en",
			},
		},
	}

	ctx := context.Background()
	for _, r := range readers {
		if _, err := profiles.UpsertProfile(ctx, r.id, &r.profile); err != nil {
			logging.Fatal().Err(err).Int64("user_id", r.id).Msg("failed to seed profile")
		}
		if r.quiz != nil {
			if _, err := quizzes.SaveQuiz(ctx, r.id, r.quiz); err != nil {
				logging.Fatal().Err(err).Int64("user_id", r.id).Msg("failed to seed quiz answers")
			}
		}
		logging.Info().Int64("user_id", r.id).Msg("seeded reader")
	}
}
