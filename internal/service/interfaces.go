package service

import (
	"context"
	"time"

	"github.com/pageza/ai-book/backend/internal/types"
)

// Completer sends one prompt to a language model and returns the raw completion text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// IRecommendationService defines the interface for the recommendation pipeline
type IRecommendationService interface {
	Recommend(ctx context.Context, prefs types.Preferences) (types.RecommendationSet, error)
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*types.ProfileOutput, error)
	UpsertProfile(ctx context.Context, userID int64, input *types.ProfileInput) (*types.ProfileOutput, error)
}

// IQuizService defines the interface for quiz answer operations
type IQuizService interface {
	GetQuiz(ctx context.Context, userID int64) (*types.QuizOutput, error)
	SaveQuiz(ctx context.Context, userID int64, input *types.QuizInput) (*types.QuizOutput, error)
}

// IAuthService defines the interface for service token operations
type IAuthService interface {
	GenerateToken(service string, scopes []string, ttl time.Duration) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
