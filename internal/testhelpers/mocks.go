package testhelpers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/ai-book/backend/internal/types"
)

// MockRecommendationService is a mock implementation of the recommendation pipeline
type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Recommend(ctx context.Context, prefs types.Preferences) (types.RecommendationSet, error) {
	args := m.Called(ctx, prefs)
	return args.Get(0).(types.RecommendationSet), args.Error(1)
}

// MockProfileService is a mock implementation of the profile store
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID int64) (*types.ProfileOutput, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileOutput), args.Error(1)
}

func (m *MockProfileService) UpsertProfile(ctx context.Context, userID int64, input *types.ProfileInput) (*types.ProfileOutput, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileOutput), args.Error(1)
}

// MockQuizService is a mock implementation of the quiz store
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) GetQuiz(ctx context.Context, userID int64) (*types.QuizOutput, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.QuizOutput), args.Error(1)
}

func (m *MockQuizService) SaveQuiz(ctx context.Context, userID int64, input *types.QuizInput) (*types.QuizOutput, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.QuizOutput), args.Error(1)
}

// MockAuthService is a mock implementation of the token service
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) GenerateToken(service string, scopes []string, ttl time.Duration) (string, error) {
	args := m.Called(service, scopes, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}
