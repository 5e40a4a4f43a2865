package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/ai-book/backend/internal/models"
	"github.com/pageza/ai-book/backend/internal/types"
)

// QuizService stores the latest quiz answers per user
type QuizService struct {
	db *gorm.DB
}

// Ensure QuizService implements IQuizService
var _ IQuizService = (*QuizService)(nil)

// NewQuizService creates a new QuizService instance
func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

// GetQuiz returns the stored answers or ErrNotFound
func (s *QuizService) GetQuiz(ctx context.Context, userID int64) (*types.QuizOutput, error) {
	var answer models.QuizAnswer
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return quizOutput(&answer), nil
}

// SaveQuiz replaces the stored answers
func (s *QuizService) SaveQuiz(ctx context.Context, userID int64, input *types.QuizInput) (*types.QuizOutput, error) {
	answer := models.QuizAnswer{
		UserID:       userID,
		FavoriteBook: strings.TrimSpace(input.FavoriteBook),
	}
	if input.BooksPerYear != nil {
		answer.BooksPerYear = *input.BooksPerYear
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"favorite_book", "books_per_year", "updated_at"}),
	}).Create(&answer).Error
	if err != nil {
		return nil, err
	}
	return quizOutput(&answer), nil
}

func quizOutput(a *models.QuizAnswer) *types.QuizOutput {
	return &types.QuizOutput{
		UserID:       a.UserID,
		FavoriteBook: a.FavoriteBook,
		BooksPerYear: a.BooksPerYear,
	}
}
