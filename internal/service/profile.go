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

// defaultLang is stored when a profile is created without a language
const defaultLang = "ru"

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{
		db: db,
	}
}

// GetProfile retrieves a user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*types.ProfileOutput, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profileOutput(&profile), nil
}

// UpsertProfile creates the profile or merges input into the stored one.
// Nil fields in input keep their stored value.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID int64, input *types.ProfileInput) (*types.ProfileOutput, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.Profile{UserID: userID, Lang: defaultLang}
		case err != nil:
			return err
		}

		applyProfileInput(&profile, input)

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return profileOutput(&profile), nil
}

func applyProfileInput(profile *models.Profile, input *types.ProfileInput) {
	if input == nil {
		return
	}
	if input.Username != nil {
		profile.Username = strings.TrimSpace(*input.Username)
	}
	if input.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		profile.LastName = strings.TrimSpace(*input.LastName)
	}
	if lang := strings.TrimSpace(input.Lang); lang != "" {
		profile.Lang = lang
	}
	if input.PreferredGenres != nil {
		profile.PreferredGenres = models.JoinList(input.PreferredGenres)
	}
	if input.PreferredAuthors != nil {
		profile.PreferredAuthors = models.JoinList(input.PreferredAuthors)
	}
}

func profileOutput(p *models.Profile) *types.ProfileOutput {
	return &types.ProfileOutput{
		UserID:           p.UserID,
		Username:         p.Username,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Lang:             p.Lang,
		PreferredGenres:  p.Genres(),
		PreferredAuthors: p.Authors(),
		UpdatedAt:        p.UpdatedAt,
	}
}
