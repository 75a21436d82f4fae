package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrProfileNotFound is returned when no profile row exists for a user id.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore is the document store holding one profile per user id.
type ProfileStore interface {
	// GetGoals returns the goal collection and the row version.
	GetGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, int64, error)

	// PutGoals replaces the goal collection if the row is still at version.
	// It returns apperr.ErrConflict when another writer got there first.
	// markInitial also sets has_set_initial_goals.
	PutGoals(ctx context.Context, userID uuid.UUID, goals []models.Goal, version int64, markInitial bool) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) error
	UpdateAvatarURL(ctx context.Context, userID uuid.UUID, url string) error
}

// GormStore keeps profiles in the profiles table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, int64, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Select("id", "goals", "version").
		Where("id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, ErrProfileNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load goals: %w", err)
	}
	return profile.Goals, profile.Version, nil
}

func (s *GormStore) PutGoals(ctx context.Context, userID uuid.UUID, goals []models.Goal, version int64, markInitial bool) error {
	if goals == nil {
		goals = []models.Goal{}
	}
	data, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("failed to encode goals: %w", err)
	}

	updates := map[string]interface{}{
		"goals":   string(data),
		"version": gorm.Expr("version + ?", 1),
	}
	if markInitial {
		updates["has_set_initial_goals"] = true
	}

	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ? AND version = ?", userID, version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to save goals: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	return nil
}

func (s *GormStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile.Goals == nil {
		profile.Goals = []models.Goal{}
	}
	return &profile, nil
}

func (s *GormStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.Goals == nil {
		profile.Goals = []models.Goal{}
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateDisplayName(ctx context.Context, userID uuid.UUID, name string) error {
	return s.updateColumn(ctx, userID, "display_name", name)
}

func (s *GormStore) UpdateAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	return s.updateColumn(ctx, userID, "avatar_url", url)
}

// updateColumn sets a scalar profile column. The goals version is left alone.
func (s *GormStore) updateColumn(ctx context.Context, userID uuid.UUID, column string, value interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", userID).
		Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
