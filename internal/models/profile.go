package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the per-user document holding the goal collection. Ids are
// stored as char(36) so the same schema migrates on postgres, mysql and sqlite.
// Every write bumps Version; writers compare it to detect lost updates.
type Profile struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	DisplayName        string         `json:"display_name"`
	Email              string         `json:"email"`
	AvatarURL          string         `json:"avatar_url"`
	Goals              []Goal         `json:"goals" gorm:"type:json;serializer:json"`
	HasSetInitialGoals bool           `json:"has_set_initial_goals" gorm:"default:false"`
	Version            int64          `json:"version" gorm:"not null;default:0"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
