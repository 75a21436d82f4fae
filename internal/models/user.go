package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an auth account. Its ID doubles as the profile ID.
type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Email     string         `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Password  string         `json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DefaultDisplayName is the local part of the email address.
func (u *User) DefaultDisplayName() string {
	name, _, _ := strings.Cut(u.Email, "@")
	return name
}

// Auth DTOs
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName"`
}

type AuthResponse struct {
	User       User   `json:"user"`
	Session    Tokens `json:"session"`
	RedirectTo string `json:"redirectTo,omitempty"`
}
