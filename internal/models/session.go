package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side refresh token record.
type Session struct {
	Token     string    `json:"-" gorm:"primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);index;not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Tokens is the pair handed to clients after sign-in or sign-up.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
