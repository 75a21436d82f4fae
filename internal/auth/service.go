// Package auth signs users up and in against the users table, issues JWT
// access tokens, and keeps refresh-token sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is enforced on sign-up.
const MinPasswordLength = 6

type Service struct {
	db       *gorm.DB
	sessions SessionStore
	tokens   *Tokens
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(db *gorm.DB, sessions SessionStore, tokens *Tokens, log *zap.SugaredLogger) *Service {
	return &Service{
		db:       db,
		sessions: sessions,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) Tokens() *Tokens {
	return s.tokens
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(op, email, password string) error {
	if email == "" || password == "" {
		return apperr.Errorf(op, apperr.Validation, "email and password are required")
	}
	if !strings.Contains(email, "@") {
		return apperr.Errorf(op, apperr.Validation, "invalid email address")
	}
	return nil
}

// SignUp registers the user, creates an empty profile and starts a session.
// redirectURL is echoed back as the email confirmation target.
func (s *Service) SignUp(ctx context.Context, email, password, redirectURL string) (*models.AuthResponse, error) {
	const op = "auth.SignUp"
	email = normalizeEmail(email)
	if err := validateCredentials(op, email, password); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, apperr.Errorf(op, apperr.Validation, "password must be at least %d characters", MinPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.E(op, apperr.Unknown, fmt.Errorf("failed to hash password: %w", err))
	}

	user := models.User{Email: email, Password: string(hashedPassword)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.ErrEmailTaken
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return goals.NewGormStore(tx).CreateProfile(ctx, &models.Profile{
			ID:          user.ID,
			Email:       user.Email,
			DisplayName: user.DefaultDisplayName(),
		})
	})
	if errors.Is(err, apperr.ErrEmailTaken) {
		return nil, apperr.E(op, apperr.Conflict, err)
	}
	if err != nil {
		s.log.Errorw("Error signing up", "email", email, "error", err)
		return nil, apperr.E(op, apperr.Store, err)
	}

	resp, err := s.startSession(ctx, op, user)
	if err != nil {
		return nil, err
	}
	resp.RedirectTo = redirectURL
	s.log.Infow("User signed up", "userId", user.ID)
	return resp, nil
}

// SignIn checks the password and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	const op = "auth.SignIn"
	email = normalizeEmail(email)
	if err := validateCredentials(op, email, password); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.E(op, apperr.Auth, apperr.ErrInvalidCredentials)
	}
	if err != nil {
		s.log.Errorw("Error signing in", "email", email, "error", err)
		return nil, apperr.E(op, apperr.Store, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.E(op, apperr.Auth, apperr.ErrInvalidCredentials)
	}

	return s.startSession(ctx, op, user)
}

// SignOut ends the session of refreshToken. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		s.log.Errorw("Error signing out", "error", err)
		return apperr.E("auth.SignOut", apperr.Store, err)
	}
	return nil
}

// Refresh exchanges a live refresh token for a new token pair. The old
// session is deleted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	const op = "auth.Refresh"
	if refreshToken == "" {
		return nil, apperr.E(op, apperr.Auth, apperr.ErrSessionNotFound)
	}

	session, err := s.sessions.Get(ctx, refreshToken)
	if errors.Is(err, apperr.ErrSessionNotFound) {
		return nil, apperr.E(op, apperr.Auth, err)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Store, err)
	}
	if err := s.sessions.Delete(ctx, refreshToken); err != nil {
		return nil, apperr.E(op, apperr.Store, err)
	}
	if session.Expired(s.now()) {
		return nil, apperr.E(op, apperr.Auth, apperr.ErrSessionNotFound)
	}

	user, err := s.GetUser(ctx, session.UserID)
	if apperr.Is(err, apperr.NotFound) {
		return nil, apperr.E(op, apperr.Auth, apperr.ErrSessionNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.startSession(ctx, op, *user)
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "auth.GetUser"
	var user models.User
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Errorf(op, apperr.NotFound, "user %s not found", userID)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Store, err)
	}
	return &user, nil
}

func (s *Service) startSession(ctx context.Context, op string, user models.User) (*models.AuthResponse, error) {
	accessToken, expiresAt, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, apperr.E(op, apperr.Unknown, fmt.Errorf("failed to generate token: %w", err))
	}
	refreshToken, err := newRefreshToken()
	if err != nil {
		return nil, apperr.E(op, apperr.Unknown, err)
	}

	now := s.now()
	if err := s.sessions.Create(ctx, &models.Session{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(TokenTTL),
		CreatedAt: now,
	}); err != nil {
		s.log.Errorw("Error creating session", "userId", user.ID, "error", err)
		return nil, apperr.E(op, apperr.Store, err)
	}

	return &models.AuthResponse{
		User: user,
		Session: models.Tokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    expiresAt,
		},
	}, nil
}
