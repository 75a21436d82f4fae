package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/database"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/logger"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"), gormlogger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupDB(t)
	return NewService(db, NewGormSessionStore(db), NewTokens("test-secret"), logger.Nop()), db
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret")
	userID := uuid.New()

	signed, expiresAt, err := tokens.Generate(userID, "ada@example.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if d := time.Until(expiresAt); d < TokenTTL-time.Minute || d > TokenTTL {
		t.Errorf("expiry in %v, want about %v", d, TokenTTL)
	}

	claims, err := tokens.Parse(signed)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.UserID != userID || claims.Email != "ada@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("test-secret")
	signed, _, _ := tokens.Generate(uuid.New(), "ada@example.com")

	if _, err := NewTokens("other-secret").Parse(signed); err == nil {
		t.Error("expected wrong secret to fail")
	}

	expired := NewTokens("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	old, _, _ := expired.Generate(uuid.New(), "ada@example.com")
	if _, err := tokens.Parse(old); err == nil {
		t.Error("expected expired token to fail")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: uuid.New()})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := tokens.Parse(unsigned); err == nil {
		t.Error("expected alg=none to fail")
	}

	if _, err := tokens.Parse("garbage"); err == nil {
		t.Error("expected garbage to fail")
	}
}

func TestSignUpCreatesUserAndProfile(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, " Ada@Example.com ", "secret123", "http://localhost/auth/auth-confirm")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if resp.User.Email != "ada@example.com" || resp.User.Password == "secret123" {
		t.Errorf("user = %+v", resp.User)
	}
	if resp.Session.AccessToken == "" || resp.Session.RefreshToken == "" {
		t.Errorf("session = %+v", resp.Session)
	}
	if resp.RedirectTo != "http://localhost/auth/auth-confirm" {
		t.Errorf("RedirectTo = %q", resp.RedirectTo)
	}

	profile, err := goals.NewGormStore(db).GetProfile(ctx, resp.User.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if profile.DisplayName != "ada" || profile.HasSetInitialGoals || len(profile.Goals) != 0 {
		t.Errorf("profile = %+v", profile)
	}
}

func TestSignUpErrors(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "ada@example.com", "secret123", ""); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     apperr.Kind
	}{
		{"taken", "ADA@example.com", "secret123", apperr.Conflict},
		{"missing email", "", "secret123", apperr.Validation},
		{"missing password", "bob@example.com", "", apperr.Validation},
		{"bad email", "bob", "secret123", apperr.Validation},
		{"short password", "bob@example.com", "123", apperr.Validation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, "")
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("SignUp() kind = %s (%v), want %s", got, err, tt.want)
			}
		})
	}
}

func TestSignInAndSignOut(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, "ada@example.com", "secret123", ""); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SignIn(ctx, "ada@example.com", "wrong"); !apperr.Is(err, apperr.Auth) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "secret123"); !apperr.Is(err, apperr.Auth) {
		t.Errorf("unknown email error = %v", err)
	}

	resp, err := svc.SignIn(ctx, "ada@example.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	claims, err := svc.Tokens().Parse(resp.Session.AccessToken)
	if err != nil || claims.UserID != resp.User.ID {
		t.Fatalf("access token does not identify the user: %v", err)
	}

	if err := svc.SignOut(ctx, resp.Session.RefreshToken); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := svc.Refresh(ctx, resp.Session.RefreshToken); !apperr.Is(err, apperr.Auth) {
		t.Errorf("refresh after sign-out error = %v, want auth", err)
	}
	if err := svc.SignOut(ctx, ""); err != nil {
		t.Errorf("SignOut(empty) error = %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	first, err := svc.SignUp(ctx, "ada@example.com", "secret123", "")
	if err != nil {
		t.Fatal(err)
	}

	second, err := svc.Refresh(ctx, first.Session.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.Session.RefreshToken == first.Session.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, first.Session.RefreshToken); !apperr.Is(err, apperr.Auth) {
		t.Errorf("reusing old refresh token error = %v", err)
	}
}

func TestRefreshExpired(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, "ada@example.com", "secret123", "")
	if err != nil {
		t.Fatal(err)
	}

	svc.now = func() time.Time { return time.Now().Add(TokenTTL + time.Hour) }
	if _, err := svc.Refresh(ctx, resp.Session.RefreshToken); !apperr.Is(err, apperr.Auth) {
		t.Errorf("expired refresh error = %v, want auth", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc, _ := setupService(t)
	if _, err := svc.GetUser(context.Background(), uuid.New()); !apperr.Is(err, apperr.NotFound) {
		t.Errorf("GetUser() error = %v", err)
	}
}

func TestSessionStores(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	stores := map[string]SessionStore{
		"gorm":  NewGormSessionStore(setupDB(t)),
		"redis": NewRedisSessionStore(client),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			userID := uuid.New()
			session := &models.Session{
				Token:     "tok-" + name,
				UserID:    userID,
				ExpiresAt: time.Now().Add(time.Hour).Truncate(time.Second),
			}
			if err := store.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			got, err := store.Get(ctx, session.Token)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.UserID != userID || got.Token != session.Token || !got.ExpiresAt.Equal(session.ExpiresAt) {
				t.Errorf("Get() = %+v", got)
			}

			if err := store.Delete(ctx, session.Token); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Get(ctx, session.Token); err != apperr.ErrSessionNotFound {
				t.Errorf("Get() after delete error = %v", err)
			}
		})
	}
}

func TestRedisSessionExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisSessionStore(client)
	ctx := context.Background()

	if err := store.Create(ctx, &models.Session{Token: "t", UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(ctx, "t"); err != apperr.ErrSessionNotFound {
		t.Errorf("Get() after ttl error = %v", err)
	}
}
