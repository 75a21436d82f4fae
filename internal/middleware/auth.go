package middleware

import (
	"strings"

	"github.com/freedompraise/lockedin/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Cookie names set on sign-in. The access token is scoped to the dashboard
// pages, the refresh token to the whole site.
const (
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
)

// bearerToken extracts the token from "Authorization: Bearer <token>", falling
// back to the access-token cookie.
func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
			return cookie, ""
		}
		return "", "Missing authorization header"
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", "Invalid authorization format"
	}
	return tokenString, ""
}

// Protected rejects requests without a valid access token with 401.
func Protected(tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": problem,
			})
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		// Store user info in context
		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)

		return c.Next()
	}
}

// RequireSession guards pages: requests without a valid token are redirected
// to redirectTo instead of getting a JSON error.
func RequireSession(tokens *auth.Tokens, redirectTo string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			return c.Redirect(redirectTo, fiber.StatusFound)
		}
		claims, err := tokens.Parse(tokenString)
		if err != nil {
			return c.Redirect(redirectTo, fiber.StatusFound)
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		return c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}
