package handlers

import (
	"strings"
	"time"

	"github.com/freedompraise/lockedin/internal/auth"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) setAuthCookies(c *fiber.Ctx, tokens models.Tokens) {
	expires := time.Now().Add(auth.TokenTTL)
	secure := h.Config.IsProduction()

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/dashboard",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *Handler) clearAuthCookies(c *fiber.Ctx) {
	for name, path := range map[string]string{
		middleware.AccessTokenCookie:  "/dashboard",
		middleware.RefreshTokenCookie: "/",
	} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   h.Config.IsProduction(),
		})
	}
}

func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.Auth.SignUp(c.UserContext(), req.Email, req.Password, h.Config.SignUpRedirectURL)
	if err != nil {
		return h.fail(c, err)
	}

	h.setAuthCookies(c, resp.Session)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := h.Auth.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	h.setAuthCookies(c, resp.Session)
	return c.JSON(resp)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshToken reads the refresh token from the cookie, or the JSON body.
func refreshToken(c *fiber.Ctx) string {
	if token := c.Cookies(middleware.RefreshTokenCookie); token != "" {
		return token
	}
	var req refreshRequest
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	return req.RefreshToken
}

// Logout ends the session, drops the cached profile and clears both cookies.
func (h *Handler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.SignOut(c.UserContext(), refreshToken(c)); err != nil {
		return h.fail(c, err)
	}

	// The access token is optional here; it only tells us whose cache to drop.
	tokenString := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		tokenString = c.Cookies(middleware.AccessTokenCookie)
	}
	if claims, err := h.Auth.Tokens().Parse(tokenString); err == nil {
		h.Profiles.Drop(c.UserContext(), claims.UserID)
		h.Mirrors.Drop(claims.UserID)
	}

	h.clearAuthCookies(c)
	return c.SendStatus(fiber.StatusNoContent)
}

// Refresh swaps a refresh token for a new pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	resp, err := h.Auth.Refresh(c.UserContext(), refreshToken(c))
	if err != nil {
		h.clearAuthCookies(c)
		return h.fail(c, err)
	}

	h.setAuthCookies(c, resp.Session)
	return c.JSON(resp)
}
