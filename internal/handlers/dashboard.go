package handlers

import (
	"github.com/freedompraise/lockedin/internal/config"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

// Dashboard answers guarded dashboard pages with the page name and the
// cached profile.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	pc := h.Profiles.Get(c.UserContext(), middleware.GetUserID(c))
	state, ok := pc.Profile()
	if !ok {
		return c.Redirect(config.Redirects.RequireAuth, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"page":    c.Params("*"),
		"profile": state,
	})
}

// GetRedirects returns the named routes and redirect targets.
func GetRedirects(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"routes":    config.Routes,
		"redirects": config.Redirects,
	})
}
