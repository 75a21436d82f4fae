package handlers

import (
	"errors"
	"strings"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/gofiber/fiber/v2"
)

// GetMe returns the cached profile, refreshing it when the cache is empty.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	pc := h.Profiles.Get(c.UserContext(), userID)
	if state, ok := pc.Profile(); ok {
		return c.JSON(state)
	}

	state, err := pc.Refresh(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// RefreshMe re-reads the profile from the store.
func (h *Handler) RefreshMe(c *fiber.Ctx) error {
	state, err := h.Profiles.Refresh(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(state)
}

// UpdateMe writes the display name to the profile store, then refreshes the
// cache from it.
func (h *Handler) UpdateMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.DisplayName == nil || strings.TrimSpace(*req.DisplayName) == "" {
		return badRequest(c, "Display name is required")
	}

	err := h.Goals.Store().UpdateDisplayName(c.UserContext(), userID, strings.TrimSpace(*req.DisplayName))
	if errors.Is(err, goals.ErrProfileNotFound) {
		return h.fail(c, apperr.E("handlers.UpdateMe", apperr.NotFound, err))
	}
	if err != nil {
		return h.fail(c, apperr.E("handlers.UpdateMe", apperr.Store, err))
	}

	state, err := h.Profiles.Refresh(c.UserContext(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	h.Hub.Broadcast(userID, WSEvent{Type: EventProfileUpdated, UserID: userID.String(), Data: state})
	return c.JSON(state)
}
