package handlers

import (
	"errors"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/auth"
	"github.com/freedompraise/lockedin/internal/config"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/mirror"
	"github.com/freedompraise/lockedin/internal/profile"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler carries the services the HTTP handlers use.
type Handler struct {
	Config   *config.Config
	Auth     *auth.Service
	Goals    *goals.Repository
	Mirrors  *mirror.Registry
	Syncer   *mirror.Syncer
	Profiles *profile.Registry
	Hub      *Hub
	Log      *zap.SugaredLogger
}

// fail writes err as {"error": msg} with the status of its kind. Internal
// failures get a generic message.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= fiber.StatusInternalServerError {
		h.Log.Errorw("Request failed", "path", c.Path(), "error", err)
		return c.Status(status).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message(err),
	})
}

// message returns the innermost classified cause of err.
func message(err error) string {
	var e *apperr.Error
	for errors.As(err, &e) && e.Err != nil {
		err = e.Err
	}
	return err.Error()
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(param))
	return id, err == nil
}

// profileChanged refreshes the user's cached profile and notifies their
// open sockets.
func (h *Handler) profileChanged(c *fiber.Ctx, userID uuid.UUID) {
	state, err := h.Profiles.Refresh(c.UserContext(), userID)
	if err != nil {
		return
	}
	h.Hub.Broadcast(userID, WSEvent{
		Type:   EventProfileUpdated,
		UserID: userID.String(),
		Data:   state,
	})
}
