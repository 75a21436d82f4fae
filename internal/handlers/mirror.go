package handlers

import (
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/freedompraise/lockedin/internal/mirror"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) userMirror(c *fiber.Ctx) (*mirror.Mirror, error) {
	return h.Mirrors.Get(c.UserContext(), middleware.GetUserID(c))
}

func (h *Handler) GetMirror(c *fiber.Ctx) error {
	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(m.Tasks())
}

func (h *Handler) AddMirrorTask(c *fiber.Ctx) error {
	var req models.LocalTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}
	task, err := m.Add(c.UserContext(), req.Goal)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) EditMirrorTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}
	var req models.LocalTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}
	task, err := m.Edit(c.UserContext(), id, req.Goal)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

func (h *Handler) DeleteMirrorTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := m.Remove(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ToggleMirrorTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}
	task, err := m.Toggle(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(task)
}

// SyncMirror pushes the user's mirror to their profile now instead of
// waiting for the daily run.
func (h *Handler) SyncMirror(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	m, err := h.userMirror(c)
	if err != nil {
		return h.fail(c, err)
	}

	list, err := h.Syncer.SyncUser(c.UserContext(), m)
	if err != nil {
		return h.fail(c, err)
	}

	h.Hub.Broadcast(userID, WSEvent{Type: EventMirrorSynced, UserID: userID.String(), Data: list})
	h.profileChanged(c, userID)
	return c.JSON(list)
}
