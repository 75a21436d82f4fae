package handlers

import (
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/freedompraise/lockedin/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (h *Handler) GetGoals(c *fiber.Ctx) error {
	list, err := h.Goals.LoadGoals(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	goal, err := h.Goals.CreateGoal(c.UserContext(), userID, req.Name)
	if err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.Status(fiber.StatusCreated).JSON(goal)
}

// ImportAIGoals merges a [{goal, tasks}] batch into the user's goals.
func (h *Handler) ImportAIGoals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	entries, err := goals.ParseAIEntries(c.Body())
	if err != nil {
		h.Log.Warnw("Invalid AI goals batch", "userId", userID, "error", err)
		return badRequest(c, err.Error())
	}

	list, err := h.Goals.SaveAITasks(c.UserContext(), userID, entries)
	if err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.JSON(list)
}

func goalAndTask(c *fiber.Ctx) (goalID, taskID uuid.UUID, problem string) {
	goalID, ok := parseID(c, "goalId")
	if !ok {
		return uuid.Nil, uuid.Nil, "Invalid goal ID"
	}
	if c.Params("taskId") == "" {
		return goalID, uuid.Nil, ""
	}
	taskID, ok = parseID(c, "taskId")
	if !ok {
		return uuid.Nil, uuid.Nil, "Invalid task ID"
	}
	return goalID, taskID, ""
}

func (h *Handler) AddTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, _, problem := goalAndTask(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	var req models.TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.Goals.AddManualTask(c.UserContext(), userID, goalID, req.Text)
	if err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) EditTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, taskID, problem := goalAndTask(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	var req models.TaskTextRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	task, err := h.Goals.EditTask(c.UserContext(), userID, goalID, taskID, req.Text)
	if err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, taskID, problem := goalAndTask(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	if err := h.Goals.RemoveTask(c.UserContext(), userID, goalID, taskID); err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ToggleTask(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	goalID, taskID, problem := goalAndTask(c)
	if problem != "" {
		return badRequest(c, problem)
	}

	task, err := h.Goals.ToggleTaskCompletion(c.UserContext(), userID, goalID, taskID)
	if err != nil {
		return h.fail(c, err)
	}

	h.profileChanged(c, userID)
	return c.JSON(task)
}
