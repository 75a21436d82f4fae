package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/freedompraise/lockedin/internal/apperr"
	"github.com/freedompraise/lockedin/internal/goals"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxAvatarSize is the largest accepted avatar upload.
const MaxAvatarSize = 5 * 1024 * 1024

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadAvatar stores an image under the uploads directory and points the
// profile's avatar_url at it.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "No image file provided")
	}

	// Validate file type
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		return badRequest(c, "Only jpg, png, and webp images are allowed")
	}
	if file.Size > MaxAvatarSize {
		return badRequest(c, "Image must be under 5MB")
	}

	uploadsDir := h.Config.UploadsDir
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		h.Log.Errorw("Failed to create uploads directory", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create uploads directory",
		})
	}

	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	if err := c.SaveFile(file, filepath.Join(uploadsDir, filename)); err != nil {
		h.Log.Errorw("Failed to save avatar", "userId", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save image",
		})
	}

	avatarURL := "/uploads/" + filename
	err = h.Goals.Store().UpdateAvatarURL(c.UserContext(), userID, avatarURL)
	if errors.Is(err, goals.ErrProfileNotFound) {
		return h.fail(c, apperr.E("handlers.UploadAvatar", apperr.NotFound, err))
	}
	if err != nil {
		return h.fail(c, apperr.E("handlers.UploadAvatar", apperr.Store, err))
	}

	h.profileChanged(c, userID)
	return c.JSON(fiber.Map{
		"url": avatarURL,
	})
}
