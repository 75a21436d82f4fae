package routes

import (
	"github.com/freedompraise/lockedin/internal/config"
	"github.com/freedompraise/lockedin/internal/handlers"
	"github.com/freedompraise/lockedin/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func Setup(app *fiber.App, h *handlers.Handler) {
	tokens := h.Auth.Tokens()

	api := app.Group("/api")
	api.Get("/redirects", handlers.GetRedirects)

	auth := api.Group("/auth")
	auth.Post("/signup", h.SignUp)
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Post("/refresh", h.Refresh)

	protected := api.Group("/", middleware.Protected(tokens))

	protected.Get("/me", h.GetMe)
	protected.Put("/me", h.UpdateMe)
	protected.Post("/me/refresh", h.RefreshMe)
	protected.Post("/me/avatar", h.UploadAvatar)

	goals := protected.Group("/goals")
	goals.Get("/", h.GetGoals)
	goals.Post("/", h.CreateGoal)
	goals.Post("/ai", h.ImportAIGoals)
	goals.Post("/:goalId/tasks", h.AddTask)
	goals.Put("/:goalId/tasks/:taskId", h.EditTask)
	goals.Delete("/:goalId/tasks/:taskId", h.DeleteTask)
	goals.Post("/:goalId/tasks/:taskId/toggle", h.ToggleTask)

	// Local-first daily list
	mirror := protected.Group("/mirror")
	mirror.Get("/", h.GetMirror)
	mirror.Post("/", h.AddMirrorTask)
	mirror.Post("/sync", h.SyncMirror)
	mirror.Put("/:id", h.EditMirrorTask)
	mirror.Delete("/:id", h.DeleteMirrorTask)
	mirror.Post("/:id/toggle", h.ToggleMirrorTask)

	// Dashboard pages redirect to the sign-in notice without a session
	dashboard := app.Group("/dashboard", middleware.RequireSession(tokens, config.Redirects.RequireAuth))
	dashboard.Get("/*", h.Dashboard)

	app.Static("/uploads", h.Config.UploadsDir)

	// WebSocket for real-time profile updates
	app.Use("/ws", handlers.WebSocketUpgrade(tokens))
	app.Get("/ws/profile", websocket.New(h.Hub.HandleWebSocket))
}
