package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/controllers"
)

// AuthRoutes sets up login and the current-user lookup
func AuthRoutes(app *fiber.App, h *controllers.Controller, protect fiber.Handler) {
	auth := app.Group("/api/auth")

	auth.Get("/", protect, h.GetCurrentUser)
	auth.Post("/", h.Login)
}
