package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/controllers"
)

func UserRoutes(app *fiber.App, h *controllers.Controller) {
	user := app.Group("/api/users")
	user.Post("/", h.RegisterUser)
}
