package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/controllers"
)

// ProfileRoutes sets up the profile routes; listing and lookup by user are public
func ProfileRoutes(app *fiber.App, h *controllers.Controller, protect fiber.Handler) {
	profile := app.Group("/api/profile")

	profile.Get("/", h.GetProfiles)
	profile.Get("/user/:user_id", h.GetProfileByUserID)

	profile.Get("/me", protect, h.GetMyProfile)
	profile.Post("/", protect, h.UpsertProfile)
	profile.Delete("/", protect, h.DeleteProfile)
	profile.Put("/experience", protect, h.AddExperience)
	profile.Delete("/experience/:exp_id", protect, h.DeleteExperience)
	profile.Put("/education", protect, h.AddEducation)
	profile.Delete("/education/:edu_id", protect, h.DeleteEducation)
}
