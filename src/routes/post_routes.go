package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/controllers"
)

// PostRoutes sets up post-related routes for the feed, single posts, likes and comments
func PostRoutes(app *fiber.App, h *controllers.Controller, protect fiber.Handler) {
	post := app.Group("/api/posts", protect)

	post.Post("/", h.CreatePost)
	post.Get("/", h.GetPosts)
	post.Get("/:id", h.GetPostByID)
	post.Delete("/:id", h.DeletePost)
	post.Put("/like/:id", h.LikePost)
	post.Delete("/unlike/:id", h.UnlikePost)
	post.Post("/comment/:id", h.CreateComment)
	post.Delete("/comment/:id/:comment_id", h.DeleteComment)
}
