package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/theleywin/devconnector/src/config"
	"github.com/theleywin/devconnector/src/controllers"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/middleware"
	"github.com/theleywin/devconnector/src/store"

	_ "github.com/theleywin/devconnector/docs"
)

// NewApp builds the Fiber app with middleware and every API route registered
func NewApp(cfg config.Config, st store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "devconnector",
		ErrorHandler: lib.ErrorHandler,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("API running")
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	h := controllers.New(st, cfg)
	protect := middleware.ProtectRoute(cfg.JWTSecret)

	UserRoutes(app, h)
	AuthRoutes(app, h, protect)
	ProfileRoutes(app, h, protect)
	PostRoutes(app, h, protect)

	return app
}
