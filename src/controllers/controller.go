package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/config"
	"github.com/theleywin/devconnector/src/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Controller carries the store and configuration shared by every handler
type Controller struct {
	Store  store.Store
	Config config.Config
}

func New(st store.Store, cfg config.Config) *Controller {
	return &Controller{Store: st, Config: cfg}
}

// requestContext bounds the store calls of one request by REQUEST_TIMEOUT
func (h *Controller) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.Config.RequestTimeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.Config.RequestTimeout)
}

// parseBody decodes the request body into out; an empty body leaves out zeroed
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// paramID parses an object id route parameter; ok is false for malformed ids
func paramID(c *fiber.Ctx, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Params(name))
	return id, err == nil
}
