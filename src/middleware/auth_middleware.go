package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/theleywin/devconnector/src/lib"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey is the c.Locals key holding the authenticated user's primitive.ObjectID
const UserIDKey = "userId"

// ProtectRoute checks the bearer JWT and attaches the user ID to the request context.
// It does not load the user; handlers decide what a missing user means.
func ProtectRoute(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "No token, authorization denied")
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Token is not valid")
		}

		userID, err := lib.VerifyJWT(secret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Token is not valid")
		}

		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"; the scheme is case-insensitive
func bearerToken(header string) (string, bool) {
	const scheme = "Bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}

// CurrentUserID returns the ID set by ProtectRoute, or the nil ID on public routes
func CurrentUserID(c *fiber.Ctx) primitive.ObjectID {
	if id, ok := c.Locals(UserIDKey).(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}
