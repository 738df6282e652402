package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestID tags every request with a UUID, echoed in the X-Request-ID header
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	})
}

// AccessLog writes one line per request, keyed by the request ID
func AccessLog() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} [${locals:requestid}] ${status} ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	})
}

// Recover turns panics into errors handled by the app's ErrorHandler
func Recover() fiber.Handler {
	return recover.New(recover.Config{EnableStackTrace: true})
}
