package server

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/hermes/internal/apperr"
	"github.com/gofiber/fiber/v2"
)

// tokenAuth rejects requests whose "token" query parameter differs from the shared secret.
func tokenAuth(token string) fiber.Handler {
	expected := []byte(token)
	return func(c *fiber.Ctx) error {
		if subtle.ConstantTimeCompare([]byte(c.Query("token")), expected) != 1 {
			return apperr.InvalidToken()
		}
		return c.Next()
	}
}

// accessLog writes one line per request. Errors are rendered here so the logged status is final.
func accessLog(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log.InfoContext(c.UserContext(), "HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		)
		return nil
	}
}
