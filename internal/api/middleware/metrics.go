package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestRecorder receives one observation per HTTP request.
type RequestRecorder interface {
	HTTPRequest(route, method string, status int, elapsed time.Duration)
}

// Metrics labels requests by route pattern, never by raw path, so ids in
// the URL do not explode label cardinality.
func Metrics(rec RequestRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet; mirror its status.
			status = statusOf(err)
		}

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		rec.HTTPRequest(route, c.Method(), status, time.Since(start))
		return err
	}
}
