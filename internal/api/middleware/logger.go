package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// requestIDKey is where the requestid middleware stores the id.
const requestIDKey = "requestid"

// probePaths are polled by orchestrators and scrapers; successful hits are
// logged at debug only.
var probePaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// Logger writes one access log line per request.
func Logger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case probePaths[c.Path()]:
			level = slog.LevelDebug
		}
		if !logger.Enabled(c.Context(), level) {
			return err
		}

		logger.Log(c.Context(), level, "http request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("route", c.Route().Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.IP()),
			slog.String("user_agent", c.Get("User-Agent")),
			slog.Any("request_id", c.Locals(requestIDKey)),
		)

		return err
	}
}
