package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Recover turns a handler panic into ErrInternal, so the response goes
// through ErrorHandler and is counted by Metrics like any other failure.
func Recover(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			logger.Error("handler panicked",
				slog.String("route", c.Route().Path),
				slog.String("method", c.Method()),
				slog.Any("request_id", c.Locals(requestIDKey)),
				slog.Any("panic", cause),
				slog.String("stack", string(debug.Stack())),
			)
			err = domain.ErrInternal.WithError(fmt.Errorf("panic: %w", cause))
		}()
		return c.Next()
	}
}
