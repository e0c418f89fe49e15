package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// semesterParam reads a semester from a path or query value. Empty yields
// zero when optional is set.
func semesterParam(raw string, optional bool) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if optional {
			return 0, nil
		}
		return 0, domain.ErrValidationFailed.WithError(errors.New("semester is required"))
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !domain.ValidSemester(n) {
		return 0, domain.ErrInvalidSemester
	}
	return n, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrBadRequest.WithMessage("Invalid request body").WithError(err)
	}
	return nil
}

func sendWorkbook(c *fiber.Ctx, filename string, data []byte) error {
	c.Set(fiber.HeaderContentType, xlsxMIME)
	c.Attachment(filename)
	return c.Send(data)
}
