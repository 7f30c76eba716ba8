package handlers

import (
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/anjaswicak/test-fullstack/internal/apperr"
	"github.com/anjaswicak/test-fullstack/internal/dto"
	"github.com/anjaswicak/test-fullstack/internal/identity"
	"github.com/anjaswicak/test-fullstack/internal/pagination"
)

// writeError renders err as {"error": msg}. Domain errors carry their own
// status and message; anything else is logged, reported and answered with a
// generic 400.
func writeError(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		return c.Status(apperr.Status(err)).JSON(dto.ErrorResponse{Error: e.Message})
	}

	attrs := []any{
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"error", err.Error(),
	}
	if userID, idErr := identity.UserID(c); idErr == nil {
		attrs = append(attrs, "user_id", userID)
	}
	slog.Error("request failed", attrs...)

	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Bad Request"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
}

// paramID reads a positive numeric path parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func pageQuery(c *fiber.Ctx) pagination.Query {
	return pagination.Query{
		Page:   c.QueryInt("page"),
		Offset: c.QueryInt("offset"),
		Limit:  c.QueryInt("limit"),
	}
}
