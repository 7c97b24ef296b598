package serverutils

import (
	"errors"

	"ai-tutoring-be/pkg/tutor"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps the tutoring error taxonomy onto HTTP
// statuses. Handlers can return classified errors directly instead of
// building status responses by hand.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, tutor.ErrValidation):
			status = fiber.StatusBadRequest
		case errors.Is(err, tutor.ErrAuth):
			status = fiber.StatusUnauthorized
		case errors.Is(err, tutor.ErrGeneration):
			status = fiber.StatusBadGateway
		case errors.Is(err, tutor.ErrPersistence):
			status = fiber.StatusInternalServerError
		default:
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		return ctx.Status(status).JSON(ErrorResponse(err.Error()))
	}
}
