package serverutils

import (
	"errors"

	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the error envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, log, err)
	}
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler for errors
// raised outside the middleware chain (routing, body limits).
func FiberErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		return WriteError(ctx, log, err)
	}
}

func WriteError(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	if appErr, ok := apperror.As(err); ok {
		status := appErr.Kind.Status()
		if status >= fiber.StatusInternalServerError {
			log.Error("HTTP", appErr.Message, map[string]interface{}{
				"path":  ctx.Path(),
				"kind":  string(appErr.Kind),
				"error": err,
			})
		}
		return ctx.Status(status).JSON(ErrorBody{
			Status:   status,
			Code:     string(appErr.Kind),
			Message:  appErr.Message,
			Details:  appErr.Details,
			Fallback: appErr.Fallback,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorBody{
			Status:  fiberErr.Code,
			Code:    kindForStatus(fiberErr.Code),
			Message: fiberErr.Message,
		})
	}

	log.Error("HTTP", "unhandled error", map[string]interface{}{
		"path":   ctx.Path(),
		"method": ctx.Method(),
		"error":  err,
	})
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{
		Status:  fiber.StatusInternalServerError,
		Code:    string(apperror.KindInternal),
		Message: "Internal server error",
	})
}

func kindForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
		return string(apperror.KindValidation)
	case fiber.StatusUnauthorized:
		return string(apperror.KindAuth)
	case fiber.StatusForbidden:
		return string(apperror.KindForbidden)
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return string(apperror.KindNotFound)
	default:
		return string(apperror.KindInternal)
	}
}
