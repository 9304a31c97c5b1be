package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ApiError carries an HTTP status alongside a client-safe message.
type ApiError struct {
	Code    int
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *ApiError {
	return &ApiError{Code: fiber.StatusNotFound, Message: message}
}

func NewValidationError(message string) *ApiError {
	return &ApiError{Code: fiber.StatusBadRequest, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct-tag validation and converts failures into
// a 400-shaped ApiError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into
// JSON envelopes. Per-request failures must never terminate the process.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Code).JSON(ErrorResponse(apiErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(err.Error()))
	}
}
