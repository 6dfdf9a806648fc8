package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) Response {
	return Response{Success: false, Message: message}
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into the
// standard envelope instead of Fiber's default text response.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
		}
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			code = fiber.StatusBadRequest
			message = valErr.Error()
		}

		return ctx.Status(code).JSON(ErrorResponse(message))
	}
}
