package serverutils

import (
	"errors"

	"mindease-be/pkg/rag/ragerr"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper lets callers map their own sentinel errors to a status code
type StatusMapper func(err error) (int, bool)

// ErrorHandlerMiddleware turns any error returned down the chain into the JSON error envelope
func ErrorHandlerMiddleware(mappers ...StatusMapper) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, body := resolve(err, mappers)
		return ctx.Status(code).JSON(body)
	}
}

func resolve(err error, mappers []StatusMapper) (int, *ErrorResponseBody) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		body := ErrorResponse(fiber.StatusBadRequest, verr.Error())
		body.Errors = verr.Fields
		return fiber.StatusBadRequest, body
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ErrorResponse(ferr.Code, ferr.Message)
	}

	for _, m := range mappers {
		if code, ok := m(err); ok {
			return code, ErrorResponse(code, err.Error())
		}
	}

	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ragerr.ErrSessionNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, ragerr.ErrUnsupportedModel):
		code = fiber.StatusBadRequest
	case errors.Is(err, ragerr.ErrRemoteTimeout):
		code = fiber.StatusGatewayTimeout
	case errors.Is(err, ragerr.ErrRemoteQuery):
		code = fiber.StatusBadGateway
	}
	return code, ErrorResponse(code, err.Error())
}
