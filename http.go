package auth

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorBody is the JSON envelope for error responses.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Message  string         `json:"message"`
	TextCode string         `json:"text_code,omitempty"`
	Category string         `json:"category,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewErrorHandler returns a fiber error handler rendering go-errors values
// as JSON with their HTTP code.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = resolveLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		richErr := AsRichError(err)
		status := StatusCode(richErr)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"path", c.Path(),
				"method", c.Method(),
				"error", err,
			)
		} else {
			logger.Debug("request rejected",
				"path", c.Path(),
				"status", status,
				"text_code", richErr.TextCode,
				"details", print.MaybePrettyJSON(richErr.Metadata),
			)
		}

		payload := ErrorPayload{
			Message:  richErr.Message,
			TextCode: richErr.TextCode,
			Category: fmt.Sprint(richErr.Category),
		}
		if status < http.StatusInternalServerError {
			payload.Metadata = richErr.Metadata
		}

		return c.Status(status).JSON(ErrorBody{Error: payload})
	}
}

// AsRichError converts any error into a *goerrors.Error. Fiber errors keep
// their status, ozzo validation errors become 400 with per field messages and
// everything else is an internal error.
func AsRichError(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		category := goerrors.CategoryInternal
		switch {
		case fiberErr.Code == http.StatusNotFound:
			category = goerrors.CategoryNotFound
		case fiberErr.Code < http.StatusInternalServerError:
			category = goerrors.CategoryBadInput
		}
		return goerrors.New(fiberErr.Message, category).WithCode(fiberErr.Code)
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return NewValidationError(fieldErrs)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(goerrors.CodeInternal)
}

// NewValidationError builds a 400 error listing the failing fields.
func NewValidationError(fieldErrs validation.Errors) *goerrors.Error {
	fields := make(map[string]any, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return goerrors.New("request validation failed", goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"fields": fields})
}

// StatusCode resolves the HTTP status for err, falling back to its category.
func StatusCode(err *goerrors.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.Code >= 400 && err.Code < 600 {
		return err.Code
	}

	switch err.Category {
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
