// Package response renders the JSON envelopes returned by catchmail's API.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apperrors "github.com/welldanyogia/webrana-catchmail/internal/errors"
)

// StatusRecipientRejected is returned when a message is not for the target inbox
const StatusRecipientRejected = 550

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the body of every failed API call.
// Status repeats the HTTP status so callers reading only the body can branch on it.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Success returns a successful response with data
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Message: message})
}

// Error renders err with the status implied by its application code
func Error(c echo.Context, err error) error {
	code := apperrors.GetErrorCode(err)
	return fail(c, HTTPStatus(code), code, err.Error())
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string) error {
	return fail(c, http.StatusBadRequest, apperrors.CodeInvalidInput, message)
}

// NotFound returns a 404 Not Found response
func NotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, apperrors.CodeNotFound, message)
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context, message string) error {
	return fail(c, http.StatusInternalServerError, apperrors.CodeInternalError, message)
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{
		Success: false,
		Status:  status,
		Error:   message,
		Code:    code,
	})
}

// HTTPStatus maps error codes to HTTP status codes
func HTTPStatus(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeRecipientRejected:
		return StatusRecipientRejected
	default:
		return http.StatusInternalServerError
	}
}
