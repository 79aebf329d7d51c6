package errors

import "net/http"

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, format, args...)
}

func UnprocessableEntity(format string, args ...any) *Error {
	return New(http.StatusUnprocessableEntity, format, args...)
}

func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

func BadGateway(format string, args ...any) *Error {
	return New(http.StatusBadGateway, format, args...)
}

// IsUnauthorized reports whether err carries a 401 code.
func IsUnauthorized(err error) bool {
	return Code(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err carries a 404 code.
func IsNotFound(err error) bool {
	return Code(err) == http.StatusNotFound
}
