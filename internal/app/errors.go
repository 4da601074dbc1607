package app

import (
	"errors"
	"fmt"
	"net/http"

	"ucsbexample/api/internal/auth"
)

const (
	typeEntityNotFound = "EntityNotFoundException"
	typeValidation     = "ValidationException"
	typeAccessDenied   = "AccessDeniedException"
	typeNotFound       = "NotFound"
	typeMethod         = "MethodNotAllowed"
	typeUnauthorized   = "Unauthorized"
	typeRateLimited    = "TooManyRequests"
	typeServer         = "InternalServerError"
)

type DomainError struct {
	Status  int
	Type    string
	Message string
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func domainError(status int, errorType, message string) *DomainError {
	return &DomainError{
		Status:  status,
		Type:    errorType,
		Message: message,
	}
}

func validationError(format string, args ...any) *DomainError {
	return domainError(http.StatusBadRequest, typeValidation, fmt.Sprintf(format, args...))
}

// EntityNotFoundError reports a key with no stored entity of the named type.
type EntityNotFoundError struct {
	Type string
	Key  any
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Type, e.Key)
}

// mapError converts an error into the status, type and message written to
// the client. The boolean reports whether the error is unexpected and should
// be logged.
func mapError(err error) (status int, errorType, message string, unexpected bool) {
	var notFound *EntityNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, typeEntityNotFound, notFound.Error(), false
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Type, domainErr.Message, false
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusForbidden, typeAccessDenied, "Access is denied", false
	}
	return http.StatusInternalServerError, typeServer, "Server error", true
}
