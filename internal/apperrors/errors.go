// Package apperrors defines the error taxonomy shared by services and handlers
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericMessage is returned to clients for every unexpected failure
const GenericMessage = "Some error occurred. Please contact administrator."

// Error is an expected failure carrying the HTTP status and the client-facing message
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

var (
	ErrUserAlreadyExists  = &Error{Code: http.StatusConflict, Message: "A user with that email already exists!"}
	ErrInvalidCredentials = &Error{Code: http.StatusUnauthorized, Message: "Email and password do not match."}
	ErrNotAuthenticated   = &Error{Code: http.StatusUnauthorized, Message: "Authentication credentials were not provided."}
	ErrInvalidToken       = &Error{Code: http.StatusUnauthorized, Message: "Given token not valid for any token type."}
	ErrUserNotFound       = &Error{Code: http.StatusUnauthorized, Message: "User not found."}
	ErrUserInactive       = &Error{Code: http.StatusUnauthorized, Message: "User is inactive."}
	ErrRequestTooLarge    = &Error{Code: http.StatusRequestEntityTooLarge, Message: "Request body too large."}
	ErrInternal           = &Error{Code: http.StatusInternalServerError, Message: GenericMessage}
)

// PermissionDenied returns a 403 error with the given message
func PermissionDenied(message string) *Error {
	if message == "" {
		message = "You do not have permission to perform this action."
	}
	return &Error{Code: http.StatusForbidden, Message: message}
}

// Store-level sentinels, translated by services into client-facing errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError maps a request field to the first validation message for that field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

// GetStatus returns the HTTP status for err. Unknown errors are 500.
func GetStatus(err error) int {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return http.StatusInternalServerError
}

// GetMessage returns the client-facing message for err.
// Unknown errors never leak their text.
func GetMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return GenericMessage
}

// IsExpected reports whether err belongs to the taxonomy and can be returned to the client as is
func IsExpected(err error) bool {
	var validationErr *ValidationError
	var appErr *Error
	return errors.As(err, &validationErr) || (errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError)
}
