package common

import (
	"fmt"
	"net/http"
)

// AppError is an application error carrying an HTTP status and a stable
// machine-readable code alongside the human message.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewBadRequestError creates a 400 error for caller-supplied bad input
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{Code: "bad_request", Message: message, Status: http.StatusBadRequest, Err: err}
}

// NewUnauthorizedError creates a 401 error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: "unauthorized", Message: message, Status: http.StatusUnauthorized}
}

// NewForbiddenError creates a 403 error
func NewForbiddenError(message string) *AppError {
	return &AppError{Code: "forbidden", Message: message, Status: http.StatusForbidden}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Code: "not_found", Message: message, Status: http.StatusNotFound, Err: err}
}

// NewConflictError creates a 409 error for precondition violations, e.g.
// resolving a charge that is no longer in the expected state.
func NewConflictError(message string) *AppError {
	return &AppError{Code: "conflict", Message: message, Status: http.StatusConflict}
}

// NewUnprocessableError creates a 422 error for semantically invalid input
func NewUnprocessableError(message string) *AppError {
	return &AppError{Code: "unprocessable", Message: message, Status: http.StatusUnprocessableEntity}
}

// NewInternalServerError creates a 500 error
func NewInternalServerError(message string) *AppError {
	return &AppError{Code: "internal_error", Message: message, Status: http.StatusInternalServerError}
}

// NewInternalError creates a 500 error wrapping a cause
func NewInternalError(message string, err error) *AppError {
	return &AppError{Code: "internal_error", Message: message, Status: http.StatusInternalServerError, Err: err}
}

// NewServiceUnavailableError creates a 503 error for downstream outages
func NewServiceUnavailableError(message string) *AppError {
	return &AppError{Code: "service_unavailable", Message: message, Status: http.StatusServiceUnavailable}
}

// NewPaymentFailedError reports a payment processor decline. The processor's
// own message is preserved so operators can see the decline reason.
func NewPaymentFailedError(message string, err error) *AppError {
	return &AppError{Code: "payment_failed", Message: message, Status: http.StatusBadGateway, Err: err}
}
