package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a 400 error for malformed or out-of-range input.
// Structural validation always runs before authorization checks.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrAccountInactive() *AppError {
	return New("AUTH_004", "Account is inactive", http.StatusForbidden)
}

// ---- Authorization (PERM) ----

// Forbidden reports a role mismatch for the attempted action.
func Forbidden(message string) *AppError {
	return New("PERM_001", message, http.StatusForbidden)
}

// ---- Not Found (NF) ----

func ErrNotFound(entity string) *AppError {
	return New("NF_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ErrStudentQRNotFound reports a scan code that resolves to no student.
// Teacher codes deliberately fall into this bucket too.
func ErrStudentQRNotFound() *AppError {
	return New("NF_001", "Student not found with this QR code", http.StatusNotFound)
}

// ---- Points Business Logic (PTS) ----

func ErrInsufficientPoints() *AppError {
	return New("PTS_001", "Insufficient points balance", http.StatusPaymentRequired)
}

func ErrOutOfStock(product string) *AppError {
	return New("PTS_002", fmt.Sprintf("%s is out of stock", product), http.StatusUnprocessableEntity)
}

// ---- Conflict (CONF) ----

// Conflict is reserved for duplicate-submission prevention on the award
// path. Nothing raises it today: awards carry no idempotency key, so a
// retried request awards again.
func Conflict(message string) *AppError {
	return New("CONF_001", message, http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an unexpected failure as a SYS_001 error. The
// client sees only the generic message; the wrapped cause stays in logs.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
