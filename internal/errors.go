package internal

import (
	"errors"
	"fmt"
)

// Error categories. Write-path failures are wrapped around one of these so
// callers can decide to retry, ignore, or alert by matching with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrQuotaExceeded   = errors.New("storage quota exceeded")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNetwork         = errors.New("network error")
	ErrServer          = errors.New("server error")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
