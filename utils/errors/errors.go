package errors

import (
	"fmt"
	"net/http"
)

// APIError represents a custom error type for API responses.
// Only Message reaches the client; Code and Details are for the logs.
type APIError struct {
	Code    string `json:"-"`
	Message string `json:"error"`
	Status  int    `json:"-"`
	Details string `json:"-"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeStore      = "STORE_ERROR"
)

var (
	ErrInvalidInput = NewAPIError(CodeValidation, "Requête invalide.", http.StatusBadRequest)
	ErrNotFound     = NewAPIError(CodeNotFound, "Ressource non trouvée.", http.StatusNotFound)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Erreur interne du serveur.", http.StatusInternalServerError)

	ErrRouteNotFound    = NewAPIError(CodeNotFound, "Route introuvable.", http.StatusNotFound)
	ErrMethodNotAllowed = NewAPIError("METHOD_NOT_ALLOWED", "Méthode non autorisée.", http.StatusMethodNotAllowed)
)

// Validation reports missing or invalid input (400).
func Validation(message string, details ...string) *APIError {
	return NewAPIError(CodeValidation, message, http.StatusBadRequest, details...)
}

// NotFound reports an unknown id or an empty bulk match (404).
func NotFound(message string) *APIError {
	return NewAPIError(CodeNotFound, message, http.StatusNotFound)
}

// Store wraps a persistence failure with a fixed client message (500).
func Store(err error, message string) *APIError {
	return Wrap(err, CodeStore, message, http.StatusInternalServerError)
}

func Wrap(err error, code, message string, status int) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewAPIError(code, message, status, details)
}
