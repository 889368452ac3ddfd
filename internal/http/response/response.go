package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atlastrek/tours/internal/domain"
	"github.com/atlastrek/tours/pkg/logger"
)

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error codes
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeEmailDelivery      = "EMAIL_DELIVERY_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// Error is the single boundary mapping domain errors to HTTP responses.
// Everything unrecognized becomes an opaque 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error(), CodeInvalidCredentials)
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error(), CodeUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, domain.ErrForbidden.Error(), CodeForbidden)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, domain.ErrNotFound.Error(), CodeNotFound)
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusConflict, domain.ErrEmailTaken.Error(), CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidResetToken):
		WriteError(w, http.StatusBadRequest, domain.ErrInvalidResetToken.Error(), CodeInvalidToken)
	case errors.Is(err, domain.ErrEmailDelivery):
		WriteError(w, http.StatusInternalServerError, domain.ErrEmailDelivery.Error(), CodeEmailDelivery)
	default:
		logger.ErrorContext(r.Context(), "Unhandled error", "error", err, "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "something went wrong", CodeInternalError)
	}
}
