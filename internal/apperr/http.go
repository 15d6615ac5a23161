package apperr

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// ErrorResponse is the stable external error shape.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody pairs a machine-readable code with a human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPStatus maps an error kind to its status code. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Code maps an error kind to its stable machine-readable code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	default:
		return "INTERNAL_ERROR"
	}
}

// WriteJSON renders err as the external error envelope. Internal errors are
// logged with full detail and rendered with a generic message; every other
// kind renders its message verbatim since those are safe and actionable.
func WriteJSON(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message := Message(err)

	if status == http.StatusInternalServerError {
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		message = "An internal error occurred"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorBody{Code: Code(err), Message: message},
	})
}
