// Package respond writes the JSON bodies shared by every HTTP handler:
// success payloads, {"error": "..."} bodies and the domain-error mapping.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/domain"

	"go.uber.org/zap"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON encodes data with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// ServiceError maps domain errors to HTTP status codes. Anything it does
// not recognise is logged and answered with a generic 500.
func ServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var notFound *domain.ErrNotFound
	var unauthorized *domain.ErrUnauthorized

	switch {
	case errors.As(err, &validation):
		Error(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		Error(w, http.StatusUnauthorized, unauthorized.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		Error(w, http.StatusNotFound, err.Error())
	default:
		logger.Error("unexpected handler error", zap.Error(err))
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}
