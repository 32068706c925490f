package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zatekoja/restaurantdiscovery/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/restaurantdiscovery/backend/pkg/errors"
)

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// writeAppError maps application errors to HTTP responses. Internal causes are logged and
// never written to the client.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError("internal server error", err)
	}

	switch appErr.Type {
	case apperrors.ErrorTypeValidation:
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: appErr.Message, Details: appErr.Details})
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeLocationNotFound:
		respondWithError(w, http.StatusNotFound, "location not found")
	case apperrors.ErrorTypeExternal:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Upstream service failed")
		respondWithError(w, http.StatusBadGateway, "upstream service unavailable")
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
