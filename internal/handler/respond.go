package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/halcyon-labs/emblem/internal/domain"
)

// errorEnvelope is the stable error response shape.
type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMapping pairs a domain sentinel with its HTTP representation.
type errorMapping struct {
	sentinel error
	status   int
	code     string
}

// errorMappings is checked in order; the first matching sentinel wins.
var errorMappings = []errorMapping{
	{domain.ErrMissingField, http.StatusBadRequest, "missing_field"},
	{domain.ErrNoUpdateFields, http.StatusBadRequest, "no_update_fields"},
	{domain.ErrInvalidCertStatus, http.StatusBadRequest, "invalid_cert_status"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{domain.ErrBadgeNotFound, http.StatusNotFound, "badge_not_found"},
	{domain.ErrAchievementNotFound, http.StatusNotFound, "achievement_not_found"},
	{domain.ErrCertificationNotFound, http.StatusNotFound, "certification_not_found"},
	{domain.ErrUserAlreadyExists, http.StatusConflict, "user_already_exists"},
	{domain.ErrBadgeAlreadyAwarded, http.StatusConflict, "badge_already_awarded"},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a service error to its HTTP status and stable error
// code. Unmapped errors become an opaque 500; their detail stays in the
// server log, never in the response.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			writeJSON(w, m.status, errorEnvelope{Error: errorBody{
				Code:    m.code,
				Message: m.sentinel.Error(),
			}})
			return
		}
	}

	logger.Error().Err(err).Msg("unmapped error in handler")
	writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: errorBody{
		Code:    "internal_error",
		Message: "internal server error",
	}})
}

// writeBadRequest reports a malformed request body or parameter.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
		Code:    "bad_request",
		Message: message,
	}})
}
