package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/reelspot/backend/internal/infrastructure/observability"
	apperrors "github.com/reelspot/backend/pkg/errors"
)

const maxRequestBodyBytes = 1 << 20

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError answers with the status and message of an AppError.
// External errors also carry their details, null when there are none.
func respondWithAppError(w http.ResponseWriter, err error, fallback string) {
	appErr, ok := apperrors.As(err)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, fallback)
		return
	}

	status := apperrors.HTTPStatus(appErr)
	if appErr.Type == apperrors.ErrorTypeExternal {
		var details *string
		if appErr.Details != "" {
			details = &appErr.Details
		}
		respondWithJSON(w, status, map[string]interface{}{
			"error":   appErr.Message,
			"details": details,
		})
		return
	}
	respondWithError(w, status, appErr.Message)
}

// decodeJSONBody decodes a JSON object body. An empty body decodes to the zero value.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// decodeBodyOrZero decodes the body into dst. A malformed body is logged at
// debug and leaves dst zeroed, so field validation produces the 400.
func decodeBodyOrZero[T any](r *http.Request, dst *T) {
	if err := decodeJSONBody(r, dst); err != nil {
		observability.LoggerFromContext(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Request body is not valid JSON")
		var zero T
		*dst = zero
	}
}

func stringValue(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func numberValue(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
