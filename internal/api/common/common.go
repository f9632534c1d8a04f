package common

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// contextKey for the authenticated caller
type contextKey string

var SubjectContextKey contextKey = "subject"

// GetSubjectFromContext haalt de 'sub' claim op die door de middleware in de context is gezet.
// Zonder authenticatie is die leeg.
func GetSubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(SubjectContextKey).(string)
	return sub
}

// WriteJSON schrijft een standaard JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error(
			"failed to write JSON response",
			zap.Error(err),
			zap.Int("status", status),
			zap.String("component", "api"),
		)
	}
}

// WriteJSONError schrijft een standaard JSON error response
func WriteJSONError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	WriteJSON(w, status, map[string]string{"error": message}, logger)
}
