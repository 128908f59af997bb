package server

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/jrsteele09/ga-dashboard/internal/logging"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger().Error().Err(err).Msg("[server] failed to write response")
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
