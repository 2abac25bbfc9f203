package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"pagewidth/core"
	"pagewidth/logger"
	"pagewidth/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, models.ErrorResponse{Message: fmt.Sprintf(format, args...)})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	return nil
}

// queryURL reads and parses the url query parameter.
func queryURL(r *http.Request) (*url.URL, error) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return nil, fmt.Errorf("missing url query parameter")
	}
	return core.ParsePageURL(raw)
}
