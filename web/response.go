package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope provides a consistent JSON response structure.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, env Envelope, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	env.Success = status < 400
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func success(w http.ResponseWriter, data any, logger *slog.Logger) {
	writeJSON(w, http.StatusOK, Envelope{Data: data}, logger)
}

func failure(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, Envelope{Error: message}, logger)
}
