package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/box-office/internal/catalog"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondViewError maps engine errors onto the JSON envelope
func respondViewError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrUnknownCategory) {
		respondError(w, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}
	slog.Error("failed to compute view", "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute view")
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	state := s.stateFor(r)
	if !state.Loaded() {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "catalog not loaded")
		return
	}

	if s.health != nil {
		if status := s.health.Status(r.Context()); !status.Healthy {
			respondError(w, http.StatusServiceUnavailable, "not_ready", "catalog source unavailable")
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"state_id": state.ID,
		"records":  state.Len(),
	})
}

// State handler

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	state := s.stateFor(r)
	if state == nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "catalog not loaded")
		return
	}
	respondJSON(w, http.StatusOK, state.Summary())
}
