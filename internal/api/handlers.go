package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/atlas-digital/agency-engine/internal/calculator"
	"github.com/atlas-digital/agency-engine/internal/models"
	"github.com/atlas-digital/agency-engine/internal/submit"
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

// respondRaw writes a payload without the response envelope. Submission
// results already carry their own success flag for the widget.
func respondRaw(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Calculator handlers

func (s *Server) handleGetCalculatorConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.calculator.Config(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "config_unavailable", "calculator configuration is unavailable")
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var sel models.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cfg, err := s.calculator.Config(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "config_unavailable", "calculator configuration is unavailable")
		return
	}

	quote, err := calculator.ComputeQuote(cfg, sel)
	if err != nil {
		switch {
		case errors.Is(err, calculator.ErrIncompleteSelection):
			respondError(w, http.StatusBadRequest, "incomplete_selection", err.Error())
		case errors.Is(err, calculator.ErrInvalidSelection):
			respondError(w, http.StatusBadRequest, "invalid_selection", err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute quote")
		}
		return
	}

	respondJSON(w, http.StatusOK, quote)
}

// Submission handlers

func (s *Server) handleSubmitCalculator(w http.ResponseWriter, r *http.Request) {
	var req submit.CalculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := s.submitter.SubmitCalculator(r.Context(), req)
	if err != nil {
		if errors.Is(err, submit.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit")
		return
	}

	respondRaw(w, http.StatusOK, result)
}

func (s *Server) handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var req submit.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := s.submitter.SubmitContact(r.Context(), req)
	if err != nil {
		if errors.Is(err, submit.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit")
		return
	}

	respondRaw(w, http.StatusOK, result)
}
