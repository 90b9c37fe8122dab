// Package api provides the HTTP boundary for application submission.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/capcheck-io/capcheck/internal/application/dto"
	"github.com/capcheck-io/capcheck/internal/application/services"
)

// Handler exposes the application validator over HTTP.
type Handler struct {
	validator *services.ApplicationValidator
	logger    *slog.Logger
}

// NewHandler creates an API handler around a configured validator.
func NewHandler(validator *services.ApplicationValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		validator: validator,
		logger:    logger,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)

	r.Get("/health", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/applications/submit", h.handleSubmit)
	})

	return r
}

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleSubmit validates one submitted application. Validation failures are
// client-input faults: the first violation comes back verbatim with a 400.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	var req dto.ApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("malformed submit payload", "request_id", requestID, "error", err)
		h.writeJSON(w, http.StatusBadRequest, dto.SubmitResult{
			RequestID: requestID,
			Status:    "rejected",
			Error:     "malformed request body: " + err.Error(),
		})
		return
	}

	h.logger.Info("application received",
		"request_id", requestID,
		"system", req.SystemCode,
		"capabilities", req.Capabilities)

	if err := h.validator.Validate(&req); err != nil {
		h.logger.Info("application rejected",
			"request_id", requestID,
			"system", req.SystemCode,
			"violation", err.Error())
		h.writeJSON(w, http.StatusBadRequest, dto.SubmitResult{
			RequestID: requestID,
			Status:    "rejected",
			Error:     err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, dto.SubmitResult{
		RequestID: requestID,
		Status:    "accepted",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
