package handlers

import (
	"context"
	"net/http"
	"time"

	"kgms-backend/pkg/common"
	apperrors "kgms-backend/pkg/errors"

	"go.uber.org/zap"
)

// AvailableEndpoints is advertised by the info and fallback responses
var AvailableEndpoints = []string{"/api/nodes", "/api/edges", "/api/health", "/api"}

// HealthChecker reports whether the graph store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves info, health and fallback responses
type SystemHandler struct {
	name        string
	version     string
	environment string
	store       HealthChecker
	errors      *apperrors.ErrorHandler
	logger      *zap.Logger
}

// NewSystemHandler creates a new system handler. store may be nil.
func NewSystemHandler(
	name, version, environment string,
	store HealthChecker,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *SystemHandler {
	return &SystemHandler{
		name:        name,
		version:     version,
		environment: environment,
		store:       store,
		errors:      errorHandler,
		logger:      logger,
	}
}

// Info handles GET / and GET /api
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"name":        h.name,
		"version":     h.version,
		"environment": h.environment,
		"endpoints": map[string]string{
			"nodes":  "/api/nodes",
			"edges":  "/api/edges",
			"health": "/api/health",
			"docs":   "/api/docs",
		},
	})
}

// Health handles GET /health and GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready and checks the store connection
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.errors.Handle(w, r, apperrors.NewUnavailableError("graph store").WithCause(err))
			return
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  "ready",
	})
}

// NotFound answers unknown routes with the list of available endpoints
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusNotFound, map[string]interface{}{
		"success":            false,
		"message":            "Route not found",
		"requestedUrl":       r.URL.RequestURI(),
		"availableEndpoints": AvailableEndpoints,
	})
}

// MethodNotAllowed answers known routes called with the wrong verb
func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.errors.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
