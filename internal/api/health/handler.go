package health

import (
	"encoding/json"
	"net/http"
	"time"

	"delphi/internal/adapters/ai"
	"delphi/internal/cache"
	"delphi/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	store       *cache.Store
	registry    *ai.ProviderRegistry
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler
func New(
	log *logger.Logger,
	store *cache.Store,
	registry *ai.ProviderRegistry,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		store:       store,
		registry:    registry,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service     string                     `json:"service"`
	Version     string                     `json:"version"`
	Uptime      string                     `json:"uptime"`
	Timestamp   string                     `json:"timestamp"`
	Checks      map[string]ComponentHealth `json:"checks"`
	ErrorDetail string                     `json:"error_detail,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ComponentHealth)
	allHealthy := true

	// Check analysis cache directory
	cacheHealth := h.checkCache()
	checks["cache"] = cacheHealth
	if cacheHealth.Status != "healthy" {
		allHealthy = false
	}

	// Check chat provider registry
	providerHealth := h.checkProviders()
	checks["ai_providers"] = providerHealth
	if providerHealth.Status != "healthy" {
		allHealthy = false
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]ComponentHealth)
	healthyCount := 0
	totalCount := 0

	// Check analysis cache directory
	totalCount++
	cacheHealth := h.checkCache()
	checks["cache"] = cacheHealth
	if cacheHealth.Status == "healthy" {
		healthyCount++
	}

	// Check chat provider registry
	totalCount++
	providerHealth := h.checkProviders()
	checks["ai_providers"] = providerHealth
	if providerHealth.Status == "healthy" {
		healthyCount++
	}

	// Determine overall status
	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK

	if healthyCount == 0 {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if healthyCount < totalCount {
		status.Status = "degraded"
		statusCode = http.StatusOK // Still return 200 for degraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// checkCache verifies the analysis cache directory is reachable
func (h *Handler) checkCache() ComponentHealth {
	start := time.Now()
	err := h.store.Ping()
	elapsed := time.Since(start)

	if err != nil {
		h.log.Error("Cache health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

// checkProviders verifies at least one chat provider is registered
func (h *Handler) checkProviders() ComponentHealth {
	if len(h.registry.Names()) == 0 {
		return ComponentHealth{
			Status: "unhealthy",
			Error:  "no chat providers registered",
		}
	}

	return ComponentHealth{
		Status: "healthy",
	}
}
