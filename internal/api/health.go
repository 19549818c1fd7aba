package api

import (
	"net/http"
	"time"

	"github.com/echomap/echomap/internal/api/respond"
)

// healthHandler reports aggregated service health.
// Always returns 200; the body says healthy/unhealthy.
func healthHandler(isHealthy func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "unhealthy"
		if isHealthy == nil || isHealthy() {
			status = "healthy"
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
