package http

import (
	"net/http"
	"time"

	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/httpx"
)

// HealthHandler reports liveness plus a database ping.
func HealthHandler(startTime time.Time, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": time.Since(startTime).String(),
		})
	}
}
