package http

import (
	"net/http"
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/httpx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	Store     store.Store
	Version   string
	StartedAt time.Time
}

// HandleLivez handles GET /livez
//
//	@Summary		Liveness probe
//	@Description	Reports that the process is up. Does not touch dependencies.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"Alive"
//	@Router			/livez [get].
func (h *HealthHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.StartedAt).Round(time.Second).String(),
		Version: h.Version,
	})
}

// HandleReadyz handles GET /readyz
//
//	@Summary		Readiness probe
//	@Description	Verifies the database is reachable. The external VPN store is
//	@Description	deliberately excluded: its outages degrade syncing, not the API.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"Ready"
//	@Failure		503	{object}	HealthResponse	"A dependency is down"
//	@Router			/readyz [get].
func (h *HealthHandler) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(h.StartedAt).Round(time.Second).String(),
		Version: h.Version,
		Checks:  &HealthChecks{Database: "ok"},
	}

	status := http.StatusOK
	if err := h.Store.Ping(r.Context()); err != nil {
		slogx.FromContext(r.Context()).Error("readiness check failed", "error", err)
		resp.Status = "degraded"
		resp.Checks.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	httpx.WriteJSON(w, status, resp)
}
