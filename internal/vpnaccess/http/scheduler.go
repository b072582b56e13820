package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/service"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/httpx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

// SchedulerHandler handles the scheduler control endpoints.
type SchedulerHandler struct {
	Scheduler *service.Scheduler
}

// HandleControl handles POST /v1/sync/scheduler
//
//	@Summary		Start or stop the scheduler
//	@Description	Starting is idempotent while running; stopping never interrupts a run
//	@Description	that is already in flight.
//	@Tags			Scheduler
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SchedulerControlRequest		true	"Desired action"
//	@Success		200		{object}	SchedulerControlResponse	"Resulting state"
//	@Failure		400		{object}	httpx.ErrorResponse			"Unknown action"
//	@Router			/v1/sync/scheduler [post].
func (h *SchedulerHandler) HandleControl(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SchedulerControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Action must be 'start' or 'stop'")
		return
	}

	switch req.Action {
	case "start":
		h.Scheduler.Start()
		log.Info("scheduler started via api")
	case "stop":
		h.Scheduler.Stop()
		log.Info("scheduler stopped via api")
	}

	state := h.Scheduler.State()
	httpx.WriteJSON(w, http.StatusOK, SchedulerControlResponse{
		IsRunning:       state.IsRunning,
		IntervalMinutes: state.IntervalMinutes,
	})
}

// HandleSetInterval handles PUT /v1/sync/scheduler/interval
//
//	@Summary		Change the sync interval
//	@Description	Takes effect from the next tick. A run already in flight is never disturbed.
//	@Tags			Scheduler
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		SchedulerIntervalRequest	true	"Interval in minutes, 1 to 60"
//	@Success		200		{object}	SchedulerIntervalResponse	"Accepted interval"
//	@Failure		400		{object}	httpx.ErrorResponse			"Interval out of range"
//	@Router			/v1/sync/scheduler/interval [put].
func (h *SchedulerHandler) HandleSetInterval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SchedulerIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	if err := h.Scheduler.UpdateInterval(req.IntervalMinutes); err != nil {
		if errors.Is(err, service.ErrInvalidInterval) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		log.Error("interval update failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to update interval")
		return
	}

	log.Info("sync interval updated", "interval_minutes", req.IntervalMinutes)

	state := h.Scheduler.State()
	httpx.WriteJSON(w, http.StatusOK, SchedulerIntervalResponse{
		IntervalMinutes:    state.IntervalMinutes,
		ScheduleExpression: state.ScheduleExpression,
		IsRunning:          state.IsRunning,
	})
}

// HandleState handles GET /v1/sync/scheduler
//
//	@Summary	Scheduler state
//	@Tags		Scheduler
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	domain.SchedulerState	"Current state"
//	@Router		/v1/sync/scheduler [get].
func (h *SchedulerHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Scheduler.State())
}

// HandleHistory handles GET /v1/sync/runs
//
//	@Summary		Recent sync runs
//	@Description	Most recent first, bounded in memory. Restarts clear it.
//	@Tags			Scheduler
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}	domain.SyncRun	"Recent runs"
//	@Router			/v1/sync/runs [get].
func (h *SchedulerHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.Scheduler.History())
}
