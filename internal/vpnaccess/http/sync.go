package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/ovpn"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/service"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/httpx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

// SyncHandler handles the reconciliation endpoints.
type SyncHandler struct {
	SyncService *service.SyncService
}

// HandleFullSync handles POST /v1/sync/full
//
//	@Summary		Run a full reconciliation
//	@Description	Diffs the directory against the external VPN store and applies the resulting actions.
//	@Description	Always returns 200 with a run summary (including per-user errors) unless the external
//	@Description	store is unreachable, in which case partial results come back with 503.
//	@Tags			Sync
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		FullSyncRequest		false	"Run options"
//	@Success		200		{object}	domain.SyncRun		"Run summary"
//	@Failure		409		{object}	httpx.ErrorResponse	"A run is already in progress"
//	@Failure		503		{object}	domain.SyncRun		"External store unreachable, partial results"
//	@Router			/v1/sync/full [post].
func (h *SyncHandler) HandleFullSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// An empty body means default options.
	var req FullSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	run, err := h.SyncService.FullSync(ctx, domain.SyncOptions{
		DryRun:         req.DryRun,
		DeleteOrphaned: req.DeleteOrphaned,
	})
	switch {
	case errors.Is(err, service.ErrAlreadySyncing):
		httpx.WriteError(w, http.StatusConflict, "already_syncing", err.Error())
		return
	case ovpn.IsUnavailable(err):
		log.Error("full sync aborted, external store unreachable", "error", err)
		// Partial results still go back to the caller.
		httpx.WriteJSON(w, http.StatusServiceUnavailable, run)
		return
	case err != nil:
		log.Error("full sync failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Sync run failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, run)
}

// HandleSyncUser handles POST /v1/sync/users/{id}
//
//	@Summary		Sync one directory user
//	@Description	Creates or updates a single user's external account. Returns the one-time temporary
//	@Description	password when an account was created.
//	@Tags			Sync
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int					true	"Directory user id"
//	@Success		200	{object}	UserSyncResponse	"Action taken"
//	@Failure		404	{object}	httpx.ErrorResponse	"Unknown user id"
//	@Failure		422	{object}	httpx.ErrorResponse	"User not eligible for sync"
//	@Failure		503	{object}	httpx.ErrorResponse	"External store unreachable"
//	@Router			/v1/sync/users/{id} [post].
func (h *SyncHandler) HandleSyncUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "User id must be an integer")
		return
	}

	result, err := h.SyncService.SyncUser(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No such user")
		return
	case errors.Is(err, service.ErrUserNotEligible):
		httpx.WriteError(w, http.StatusUnprocessableEntity, "not_eligible", err.Error())
		return
	case ovpn.IsUnavailable(err):
		log.Error("user sync failed, external store unreachable", "error", err)
		writeUnavailable(w)
		return
	case err != nil:
		log.Error("user sync failed", "user_id", id, "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "external_error", err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UserSyncResponse{
		Username:     result.Username,
		Action:       string(result.Action),
		TempPassword: result.TempPassword,
	})
}

// HandleRemoveUser handles DELETE /v1/sync/users/{username}
//
//	@Summary		Remove an external account
//	@Description	Deletes a username from the external store unconditionally. No directory
//	@Description	eligibility check; the user may already be gone from the directory.
//	@Tags			Sync
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string				true	"External username"
//	@Success		200			{object}	RemoveUserResponse	"Removed username"
//	@Failure		400			{object}	httpx.ErrorResponse	"Malformed username"
//	@Failure		503			{object}	httpx.ErrorResponse	"External store unreachable"
//	@Router			/v1/sync/users/{username} [delete].
func (h *SyncHandler) HandleRemoveUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	username := r.PathValue("username")
	if err := service.ValidateUsername(username); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	err := h.SyncService.RemoveUser(ctx, username)
	switch {
	case ovpn.IsUnavailable(err):
		log.Error("external removal failed, external store unreachable", "error", err)
		writeUnavailable(w)
		return
	case err != nil:
		log.Error("external removal failed", "username", username, "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "external_error", err.Error())
		return
	}

	httpx.WriteJSON(w, http.StatusOK, RemoveUserResponse{Username: username})
}

// HandleStatus handles GET /v1/sync/status
//
//	@Summary		Sync status
//	@Description	Reports how far apart the directory and the external store currently are,
//	@Description	plus the scheduler state and recent run history.
//	@Tags			Sync
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	domain.SyncStatus	"Current status"
//	@Failure		503	{object}	httpx.ErrorResponse	"External store unreachable"
//	@Router			/v1/sync/status [get].
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	status, err := h.SyncService.Status(ctx)
	switch {
	case ovpn.IsUnavailable(err):
		log.Error("status query failed, external store unreachable", "error", err)
		writeUnavailable(w)
		return
	case err != nil:
		log.Error("status query failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to compute sync status")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, status)
}

func writeUnavailable(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusServiceUnavailable, "external_store_unavailable",
		"The VPN server's management interface is unreachable. Check that its container is running.")
}
