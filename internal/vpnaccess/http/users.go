package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/service"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/httpx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

// UsersHandler handles directory user management.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/users
//
//	@Summary		Register a directory user
//	@Description	The username is optional at creation time and may be assigned later.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateUserRequest	true	"User details"
//	@Success		201		{object}	UserResponse		"Created user"
//	@Failure		400		{object}	httpx.ErrorResponse	"Validation failure"
//	@Failure		409		{object}	httpx.ErrorResponse	"Email or username taken"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.UserService.CreateUser(ctx, service.CreateUserParams{
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Password:    req.Password,
	})
	switch {
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "Email or username is already in use")
		return
	case err != nil:
		log.Error("user creation failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create user")
		return
	}

	log.Info("user created", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleGet handles GET /v1/users/{id}
//
//	@Summary	Fetch a directory user
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		int					true	"User id"
//	@Success	200	{object}	UserResponse		"User"
//	@Failure	404	{object}	httpx.ErrorResponse	"Unknown user id"
//	@Router		/v1/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), id)
	if err != nil {
		writeUserError(w, r, err, "fetch")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleList handles GET /v1/users
//
//	@Summary	List directory users
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	ListUsersResponse	"All users"
//	@Router		/v1/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Error("user listing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list users")
		return
	}

	resp := ListUsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleVerifyEmail handles POST /v1/users/{id}/verify
//
//	@Summary		Mark a user's email as verified
//	@Description	Verification is one of the two eligibility conditions for VPN access.
//	@Description	The account itself is only provisioned by a sync run.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User id"
//	@Success		204	"Verified"
//	@Failure		404	{object}	httpx.ErrorResponse	"Unknown user id"
//	@Router			/v1/users/{id}/verify [post].
func (h *UsersHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.UserService.VerifyEmail(r.Context(), id); err != nil {
		writeUserError(w, r, err, "verify")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSetUsername handles PUT /v1/users/{id}/username
//
//	@Summary		Assign or rename a VPN username
//	@Description	Renames leave the old external account behind; an orphan-deleting
//	@Description	sync run cleans it up.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path	int					true	"User id"
//	@Param			request	body	SetUsernameRequest	true	"New username"
//	@Success		204		"Updated"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed username"
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown user id"
//	@Failure		409		{object}	httpx.ErrorResponse	"Username taken"
//	@Router			/v1/users/{id}/username [put].
func (h *UsersHandler) HandleSetUsername(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}

	err := h.UserService.SetUsername(r.Context(), id, req.Username)
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "Username is already in use")
		return
	case err != nil:
		writeUserError(w, r, err, "rename")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSetPassword handles PUT /v1/users/{id}/password
//
//	@Summary		Rotate a user's password
//	@Description	The directory is updated synchronously; the external store is updated
//	@Description	in the background when the user is sync eligible.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path	int					true	"User id"
//	@Param			request	body	SetPasswordRequest	true	"New password"
//	@Success		204		"Rotated"
//	@Failure		400		{object}	httpx.ErrorResponse	"Weak or missing password"
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown user id"
//	@Router			/v1/users/{id}/password [put].
func (h *UsersHandler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON in request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Password must be 8 to 128 characters")
		return
	}

	if err := h.UserService.SetPassword(r.Context(), id, req.Password); err != nil {
		writeUserError(w, r, err, "password rotation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /v1/users/{id}
//
//	@Summary		Delete a directory user
//	@Description	Removes the directory row and makes a best-effort removal of the
//	@Description	external account. A failed external removal is left for the next
//	@Description	orphan-deleting sync run.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User id"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	httpx.ErrorResponse	"Unknown user id"
//	@Router			/v1/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), id); err != nil {
		writeUserError(w, r, err, "delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "User id must be an integer")
		return 0, false
	}
	return id, true
}

func writeUserError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "No such user")
		return
	}
	slogx.FromContext(r.Context()).Error("user "+op+" failed", "error", err)
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Operation failed")
}
