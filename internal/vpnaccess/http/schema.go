package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
)

// validate checks request payload structs. One instance for the package;
// validator instances cache struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// FullSyncRequest selects the behaviour of a manual reconciliation run.
type FullSyncRequest struct {
	DryRun         bool `json:"dryRun"`
	DeleteOrphaned bool `json:"deleteOrphaned"`
}

// UserSyncResponse reports the action taken for a single-user sync.
type UserSyncResponse struct {
	Username string `json:"username"`
	Action   string `json:"action"`
	// TempPassword is only present when the account was created. It is
	// shown exactly once and stored nowhere.
	TempPassword string `json:"tempPassword,omitempty"`
}

// RemoveUserResponse confirms an external-store removal.
type RemoveUserResponse struct {
	Username string `json:"username"`
}

// SchedulerControlRequest starts or stops the periodic sync timer.
type SchedulerControlRequest struct {
	Action string `json:"action" validate:"required,oneof=start stop"`
}

// SchedulerControlResponse reports the timer state after a control action.
type SchedulerControlResponse struct {
	IsRunning       bool `json:"isRunning"`
	IntervalMinutes int  `json:"intervalMinutes"`
}

// SchedulerIntervalRequest updates the sync period.
type SchedulerIntervalRequest struct {
	IntervalMinutes int `json:"intervalMinutes" validate:"required,min=1,max=60"`
}

// SchedulerIntervalResponse confirms the applied period.
type SchedulerIntervalResponse struct {
	IntervalMinutes    int    `json:"intervalMinutes"`
	ScheduleExpression string `json:"scheduleExpression"`
	IsRunning          bool   `json:"isRunning"`
}

// CreateUserRequest registers a directory user.
type CreateUserRequest struct {
	Email       string  `json:"email" validate:"required,email"`
	Username    *string `json:"username,omitempty"`
	DisplayName string  `json:"displayName" validate:"required,max=128"`
	Role        string  `json:"role" validate:"omitempty,oneof=user admin"`
	Password    string  `json:"password" validate:"required,min=8,max=128"`
}

// SetUsernameRequest assigns or renames a user's VPN username.
type SetUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// SetPasswordRequest rotates a user's password.
type SetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// UserResponse is the JSON projection of a directory user. Password material
// never leaves the service.
type UserResponse struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	Username      *string   `json:"username,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	DisplayName   string    `json:"displayName"`
	Role          string    `json:"role"`
	SyncEligible  bool      `json:"syncEligible"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		SyncEligible:  u.SyncEligible(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// ListUsersResponse wraps the user listing.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// HealthResponse is the payload of the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
}
