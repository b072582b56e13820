package domain

import (
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/idx"
)

// SyncOptions selects the behaviour of a reconciliation run.
type SyncOptions struct {
	// DryRun computes the diff and reports intended actions without ever
	// touching the external store.
	DryRun bool
	// DeleteOrphaned removes external usernames that have no eligible
	// directory counterpart. When false, orphans are only reported.
	DeleteOrphaned bool
}

// SkippedUser records a directory user excluded from a run with the reason.
type SkippedUser struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
}

// SyncError records a per-username failure that did not stop the run.
type SyncError struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// SyncRun is the record of one reconciliation pass. It is created when the
// run starts, appended to while it executes, and frozen once FinishedAt is
// set. Frozen runs live in the scheduler's bounded history and are never
// mutated again.
type SyncRun struct {
	ID             idx.ID        `json:"id"`
	StartedAt      time.Time     `json:"startedAt"`
	FinishedAt     time.Time     `json:"finishedAt"`
	DryRun         bool          `json:"dryRun"`
	DeleteOrphaned bool          `json:"deleteOrphaned"`
	Created        []string      `json:"created"`
	Updated        []string      `json:"updated"`
	Deleted        []string      `json:"deleted"`
	Orphaned       []string      `json:"orphaned"`
	Skipped        []SkippedUser `json:"skipped"`
	Errors         []SyncError   `json:"errors"`
	// Aborted is set when an external-store outage cut the run short.
	// The lists above still hold whatever was applied before the cut.
	Aborted bool `json:"aborted,omitempty"`
}

// UserSyncAction names the action taken by a single-user sync.
type UserSyncAction string

const (
	UserSyncCreated UserSyncAction = "created"
	UserSyncUpdated UserSyncAction = "updated"
)

// UserSyncResult is the outcome of syncing one directory user.
type UserSyncResult struct {
	Username string
	Action   UserSyncAction
	// TempPassword is only set when Action is UserSyncCreated.
	TempPassword string
}

// SchedulerState is a point-in-time snapshot of the sync scheduler.
// IsRunning and IsSyncing are independent: the timer can be stopped while a
// run is still finishing, and a manual run can execute with the timer off.
type SchedulerState struct {
	IsRunning          bool       `json:"isRunning"`
	IsSyncing          bool       `json:"isSyncing"`
	IntervalMinutes    int        `json:"intervalMinutes"`
	ScheduleExpression string     `json:"scheduleExpression"`
	LastRun            *SyncRun   `json:"lastRun,omitempty"`
	NextFireTime       *time.Time `json:"nextFireTime,omitempty"`
}

// SyncStatus is the health picture of the two stores relative to each other.
type SyncStatus struct {
	DirectoryTotal     int            `json:"directoryTotal"`
	ExternalTotal      int            `json:"externalTotal"`
	InSync             int            `json:"inSync"`
	MissingInExternal  []string       `json:"missingInExternal"`
	OrphanedInExternal []string       `json:"orphanedInExternal"`
	Scheduler          SchedulerState `json:"scheduler"`
	RecentHistory      []SyncRun      `json:"recentHistory"`
}
