package domain

import "time"

// User is a row in the authoritative identity table. The directory is the
// source of truth for registration, verification, and roles; the external
// VPN store only ever learns the projection of it that is sync-eligible.
type User struct {
	ID            int64
	Email         string
	Username      *string // VPN username; nil until assigned
	EmailVerified bool
	DisplayName   string
	Role          string // "admin" or "user"
	PasswordHash  string // argon2 encoded
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SyncEligible reports whether the user may be provisioned in the external
// store. Users without a username or an unverified email are skipped, never
// errored.
func (u User) SyncEligible() bool {
	return u.Username != nil && *u.Username != "" && u.EmailVerified
}

// SkipReason explains why an ineligible user was excluded from a sync run.
// Empty for eligible users.
func (u User) SkipReason() string {
	if u.Username == nil || *u.Username == "" {
		return SkipNoUsername
	}
	if !u.EmailVerified {
		return SkipNotVerified
	}
	return ""
}

const (
	SkipNoUsername  = "no-username"
	SkipNotVerified = "not-verified"
)
