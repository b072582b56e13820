package store

import (
	"context"
	"errors"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by its stable integer id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername returns the user holding the given VPN username.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns all users ordered by id. The reconciler snapshots
	// the directory through this.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a new user and returns the assigned id.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	// SetEmailVerified marks the user's email as verified and bumps updated_at.
	SetEmailVerified(ctx context.Context, id int64) error

	// UpdateUsername assigns or renames the VPN username.
	UpdateUsername(ctx context.Context, id int64, username string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	// UpdateDisplayName mutates the display_name and bumps updated_at.
	UpdateDisplayName(ctx context.Context, id int64, displayName string) error

	// DeleteUser removes the user row.
	DeleteUser(ctx context.Context, id int64) error

	// CountUsers returns the number of directory users.
	CountUsers(ctx context.Context) (int, error)
}
