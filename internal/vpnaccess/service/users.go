package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/cryptox"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidRole     = errors.New("invalid role")
)

// VPN usernames: lowercase alphanumeric start, then dots, dashes,
// underscores; 3 to 32 characters total. Enforced before any external
// command ever sees the value.
var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{2,31}$`)

// ValidateUsername checks the username shape. Handlers call this before any
// I/O so malformed input is rejected synchronously.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	return nil
}

// UserService manages the authoritative identity table. Mutations that
// change what the external store should look like (password rotations,
// deletions) push best-effort updates through the reconciler's narrow entry
// points; a failed push is logged and left for the next scheduled run.
type UserService struct {
	Store      store.Store
	Reconciler *Reconciler
}

// CreateUserParams are the fields accepted when registering a directory user.
type CreateUserParams struct {
	Email       string
	Username    *string
	DisplayName string
	Role        string
	Password    string
}

// CreateUser registers a new directory user. The user is not provisioned in
// the external store here; that happens once they are verified, via the
// reconciler.
func (s *UserService) CreateUser(ctx context.Context, p CreateUserParams) (domain.User, error) {
	if p.Role == "" {
		p.Role = "user"
	}
	if p.Role != "user" && p.Role != "admin" {
		return domain.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, p.Role)
	}
	if p.Username != nil && *p.Username != "" {
		if err := ValidateUsername(*p.Username); err != nil {
			return domain.User{}, err
		}
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	id, err := s.Store.Users().CreateUser(ctx, domain.User{
		Email:        p.Email,
		Username:     p.Username,
		DisplayName:  p.DisplayName,
		Role:         p.Role,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.User{}, err
	}

	return s.Store.Users().GetUserByID(ctx, id)
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// ListUsers returns all directory users.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// VerifyEmail marks the user's email as verified, which makes them
// sync-eligible once they also hold a username.
func (s *UserService) VerifyEmail(ctx context.Context, id int64) error {
	return s.Store.Users().SetEmailVerified(ctx, id)
}

// SetUsername assigns or renames the VPN username. A rename leaves the old
// external account orphaned; the next reconciliation reports it (and removes
// it when orphan deletion is enabled).
func (s *UserService) SetUsername(ctx context.Context, id int64, username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}
	return s.Store.Users().UpdateUsername(ctx, id, username)
}

// SetPassword rotates the stored password hash and pushes the new password
// to the external store outside the reconciliation cadence. The push is
// best-effort: failures are logged, never returned, so an account update is
// never failed by VPN plumbing.
func (s *UserService) SetPassword(ctx context.Context, id int64, password string) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
		return err
	}

	if !u.SyncEligible() {
		return nil
	}

	username := *u.Username
	go func() {
		// Detached from the request: the push outliving the HTTP call is
		// exactly the point.
		ctx := slogx.WithContext(context.WithoutCancel(ctx), log)
		if err := s.Reconciler.PropagatePassword(ctx, username, password); err != nil {
			log.Error("password propagation to external store failed",
				slog.String("username", username),
				slog.Any("error", err),
			)
		}
	}()

	return nil
}

// DeleteUser removes the user from the directory and best-effort removes
// their external account. An external failure leaves an orphan for the next
// reconciliation run, not a failed deletion.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	log := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		return err
	}

	if u.Username == nil || *u.Username == "" {
		return nil
	}

	if err := s.Reconciler.RemoveUser(ctx, *u.Username); err != nil {
		log.Warn("external account removal failed, orphan left for next sync",
			slog.String("username", *u.Username),
			slog.Any("error", err),
		)
	}
	return nil
}
