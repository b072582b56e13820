package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/metrics"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/ovpn"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/cryptox"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/idx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

var (
	ErrUserNotEligible = errors.New("user not eligible for sync")
)

// Reconciler makes the external VPN store's username set agree with the
// eligible subset of the directory. There is exactly one code path for
// "make the two stores agree": scheduled runs, manual full syncs, and
// single-user syncs all come through here.
type Reconciler struct {
	Store    store.Store
	External ovpn.Client
}

// diff is the three-way partition of one snapshot pair (D, E). The three
// sets never overlap: toCreate = D\E, toUpdate = D∩E, orphaned = E\D.
type diff struct {
	toCreate []domain.User
	toUpdate []domain.User
	orphaned []string
	skipped  []domain.SkippedUser
}

// computeDiff partitions a directory snapshot against an external username
// listing. Ineligible users are recorded as skipped, never errored.
func computeDiff(directory []domain.User, external []string) diff {
	inExternal := make(map[string]bool, len(external))
	for _, name := range external {
		inExternal[name] = true
	}

	var d diff
	eligible := make(map[string]bool)
	for _, u := range directory {
		if !u.SyncEligible() {
			d.skipped = append(d.skipped, domain.SkippedUser{
				Username: skipIdentifier(u),
				Reason:   u.SkipReason(),
			})
			continue
		}
		name := *u.Username
		eligible[name] = true
		if inExternal[name] {
			d.toUpdate = append(d.toUpdate, u)
		} else {
			d.toCreate = append(d.toCreate, u)
		}
	}

	for _, name := range external {
		if !eligible[name] {
			d.orphaned = append(d.orphaned, name)
		}
	}

	sort.Slice(d.toCreate, func(i, j int) bool { return *d.toCreate[i].Username < *d.toCreate[j].Username })
	sort.Slice(d.toUpdate, func(i, j int) bool { return *d.toUpdate[i].Username < *d.toUpdate[j].Username })
	sort.Strings(d.orphaned)

	return d
}

// skipIdentifier names a skipped user in run results. Users without a
// username are identified by email.
func skipIdentifier(u domain.User) string {
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	return u.Email
}

// externalAttrs builds the attribute set pushed to the external store. The
// single-user path and the full reconciliation share this so the two can
// never drift.
func externalAttrs(u domain.User) ovpn.UserAttrs {
	return ovpn.UserAttrs{
		DisplayName: u.DisplayName,
		Admin:       u.Role == "admin",
	}
}

// FullSync performs one reconciliation run.
//
// The (D, E) snapshot is taken once at the start; actions apply against that
// snapshot even if the directory changes mid-run; staleness is resolved by
// the next run. The returned SyncRun's created/updated/deleted lists hold
// the intended actions from the diff, so a dry run and a real run over the
// same snapshot report identically; per-username apply failures land in
// Errors instead.
//
// A non-nil error is always an infrastructure failure (ovpn.ErrUnavailable):
// the remainder of the run is aborted and the partial SyncRun is still
// returned. Logical per-username failures never produce a non-nil error.
func (r *Reconciler) FullSync(ctx context.Context, opts domain.SyncOptions) (run domain.SyncRun, err error) {
	log := slogx.FromContext(ctx)

	run = domain.SyncRun{
		ID:             idx.New(),
		StartedAt:      time.Now().UTC(),
		DryRun:         opts.DryRun,
		DeleteOrphaned: opts.DeleteOrphaned,
		Created:        []string{},
		Updated:        []string{},
		Deleted:        []string{},
		Orphaned:       []string{},
		Skipped:        []domain.SkippedUser{},
		Errors:         []domain.SyncError{},
	}
	defer func() {
		run.FinishedAt = time.Now().UTC()
	}()

	directory, err := r.Store.Users().ListUsers(ctx)
	if err != nil {
		run.Aborted = true
		return run, fmt.Errorf("listing directory users: %w", err)
	}

	external, err := r.External.List(ctx)
	if err != nil {
		run.Aborted = true
		return run, fmt.Errorf("listing external users: %w", err)
	}

	metrics.DirectoryUsers.Set(float64(len(directory)))
	metrics.ExternalUsers.Set(float64(len(external)))

	d := computeDiff(directory, external)
	run.Skipped = append(run.Skipped, d.skipped...)
	run.Orphaned = append(run.Orphaned, d.orphaned...)
	for _, u := range d.toCreate {
		run.Created = append(run.Created, *u.Username)
	}
	for _, u := range d.toUpdate {
		run.Updated = append(run.Updated, *u.Username)
	}
	if opts.DeleteOrphaned {
		run.Deleted = append(run.Deleted, d.orphaned...)
	}

	log.Info("sync diff computed",
		"to_create", len(run.Created),
		"to_update", len(run.Updated),
		"orphaned", len(d.orphaned),
		"skipped", len(d.skipped),
		"dry_run", opts.DryRun,
	)

	// The diff above is the whole run for a dry run; the external store is
	// never touched.
	if opts.DryRun {
		return run, nil
	}

	if err := r.apply(ctx, d, opts, &run); err != nil {
		run.Aborted = true
		return run, err
	}

	return run, nil
}

// apply pushes the decided actions. Creates and updates go first; orphan
// deletes run strictly afterwards so a user is never transiently absent
// from both stores. Infrastructure failures stop the run, logical ones are
// recorded and skipped over.
func (r *Reconciler) apply(ctx context.Context, d diff, opts domain.SyncOptions, run *domain.SyncRun) error {
	for _, u := range d.toCreate {
		username := *u.Username
		password, err := cryptox.GenerateTempPassword()
		if err != nil {
			run.Errors = append(run.Errors, domain.SyncError{Username: username, Message: err.Error()})
			continue
		}
		if err := r.External.Create(ctx, username, externalAttrs(u), password); err != nil {
			if recordErr(run, username, err) {
				return err
			}
			continue
		}
		metrics.UsersProvisionedTotal.WithLabelValues("create").Inc()
	}

	for _, u := range d.toUpdate {
		username := *u.Username
		if err := r.External.Update(ctx, username, externalAttrs(u)); err != nil {
			if recordErr(run, username, err) {
				return err
			}
			continue
		}
		metrics.UsersProvisionedTotal.WithLabelValues("update").Inc()
	}

	if !opts.DeleteOrphaned {
		return nil
	}

	for _, username := range d.orphaned {
		if err := r.External.Delete(ctx, username); err != nil {
			if recordErr(run, username, err) {
				return err
			}
			continue
		}
		metrics.UsersProvisionedTotal.WithLabelValues("delete").Inc()
	}

	return nil
}

// recordErr appends a per-username error to the run and reports whether the
// failure is infrastructural, i.e. whether the run must stop.
func recordErr(run *domain.SyncRun, username string, err error) bool {
	run.Errors = append(run.Errors, domain.SyncError{Username: username, Message: err.Error()})
	if ovpn.IsUnavailable(err) {
		return true
	}
	metrics.SyncErrorsTotal.WithLabelValues("logical").Inc()
	return false
}

// SyncUser provisions or refreshes exactly one directory user. It fails with
// ErrUserNotEligible for unverified or usernameless users and store's
// ErrNotFound for unknown ids. The action (create vs. update) is decided by
// membership in the external listing.
func (r *Reconciler) SyncUser(ctx context.Context, id int64) (domain.UserSyncResult, error) {
	u, err := r.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		return domain.UserSyncResult{}, err
	}
	if !u.SyncEligible() {
		return domain.UserSyncResult{}, fmt.Errorf("%w: %s", ErrUserNotEligible, u.SkipReason())
	}
	username := *u.Username

	external, err := r.External.List(ctx)
	if err != nil {
		return domain.UserSyncResult{}, fmt.Errorf("listing external users: %w", err)
	}

	exists := false
	for _, name := range external {
		if name == username {
			exists = true
			break
		}
	}

	if exists {
		if err := r.External.Update(ctx, username, externalAttrs(u)); err != nil {
			return domain.UserSyncResult{}, err
		}
		metrics.UsersProvisionedTotal.WithLabelValues("update").Inc()
		return domain.UserSyncResult{Username: username, Action: domain.UserSyncUpdated}, nil
	}

	password, err := cryptox.GenerateTempPassword()
	if err != nil {
		return domain.UserSyncResult{}, err
	}
	if err := r.External.Create(ctx, username, externalAttrs(u), password); err != nil {
		return domain.UserSyncResult{}, err
	}
	metrics.UsersProvisionedTotal.WithLabelValues("create").Inc()
	return domain.UserSyncResult{
		Username:     username,
		Action:       domain.UserSyncCreated,
		TempPassword: password,
	}, nil
}

// RemoveUser deletes a username from the external store unconditionally.
// There is deliberately no eligibility or existence check against the
// directory: the caller may be cleaning up after a user that no longer
// exists there at all.
func (r *Reconciler) RemoveUser(ctx context.Context, username string) error {
	if err := r.External.Delete(ctx, username); err != nil {
		return err
	}
	metrics.UsersProvisionedTotal.WithLabelValues("delete").Inc()
	return nil
}

// PropagatePassword pushes a changed directory password straight to the
// external store, outside the reconciliation cadence. Account-update flows
// call this best-effort: failures are for logging, never for failing the
// triggering operation.
func (r *Reconciler) PropagatePassword(ctx context.Context, username, newPassword string) error {
	return r.External.SetPassword(ctx, username, newPassword)
}

// Preview computes the current diff without applying anything. Status
// queries are built on this.
func (r *Reconciler) Preview(ctx context.Context) (directoryTotal int, external []string, d diff, err error) {
	directory, err := r.Store.Users().ListUsers(ctx)
	if err != nil {
		return 0, nil, diff{}, fmt.Errorf("listing directory users: %w", err)
	}

	external, err = r.External.List(ctx)
	if err != nil {
		return 0, nil, diff{}, fmt.Errorf("listing external users: %w", err)
	}

	metrics.DirectoryUsers.Set(float64(len(directory)))
	metrics.ExternalUsers.Set(float64(len(external)))

	return len(directory), external, computeDiff(directory, external), nil
}
