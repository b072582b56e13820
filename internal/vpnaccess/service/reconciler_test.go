package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/metrics"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/ovpn"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store/drivers/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func seedUser(t *testing.T, st store.Store, email string, username string, verified bool, role string) int64 {
	t.Helper()

	u := domain.User{
		Email:         email,
		EmailVerified: verified,
		DisplayName:   email,
		Role:          role,
		PasswordHash:  "argon2:dummy",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if username != "" {
		u.Username = &username
	}

	id, err := st.Users().CreateUser(context.Background(), u)
	require.NoError(t, err)
	return id
}

func TestComputeDiff(t *testing.T) {
	t.Parallel()

	name := func(s string) *string { return &s }

	directory := []domain.User{
		{Email: "alice@example.com", Username: name("alice"), EmailVerified: true},
		{Email: "bob@example.com", Username: name("bob"), EmailVerified: true},
		{Email: "carol@example.com", Username: name("carol"), EmailVerified: false},
		{Email: "erin@example.com", EmailVerified: true},
	}
	external := []string{"alice", "dave"}

	d := computeDiff(directory, external)

	require.Len(t, d.toCreate, 1)
	require.Equal(t, "bob", *d.toCreate[0].Username)
	require.Len(t, d.toUpdate, 1)
	require.Equal(t, "alice", *d.toUpdate[0].Username)
	require.Equal(t, []string{"dave"}, d.orphaned)
	require.ElementsMatch(t, []domain.SkippedUser{
		{Username: "carol", Reason: domain.SkipNotVerified},
		{Username: "erin@example.com", Reason: domain.SkipNoUsername},
	}, d.skipped)
}

func TestFullSyncDryRunNeverMutates(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")
	seedUser(t, st, "bob@example.com", "bob", true, "user")

	fake := ovpn.NewFake("alice", "dave")
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{DryRun: true, DeleteOrphaned: true})
	require.NoError(t, err)

	require.Equal(t, []string{"bob"}, run.Created)
	require.Equal(t, []string{"alice"}, run.Updated)
	require.Equal(t, []string{"dave"}, run.Deleted)
	require.Equal(t, []string{"dave"}, run.Orphaned)
	require.True(t, run.DryRun)
	require.False(t, run.Aborted)

	require.Empty(t, fake.Mutations(), "dry run must not touch the external store")
	require.True(t, fake.Has("dave"))
}

func TestFullSyncAppliesDiff(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "admin")
	seedUser(t, st, "bob@example.com", "bob", true, "user")
	seedUser(t, st, "carol@example.com", "carol", false, "user")

	fake := ovpn.NewFake("alice", "dave")
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{"bob"}, run.Created)
	require.Equal(t, []string{"alice"}, run.Updated)
	require.Empty(t, run.Deleted)
	require.Equal(t, []string{"dave"}, run.Orphaned)
	require.Empty(t, run.Errors)

	require.True(t, fake.Has("bob"))
	require.NotEmpty(t, fake.Password("bob"), "created users get a generated password")
	require.True(t, fake.Attrs("alice").Admin)
	require.True(t, fake.Has("dave"), "orphans survive without deleteOrphaned")

	require.Equal(t, []string{"create:bob", "update:alice"}, fake.Mutations())
}

func TestFullSyncDeleteOrphaned(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")

	fake := ovpn.NewFake("alice", "dave", "mallory")
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{DeleteOrphaned: true})
	require.NoError(t, err)

	require.Equal(t, []string{"dave", "mallory"}, run.Deleted)
	require.False(t, fake.Has("dave"))
	require.False(t, fake.Has("mallory"))
	require.True(t, fake.Has("alice"))

	// Deletes run strictly after creates and updates.
	require.Equal(t, []string{"update:alice", "delete:dave", "delete:mallory"}, fake.Mutations())
}

func TestFullSyncIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")
	seedUser(t, st, "bob@example.com", "bob", true, "user")

	fake := ovpn.NewFake()
	rec := &Reconciler{Store: st, External: fake}

	first, err := rec.FullSync(ctx, domain.SyncOptions{DeleteOrphaned: true})
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, first.Created)

	second, err := rec.FullSync(ctx, domain.SyncOptions{DeleteOrphaned: true})
	require.NoError(t, err)
	require.Empty(t, second.Created)
	require.Equal(t, []string{"alice", "bob"}, second.Updated)
	require.Empty(t, second.Deleted)
	require.Empty(t, second.Errors)
}

func TestFullSyncRecordsLogicalFailuresAndContinues(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")
	seedUser(t, st, "bob@example.com", "bob", true, "user")

	fake := ovpn.NewFake()
	fake.MutateErr = &ovpn.LogicalError{Op: "create", Username: "alice", Output: "boom"}
	fake.FailUsernames = map[string]bool{"alice": true}
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{})
	require.NoError(t, err, "logical failures never fail the run")

	require.False(t, run.Aborted)
	require.Len(t, run.Errors, 1)
	require.Equal(t, "alice", run.Errors[0].Username)

	// The intended-action lists still report alice; the error list carries
	// what actually went wrong.
	require.Equal(t, []string{"alice", "bob"}, run.Created)
	require.False(t, fake.Has("alice"))
	require.True(t, fake.Has("bob"))
}

func TestFullSyncAbortsOnInfrastructureFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")
	seedUser(t, st, "bob@example.com", "bob", true, "user")

	fake := ovpn.NewFake()
	fake.MutateErr = ovpn.ErrUnavailable
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{})
	require.Error(t, err)
	require.True(t, ovpn.IsUnavailable(err))
	require.True(t, run.Aborted)
	require.NotEmpty(t, run.Errors)
	require.Empty(t, fake.Mutations())
}

func TestFullSyncAbortsWhenListingFails(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")

	fake := ovpn.NewFake()
	fake.ListErr = ovpn.ErrUnavailable
	rec := &Reconciler{Store: st, External: fake}

	run, err := rec.FullSync(ctx, domain.SyncOptions{})
	require.Error(t, err)
	require.True(t, ovpn.IsUnavailable(err))
	require.True(t, run.Aborted)
}

func TestSyncUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	aliceID := seedUser(t, st, "alice@example.com", "alice", true, "user")
	carolID := seedUser(t, st, "carol@example.com", "carol", false, "user")
	erinID := seedUser(t, st, "erin@example.com", "", true, "user")

	fake := ovpn.NewFake()
	rec := &Reconciler{Store: st, External: fake}

	t.Run("creates a missing account with a temp password", func(t *testing.T) {
		result, err := rec.SyncUser(ctx, aliceID)
		require.NoError(t, err)
		require.Equal(t, "alice", result.Username)
		require.Equal(t, domain.UserSyncCreated, result.Action)
		require.NotEmpty(t, result.TempPassword)
		require.Equal(t, result.TempPassword, fake.Password("alice"))
	})

	t.Run("updates an existing account without a password", func(t *testing.T) {
		result, err := rec.SyncUser(ctx, aliceID)
		require.NoError(t, err)
		require.Equal(t, domain.UserSyncUpdated, result.Action)
		require.Empty(t, result.TempPassword)
	})

	t.Run("rejects unverified users", func(t *testing.T) {
		_, err := rec.SyncUser(ctx, carolID)
		require.ErrorIs(t, err, ErrUserNotEligible)
	})

	t.Run("rejects usernameless users", func(t *testing.T) {
		_, err := rec.SyncUser(ctx, erinID)
		require.ErrorIs(t, err, ErrUserNotEligible)
	})

	t.Run("unknown id maps to not found", func(t *testing.T) {
		_, err := rec.SyncUser(ctx, 99999)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	require.Empty(t, fake.Attrs("carol").DisplayName)
	require.False(t, fake.Has("carol"), "ineligible users never reach the external store")
}

func TestRemoveUserIsUnconditional(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	fake := ovpn.NewFake("ghost")
	rec := &Reconciler{Store: st, External: fake}

	// "ghost" has no directory row at all.
	require.NoError(t, rec.RemoveUser(ctx, "ghost"))
	require.False(t, fake.Has("ghost"))
}

func TestFullSyncUpdatesPopulationGauges(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedUser(t, st, "alice@example.com", "alice", true, "user")
	seedUser(t, st, "carol@example.com", "carol", false, "user")

	fake := ovpn.NewFake("dave")
	rec := &Reconciler{Store: st, External: fake}

	_, err := rec.FullSync(ctx, domain.SyncOptions{DryRun: true})
	require.NoError(t, err)

	// Both rows count toward the directory gauge, eligible or not.
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.DirectoryUsers))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ExternalUsers))

	// The gauges reflect the run-start snapshot, so alice's creation here
	// only shows up once the next snapshot is taken.
	_, err = rec.FullSync(ctx, domain.SyncOptions{})
	require.NoError(t, err)
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ExternalUsers))

	_, err = rec.FullSync(ctx, domain.SyncOptions{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.ExternalUsers), "alice provisioned, dave orphaned")
}
