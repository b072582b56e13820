package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/ovpn"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/cryptox"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "vpnaccess-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"alice", "bob.smith", "a-b_c", "x2y", "0leading"}
	for _, u := range valid {
		require.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "ab", "Alice", "-dash", ".dot", "has space", "semi;colon", "rm -rf", "very-long-username-well-past-thirty-two-characters"}
	for _, u := range invalid {
		require.ErrorIs(t, ValidateUsername(u), ErrInvalidUsername, u)
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: ovpn.NewFake()}}

	t.Run("defaults role and stores a verifiable hash", func(t *testing.T) {
		u, err := svc.CreateUser(ctx, CreateUserParams{
			Email:       "alice@example.com",
			DisplayName: "Alice",
			Password:    "correct horse battery",
		})
		require.NoError(t, err)
		require.Equal(t, "user", u.Role)
		require.False(t, u.EmailVerified)
		require.Nil(t, u.Username)
		require.NoError(t, cryptox.VerifyPassword("correct horse battery", u.PasswordHash))
	})

	t.Run("accepts an upfront username", func(t *testing.T) {
		name := "bob"
		u, err := svc.CreateUser(ctx, CreateUserParams{
			Email:       "bob@example.com",
			Username:    &name,
			DisplayName: "Bob",
			Role:        "admin",
			Password:    "hunter2hunter2",
		})
		require.NoError(t, err)
		require.NotNil(t, u.Username)
		require.Equal(t, "bob", *u.Username)
		require.Equal(t, "admin", u.Role)
	})

	t.Run("rejects bad usernames before touching the store", func(t *testing.T) {
		name := "Not Valid"
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Email:       "eve@example.com",
			Username:    &name,
			DisplayName: "Eve",
			Password:    "hunter2hunter2",
		})
		require.ErrorIs(t, err, ErrInvalidUsername)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Email:       "eve@example.com",
			DisplayName: "Eve",
			Role:        "superuser",
			Password:    "hunter2hunter2",
		})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, CreateUserParams{
			Email:       "alice@example.com",
			DisplayName: "Alice Again",
			Password:    "hunter2hunter2",
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestVerifyEmailMakesUserEligible(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: ovpn.NewFake()}}

	id := seedUser(t, st, "alice@example.com", "alice", false, "user")

	u, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.False(t, u.SyncEligible())

	require.NoError(t, svc.VerifyEmail(ctx, id))

	u, err = svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.True(t, u.SyncEligible())

	require.ErrorIs(t, svc.VerifyEmail(ctx, 99999), store.ErrNotFound)
}

func TestSetUsername(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: ovpn.NewFake()}}

	id := seedUser(t, st, "alice@example.com", "", true, "user")
	seedUser(t, st, "bob@example.com", "bob", true, "user")

	require.ErrorIs(t, svc.SetUsername(ctx, id, "Not Valid"), ErrInvalidUsername)
	require.ErrorIs(t, svc.SetUsername(ctx, id, "bob"), store.ErrAlreadyExists)

	require.NoError(t, svc.SetUsername(ctx, id, "alice"))
	u, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.Username)
	require.Equal(t, "alice", *u.Username)
}

func TestSetPasswordPropagatesForEligibleUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fake := ovpn.NewFake("alice")
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: fake}}

	id := seedUser(t, st, "alice@example.com", "alice", true, "user")

	require.NoError(t, svc.SetPassword(ctx, id, "brand new password"))

	u, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	require.NoError(t, cryptox.VerifyPassword("brand new password", u.PasswordHash))

	// The external push is asynchronous.
	require.Eventually(t, func() bool {
		return fake.Password("alice") == "brand new password"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSetPasswordSkipsExternalForIneligibleUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fake := ovpn.NewFake()
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: fake}}

	id := seedUser(t, st, "carol@example.com", "carol", false, "user")

	require.NoError(t, svc.SetPassword(ctx, id, "brand new password"))

	// Give a stray goroutine a moment to misbehave, then assert nothing
	// reached the external store.
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, fake.Mutations())
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fake := ovpn.NewFake("alice")
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: fake}}

	id := seedUser(t, st, "alice@example.com", "alice", true, "user")

	require.NoError(t, svc.DeleteUser(ctx, id))
	_, err := svc.GetUser(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.False(t, fake.Has("alice"))

	require.ErrorIs(t, svc.DeleteUser(ctx, id), store.ErrNotFound)
}

func TestDeleteUserSurvivesExternalFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	fake := ovpn.NewFake("bob")
	fake.MutateErr = ovpn.ErrUnavailable
	svc := &UserService{Store: st, Reconciler: &Reconciler{Store: st, External: fake}}

	id := seedUser(t, st, "bob@example.com", "bob", true, "user")

	// Directory deletion wins even when the VPN container is down; the
	// leftover account shows up as an orphan on the next run.
	require.NoError(t, svc.DeleteUser(ctx, id))
	_, err := svc.GetUser(ctx, id)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.True(t, fake.Has("bob"))
}
