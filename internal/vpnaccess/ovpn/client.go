// Package ovpn talks to the OpenVPN Access Server user database through its
// sacli management tool, executed inside the server's container. It is the
// only package permitted to touch the external store; everything else goes
// through the Client interface so the reconciler can be tested against an
// in-memory fake.
package ovpn

import "context"

// UserAttrs are the attributes pushed alongside a username. The external
// store's read-back of these is unreliable, so the reconciler never diffs on
// them; they are only ever written.
type UserAttrs struct {
	DisplayName string
	Admin       bool
}

// Client manages usernames in the external VPN store.
//
// All operations must honour ctx deadlines: a hung management command fails
// the call rather than blocking a reconciliation run. Create is idempotent:
// creating an already-present username degrades to an update, so a retried
// run is safe to re-apply.
type Client interface {
	// List returns the usernames currently known to the external store.
	List(ctx context.Context) ([]string, error)

	// Create provisions a username with attributes and an initial password.
	Create(ctx context.Context, username string, attrs UserAttrs, password string) error

	// Update upserts the attributes of an existing username.
	Update(ctx context.Context, username string, attrs UserAttrs) error

	// SetPassword replaces the local password for a username.
	SetPassword(ctx context.Context, username string, password string) error

	// Delete removes a username and all its properties.
	Delete(ctx context.Context, username string) error
}
