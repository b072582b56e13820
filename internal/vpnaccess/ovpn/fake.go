package ovpn

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Fake is an in-memory Client for tests. It tracks the username set, the
// attributes and passwords last written, and an ordered mutation log so
// tests can assert on exactly what a run applied (or that a dry run applied
// nothing).
type Fake struct {
	mu        sync.Mutex
	users     map[string]UserAttrs
	passwords map[string]string
	mutations []string

	// ListErr, MutateErr force failures. FailUsernames limits MutateErr to
	// specific usernames so partial-failure behaviour can be exercised.
	ListErr       error
	MutateErr     error
	FailUsernames map[string]bool
}

func NewFake(usernames ...string) *Fake {
	f := &Fake{
		users:     make(map[string]UserAttrs),
		passwords: make(map[string]string),
	}
	for _, u := range usernames {
		f.users[u] = UserAttrs{}
	}
	return f
}

func (f *Fake) List(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	names := make([]string, 0, len(f.users))
	for u := range f.users {
		names = append(names, u)
	}
	sort.Strings(names)
	return names, nil
}

func (f *Fake) Create(_ context.Context, username string, attrs UserAttrs, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutateErr(username); err != nil {
		return err
	}

	f.users[username] = attrs
	f.passwords[username] = password
	f.mutations = append(f.mutations, "create:"+username)
	return nil
}

func (f *Fake) Update(_ context.Context, username string, attrs UserAttrs) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutateErr(username); err != nil {
		return err
	}

	f.users[username] = attrs
	f.mutations = append(f.mutations, "update:"+username)
	return nil
}

func (f *Fake) SetPassword(_ context.Context, username string, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutateErr(username); err != nil {
		return err
	}
	if _, ok := f.users[username]; !ok {
		return &LogicalError{Op: "set-password", Username: username, Output: "no such user"}
	}

	f.passwords[username] = password
	f.mutations = append(f.mutations, "set-password:"+username)
	return nil
}

func (f *Fake) Delete(_ context.Context, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.mutateErr(username); err != nil {
		return err
	}
	if _, ok := f.users[username]; !ok {
		return &LogicalError{Op: "delete", Username: username, Output: "no such user"}
	}

	delete(f.users, username)
	delete(f.passwords, username)
	f.mutations = append(f.mutations, "delete:"+username)
	return nil
}

func (f *Fake) mutateErr(username string) error {
	if f.MutateErr == nil {
		return nil
	}
	if f.FailUsernames != nil && !f.FailUsernames[username] {
		return nil
	}
	return fmt.Errorf("fake mutate %s: %w", username, f.MutateErr)
}

// Has reports whether the username currently exists.
func (f *Fake) Has(username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[username]
	return ok
}

// Attrs returns the last attributes written for a username.
func (f *Fake) Attrs(username string) UserAttrs {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[username]
}

// Password returns the last password written for a username.
func (f *Fake) Password(username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwords[username]
}

// Mutations returns the ordered log of applied mutations.
func (f *Fake) Mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.mutations))
	copy(out, f.mutations)
	return out
}
