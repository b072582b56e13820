package ovpn

import (
	"errors"
	"fmt"
)

// ErrUnavailable means the management command could not be executed at all:
// the docker daemon is unreachable, the container is absent or stopped, or
// the call timed out. Callers treat this as a retryable service-level
// failure and abort the remainder of a reconciliation run.
var ErrUnavailable = errors.New("ovpn: external store unavailable")

// LogicalError means the management command executed but reported a
// user-level failure (unknown user, malformed input). These accumulate
// per-username in a run's error list and never stop the run.
type LogicalError struct {
	Op       string // "list", "create", "update", "set-password", "delete"
	Username string
	Output   string // trimmed stderr from sacli
}

func (e *LogicalError) Error() string {
	if e.Username == "" {
		return fmt.Sprintf("ovpn: %s failed: %s", e.Op, e.Output)
	}
	return fmt.Sprintf("ovpn: %s %q failed: %s", e.Op, e.Username, e.Output)
}

// IsUnavailable reports whether err is an infrastructure failure rather than
// a logical one.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
