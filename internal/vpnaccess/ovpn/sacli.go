package ovpn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Defaults for the sacli transport.
const (
	DefaultDockerBin = "docker"
	DefaultSacliPath = "/usr/local/openvpn_as/scripts/sacli"
	DefaultTimeout   = 15 * time.Second
)

// User properties written by this client. pvt_display_name is a custom
// property; sacli stores arbitrary keys in the user property database.
const (
	propType        = "type"
	propDeny        = "prop_deny"
	propSuperuser   = "prop_superuser"
	propDisplayName = "pvt_display_name"

	userTypeConnect = "user_connect"
)

// Docker exit codes that mean the command never reached sacli.
// 125: daemon error, 126: not executable, 127: binary not found.
var dockerInfraExitCodes = map[int]bool{125: true, 126: true, 127: true}

// SacliConfig configures the docker-exec transport to the Access Server.
type SacliConfig struct {
	// DockerBin is the docker binary to invoke. Defaults to "docker".
	DockerBin string
	// Container is the name of the OpenVPN Access Server container.
	Container string
	// SacliPath is the path of the sacli tool inside the container.
	SacliPath string
	// Timeout bounds each management command.
	Timeout time.Duration
}

func (c SacliConfig) withDefaults() SacliConfig {
	if c.DockerBin == "" {
		c.DockerBin = DefaultDockerBin
	}
	if c.SacliPath == "" {
		c.SacliPath = DefaultSacliPath
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// commandRunner executes a command and returns stdout and stderr separately.
// Swapped out in tests so parsing and error classification can be exercised
// without docker.
type commandRunner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// SacliClient drives sacli inside the Access Server container via docker
// exec. It implements Client.
type SacliClient struct {
	cfg SacliConfig
	run commandRunner
}

func NewSacliClient(cfg SacliConfig) *SacliClient {
	return &SacliClient{cfg: cfg.withDefaults(), run: execRunner}
}

// List returns all usernames in the external user property database.
func (c *SacliClient) List(ctx context.Context) ([]string, error) {
	stdout, err := c.sacli(ctx, "list", "", "UserPropGet")
	if err != nil {
		return nil, err
	}
	return parseUserPropGet(stdout)
}

// Create provisions a username. sacli UserPropPut upserts, so creating an
// already-present username degrades to an update rather than corrupting
// state.
func (c *SacliClient) Create(ctx context.Context, username string, attrs UserAttrs, password string) error {
	if _, err := c.sacli(ctx, "create", username,
		"--user", username, "--key", propType, "--value", userTypeConnect, "UserPropPut"); err != nil {
		return err
	}
	if err := c.putAttrs(ctx, "create", username, attrs); err != nil {
		return err
	}
	return c.SetPassword(ctx, username, password)
}

// Update upserts the attributes of a username.
func (c *SacliClient) Update(ctx context.Context, username string, attrs UserAttrs) error {
	return c.putAttrs(ctx, "update", username, attrs)
}

// SetPassword replaces the local password for a username.
func (c *SacliClient) SetPassword(ctx context.Context, username string, password string) error {
	_, err := c.sacli(ctx, "set-password", username,
		"--user", username, "--new_pass", password, "SetLocalPassword")
	return err
}

// Delete removes a username and all of its properties.
func (c *SacliClient) Delete(ctx context.Context, username string) error {
	_, err := c.sacli(ctx, "delete", username,
		"--user", username, "UserPropDelAll")
	return err
}

func (c *SacliClient) putAttrs(ctx context.Context, op, username string, attrs UserAttrs) error {
	props := [][2]string{
		{propDisplayName, attrs.DisplayName},
		{propSuperuser, strconv.FormatBool(attrs.Admin)},
		{propDeny, "false"},
	}
	for _, kv := range props {
		if _, err := c.sacli(ctx, op, username,
			"--user", username, "--key", kv[0], "--value", kv[1], "UserPropPut"); err != nil {
			return err
		}
	}
	return nil
}

// sacli runs one management command inside the container with the configured
// timeout and classifies any failure.
func (c *SacliClient) sacli(ctx context.Context, op, username string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	argv := append([]string{"exec", c.cfg.Container, c.cfg.SacliPath}, args...)
	stdout, stderr, err := c.run(ctx, c.cfg.DockerBin, argv...)
	if err != nil {
		return nil, classify(op, username, stderr, ctx.Err(), err)
	}
	return stdout, nil
}

// classify splits failures into infrastructure (ErrUnavailable) and logical
// (LogicalError) per the retry policy: infrastructure failures abort a run,
// logical ones accumulate per-username.
func classify(op, username string, stderr []byte, ctxErr, err error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out", ErrUnavailable, op)
	}

	detail := strings.TrimSpace(string(stderr))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if dockerInfraExitCodes[exitErr.ExitCode()] || isDockerInfraMessage(detail) {
			return fmt.Errorf("%w: %s", ErrUnavailable, detail)
		}
		return &LogicalError{Op: op, Username: username, Output: detail}
	}

	// docker binary missing, fork failure, and friends.
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isDockerInfraMessage matches stderr produced by docker itself rather than
// by sacli.
func isDockerInfraMessage(stderr string) bool {
	for _, marker := range []string{
		"Cannot connect to the Docker daemon",
		"No such container",
		"is not running",
	} {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

// parseUserPropGet extracts the usernames from sacli UserPropGet output,
// which is a JSON object keyed by username. Reserved entries (double
// underscore prefix, e.g. __DEFAULT__) are not real users.
func parseUserPropGet(out []byte) ([]string, error) {
	var props map[string]json.RawMessage
	if err := json.Unmarshal(out, &props); err != nil {
		return nil, &LogicalError{Op: "list", Output: "unparseable UserPropGet output: " + err.Error()}
	}

	usernames := make([]string, 0, len(props))
	for name := range props {
		if strings.HasPrefix(name, "__") {
			continue
		}
		usernames = append(usernames, name)
	}
	sort.Strings(usernames)
	return usernames, nil
}
