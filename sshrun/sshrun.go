// Package sshrun drives the system OpenSSH client and measures the
// wall-clock duration of each invocation. The external binaries are
// the measured subject: the only contract relied upon is the process
// exit code and how long the process took.
package sshrun

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Algorithm classes accepted by QueryAlgorithms, as understood by
// ssh -Q.
const (
	ClassCipher = "cipher"
	ClassMAC    = "mac"
	ClassKex    = "kex"
)

// Client invokes the external ssh and scp binaries. Options holds
// OpenSSH -o overrides applied to every Connect and Copy invocation;
// Timeout, when positive, bounds each timed invocation (zero means a
// hung process blocks forever).
type Client struct {
	SSHBinary string
	SCPBinary string
	Options   []string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewClient creates a Client around the given binaries. options are
// OpenSSH option overrides without the -o prefix, e.g.
// "Compression=no".
func NewClient(
	sshBinary, scpBinary string,
	options []string,
	timeout time.Duration,
	logger *slog.Logger,
) *Client {
	return &Client{
		SSHBinary: sshBinary,
		SCPBinary: scpBinary,
		Options:   options,
		Timeout:   timeout,
		Logger:    logger.With(slog.String("component", "sshrun")),
	}
}

// RemoteRef formats a remote scp endpoint as host:path.
func RemoteRef(host, path string) string {
	return fmt.Sprintf("%s:%s", host, path)
}

// QueryAlgorithms asks the client for its supported algorithm names in
// the given class via ssh -Q. The reported order is preserved; no
// sorting or deduplication happens.
func (c *Client) QueryAlgorithms(
	ctx context.Context,
	class string,
) ([]string, error) {
	cmd := exec.CommandContext(ctx, c.SSHBinary, "-Q", class)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"query %s algorithms: %w\nstderr: %s",
			class, err, stderr.String(),
		)
	}

	var algorithms []string

	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			algorithms = append(algorithms, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s algorithms: %w", class, err)
	}

	if len(algorithms) == 0 {
		return nil, fmt.Errorf(
			"query %s algorithms: client reported none", class,
		)
	}

	return algorithms, nil
}

// Connect opens a login session to host running the no-op remote
// command ":". The session disconnects right after authentication, so
// the elapsed time is dominated by connection setup and key exchange.
// overrides are extra OpenSSH options applied after the base Options.
func (c *Client) Connect(
	ctx context.Context,
	host string,
	overrides ...string,
) (time.Duration, error) {
	args := c.optionArgs(overrides)
	args = append(args, host, ":")

	return c.runTimed(ctx, c.SSHBinary, args)
}

// Copy transfers src to dst via scp with the base Options plus the
// given overrides. src and dst use scp syntax, so either side may be a
// host:path remote reference.
func (c *Client) Copy(
	ctx context.Context,
	src, dst string,
	overrides ...string,
) (time.Duration, error) {
	args := c.optionArgs(overrides)
	args = append(args, src, dst)

	return c.runTimed(ctx, c.SCPBinary, args)
}

// Exec runs a shell command on host through ssh. The base option
// overrides are not applied, matching a plain interactive invocation.
// Unlike the timed calls, a non-zero exit here is returned as an error
// carrying the remote stderr.
func (c *Client) Exec(ctx context.Context, host, command string) error {
	cmd := exec.CommandContext(ctx, c.SSHBinary, host, command)

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf(
			"remote command on %s: %w\nstderr: %s",
			host, err, stderr.String(),
		)
	}

	return nil
}

// runTimed executes one invocation and returns its wall-clock
// duration. The duration is returned even on failure so the caller
// can decide what to keep; any non-zero exit collapses into the same
// error shape regardless of cause.
func (c *Client) runTimed(
	ctx context.Context,
	binary string,
	args []string,
) (time.Duration, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...)

	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		c.Logger.Debug("invocation failed",
			slog.String("binary", binary),
			slog.String("error", err.Error()),
			slog.String("stderr", strings.TrimSpace(stderr.String())),
		)

		return elapsed, fmt.Errorf("run %s: %w", binary, err)
	}

	return elapsed, nil
}

// optionArgs expands the base Options plus overrides into -o pairs.
func (c *Client) optionArgs(overrides []string) []string {
	args := make([]string, 0, 2*(len(c.Options)+len(overrides))+2)

	for _, opt := range c.Options {
		args = append(args, "-o", opt)
	}

	for _, opt := range overrides {
		args = append(args, "-o", opt)
	}

	return args
}
