// Package runner executes external commands and layers retry policy on
// top. Everything that shells out goes through the Runner interface so
// adapters can be tested without spawning processes.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts external command execution.
type Runner interface {
	// Run executes the command and waits for it. On failure the captured
	// stderr is folded into the returned error.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return commandError(name, err, stderr.Bytes())
	}
	return nil
}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, commandError(name, err, stderr.Bytes())
	}
	return stdout.Bytes(), nil
}

// maxStderr bounds how much tool output ends up inside error strings;
// yt-dlp can emit kilobytes of progress noise before dying.
const maxStderr = 500

func commandError(name string, err error, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(msg) > maxStderr {
		msg = "..." + msg[len(msg)-maxStderr:]
	}
	return fmt.Errorf("%s: %w: %s", name, err, msg)
}
