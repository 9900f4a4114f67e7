package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result holds the captured output of a finished command
type Result struct {
	Stdout string
	Stderr string
}

// Diagnostics returns the most useful text for explaining a failure:
// stderr, then stdout, then err itself.
func (r Result) Diagnostics(err error) string {
	if s := strings.TrimSpace(r.Stderr); s != "" {
		return s
	}
	if s := strings.TrimSpace(r.Stdout); s != "" {
		return s
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Runner executes external tools. Implementations must honour ctx cancellation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the process is killed
	WaitDelay time.Duration
}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 5 * time.Second}
}

// Run starts name with args and waits for it to exit
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s: %w", name, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, fmt.Errorf("%s exited with code %d: %w", name, exitErr.ExitCode(), err)
	}
	return result, fmt.Errorf("%s: %w", name, err)
}
