package extcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"subgen/internal/services"
)

// Spec describes one external tool invocation. Arguments are always an
// explicit array; nothing here ever passes through a shell.
type Spec struct {
	Binary string
	Args   []string
	// Timeout bounds the invocation. Zero means the caller's context is the
	// only bound.
	Timeout time.Duration
	// Env entries are appended to the inherited environment.
	Env []string
	Dir string
}

// Result captures the output of a completed invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes an external tool. Stages accept a Runner so tests can
// substitute fakes without spawning processes.
type Runner func(ctx context.Context, spec Spec) (Result, error)

// Validate rejects specs that could not be executed safely.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Binary) == "" {
		return services.Wrap(services.ErrInput, "", "exec", "binary name is empty", nil)
	}
	for _, arg := range s.Args {
		if strings.ContainsRune(arg, 0) {
			return services.Wrap(services.ErrInput, "", "exec", fmt.Sprintf("argument contains NUL byte: %q", arg), nil)
		}
	}
	return nil
}

// Run executes the spec synchronously and waits for exit. The process runs in
// its own group; cancellation or timeout kills the whole group so helper
// processes spawned by the tool cannot be orphaned. Stderr is captured
// verbatim and attached to failures.
func Run(ctx context.Context, spec Spec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, spec.Binary, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		// Negative pid addresses the process group.
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = 10 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	detail := strings.TrimSpace(result.Stderr)
	if detail == "" {
		detail = err.Error()
	}

	if runCtx.Err() != nil {
		if spec.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return result, services.Wrap(services.ErrTimeout, "", spec.Binary,
				fmt.Sprintf("killed after %s", spec.Timeout), runCtx.Err())
		}
		return result, services.Wrap(services.ErrTimeout, "", spec.Binary, "cancelled", runCtx.Err())
	}

	return result, services.Wrap(services.ErrExternalTool, "", spec.Binary, detail, err)
}

// LookPath reports whether binary resolves to an executable on PATH.
func LookPath(binary string) (string, error) {
	return exec.LookPath(binary)
}
