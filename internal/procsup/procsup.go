// Package procsup implements Component C: it spawns a job's command
// through a shell, owns its process group, enforces the declared
// timeout with a SIGTERM-then-SIGKILL escalation, and captures
// stdout/stderr. The process-group-leader and signal-escalation shape
// is adapted from a codergen subprocess runner
// (internal/attractor/engine/codergen_router.go); the timeout
// semantics (terminate, 1s grace, kill) are grounded in original
// Litani's lib/process.py Runner.
package procsup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/litani-build/litani/internal/cachedir"
)

// Grace is how long a timed-out job gets between SIGTERM and SIGKILL,
// matching original Litani's hard-coded one-second grace period.
const Grace = 1 * time.Second

// Spec describes a single job invocation (fields lifted straight off
// model.Job's command/policy section).
type Spec struct {
	Command                string
	CWD                     string
	InterleaveStdoutStderr  bool
	Timeout                 time.Duration // zero means no timeout
	StdoutFile, StderrFile  string
}

// Result is everything the outcome classifier and reporter need back.
type Result struct {
	ReturnCode     int
	TimeoutReached bool
	Stdout         []byte
	Stderr         []byte
}

// Run spawns Spec.Command in its own shell and process group, waits
// for it to exit or for Spec.Timeout to elapse, and escalates
// SIGTERM->Grace->SIGKILL on timeout. ctx cancellation (run-wide
// SIGTERM/SIGINT cascade, §4.F) is honored the same way a per-job
// timeout is.
func Run(ctx context.Context, spec Spec) (Result, error) {
	cmd := exec.Command("/bin/sh", "-c", spec.Command)
	cmd.Dir = spec.CWD
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	if spec.InterleaveStdoutStderr {
		cmd.Stdout = &stdout
		cmd.Stderr = &stdout
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start job: %w", err)
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err == nil {
		trackPgid(pgid)
		defer untrackPgid(pgid)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var timer <-chan time.Time
	if spec.Timeout > 0 {
		t := time.NewTimer(spec.Timeout)
		defer t.Stop()
		timer = t.C
	}

	res := Result{}
	select {
	case err := <-waitCh:
		res.ReturnCode = exitCode(err)
	case <-timer:
		res.TimeoutReached = true
		res.ReturnCode = escalate(cmd, waitCh)
	case <-ctx.Done():
		res.ReturnCode = escalate(cmd, waitCh)
	}

	res.Stdout = stdout.Bytes()
	if !spec.InterleaveStdoutStderr {
		res.Stderr = stderr.Bytes()
	}

	if spec.StdoutFile != "" {
		if err := cachedir.AtomicWrite(spec.StdoutFile, res.Stdout); err != nil {
			return res, fmt.Errorf("write stdout file: %w", err)
		}
	}
	if spec.StderrFile != "" && !spec.InterleaveStdoutStderr {
		if err := cachedir.AtomicWrite(spec.StderrFile, res.Stderr); err != nil {
			return res, fmt.Errorf("write stderr file: %w", err)
		}
	}

	return res, nil
}

// escalate sends SIGTERM to the job's process group, waits Grace for
// a clean exit, then SIGKILLs and waits for reaping. It returns the
// resulting exit code (always nonzero after a forced kill unless the
// process had already exited on its own).
func escalate(cmd *exec.Cmd, waitCh chan error) int {
	_ = killProcessGroup(cmd, syscall.SIGTERM)
	select {
	case err := <-waitCh:
		return exitCode(err)
	case <-time.After(Grace):
	}
	_ = killProcessGroup(cmd, syscall.SIGKILL)
	err := <-waitCh
	return exitCode(err)
}

func killProcessGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return err
	}
	if err := syscall.Kill(-pgid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}
	return nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
