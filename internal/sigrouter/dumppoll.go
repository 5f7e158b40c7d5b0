package sigrouter

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/procsup"
)

// PollDumpedRun implements `litani dump-run --retries N`: read
// run-pid, confirm the orchestrator is still alive, send it SIGUSR1,
// then poll dumped-run.json with exponential backoff + jitter until
// it changes or retries are exhausted.
func PollDumpedRun(dir cachedir.Dir, retries int, seed string) ([]byte, error) {
	pidBytes, err := os.ReadFile(dir.RunPIDFile())
	if err != nil {
		return nil, fmt.Errorf("read run-pid: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(pidBytes)))
	if err != nil {
		return nil, fmt.Errorf("parse run-pid: %w", err)
	}
	if !procsup.PIDAlive(pid) {
		return nil, fmt.Errorf("run-pid %d is not a live process", pid)
	}
	if err := syscall.Kill(pid, syscall.SIGUSR1); err != nil {
		return nil, fmt.Errorf("signal orchestrator: %w", err)
	}

	before, _ := os.ReadFile(dir.DumpedRunFile())
	cfg := DefaultBackoffConfig()
	for attempt := 1; attempt <= retries; attempt++ {
		time.Sleep(DelayForAttempt(attempt, cfg, fmt.Sprintf("%s:%d", seed, attempt)))
		after, err := os.ReadFile(dir.DumpedRunFile())
		if err == nil && string(after) != string(before) {
			return after, nil
		}
	}
	return nil, fmt.Errorf("dumped-run.json did not update after %d retries", retries)
}
