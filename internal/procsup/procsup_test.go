package procsup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRun_CapturesStdoutAndExitCode(t *testing.T) {
	res, err := Run(context.Background(), Spec{Command: "echo hello; exit 3"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ReturnCode != 3 {
		t.Fatalf("ReturnCode = %d, want 3", res.ReturnCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "hello" {
		t.Fatalf("Stdout = %q, want hello", res.Stdout)
	}
	if res.TimeoutReached {
		t.Fatalf("TimeoutReached = true, want false")
	}
}

func TestRun_InterleavesStdoutStderr(t *testing.T) {
	res, err := Run(context.Background(), Spec{
		Command:                "echo out; echo err 1>&2",
		InterleaveStdoutStderr: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Stderr) != 0 {
		t.Fatalf("Stderr = %q, want empty when interleaved", res.Stderr)
	}
	if !strings.Contains(string(res.Stdout), "out") || !strings.Contains(string(res.Stdout), "err") {
		t.Fatalf("Stdout = %q, want both out and err", res.Stdout)
	}
}

func TestRun_TimeoutEscalatesToKill(t *testing.T) {
	start := time.Now()
	res, err := Run(context.Background(), Spec{
		Command: "trap '' TERM; sleep 10",
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.TimeoutReached {
		t.Fatalf("TimeoutReached = false, want true")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("escalation took %s, want well under the 1s grace + overhead", elapsed)
	}
}

func TestRun_WritesStdoutFile(t *testing.T) {
	dir := t.TempDir()
	stdoutPath := filepath.Join(dir, "stdout.log")
	_, err := Run(context.Background(), Spec{
		Command:    "echo to-file",
		StdoutFile: stdoutPath,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(stdoutPath)
	if err != nil {
		t.Fatalf("read stdout file: %v", err)
	}
	if strings.TrimSpace(string(b)) != "to-file" {
		t.Fatalf("stdout file content = %q, want to-file", b)
	}
}

func TestPIDAlive_CurrentProcessIsAlive(t *testing.T) {
	if !PIDAlive(os.Getpid()) {
		t.Fatalf("expected current process to report alive")
	}
}

func TestPIDAlive_RejectsNonPositive(t *testing.T) {
	if PIDAlive(0) || PIDAlive(-1) {
		t.Fatalf("expected non-positive pids to be reported not alive")
	}
}
