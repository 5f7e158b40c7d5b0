// Package sigrouter implements Component F: it writes the orchestrator's
// PID to run-pid and cascades SIGTERM/SIGINT/SIGHUP to the process group
// of every running job while mapping SIGUSR1 to an on-demand run dump.
// It does not change the orchestrator's own process group. The backoff-with-jitter helper
// used by `dump-run` to poll for that dump is grounded on the
// teacher's retry backoff (internal/attractor/engine/backoff.go),
// trimmed to the one shape spec.md §4.F calls for: 200ms initial,
// factor 2, per-iteration jitter, no cap or node/graph configurability.
package sigrouter

import (
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/procsup"
)

// Router installs the signal handlers a running build needs and
// exposes a DumpRequested channel the reporter drains to know when a
// SIGUSR1-triggered dump is due.
type Router struct {
	DumpRequested chan struct{}
	sigCh         chan os.Signal
}

// Install writes run-pid and starts routing SIGTERM/SIGINT/SIGHUP/SIGUSR1.
// It does not make the orchestrator a process group leader; the
// orchestrator stays in whatever process group it was started in.
func Install(dir cachedir.Dir) (*Router, error) {
	pid := os.Getpid()
	if err := cachedir.AtomicWrite(dir.RunPIDFile(), []byte(strconv.Itoa(pid)+"\n")); err != nil {
		return nil, err
	}

	r := &Router{
		DumpRequested: make(chan struct{}, 1),
		sigCh:         make(chan os.Signal, 8),
	}
	signal.Notify(r.sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP, syscall.SIGUSR1)

	go func() {
		for sig := range r.sigCh {
			switch sig {
			case syscall.SIGUSR1:
				select {
				case r.DumpRequested <- struct{}{}:
				default:
				}
			default:
				cascade(sig)
				os.Exit(0)
			}
		}
	}()

	return r, nil
}

// cascade forwards sig to every job's process group (§4.F). Each job
// runs in its own process group (procsup.Run, so a per-job timeout can
// escalate without touching siblings), so reaching "the whole run"
// means signalling every group procsup is still tracking, not just the
// orchestrator's own.
func cascade(sig os.Signal) {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return
	}
	procsup.KillAllGroups(s)
}
