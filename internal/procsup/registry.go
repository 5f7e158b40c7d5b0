package procsup

import (
	"sync"
	"syscall"
)

// registry tracks the process group of every job currently running
// under this orchestrator. Each job is started in its own process
// group (see Run) so a per-job timeout can be escalated without
// touching siblings; the registry is what lets a whole-run SIGTERM/
// SIGINT/SIGHUP (§4.F) cascade to every one of those otherwise-isolated
// groups instead of only the orchestrator's own, empty one.
var registry = struct {
	mu    sync.Mutex
	pgids map[int]int // pgid -> reference count, in case of rapid reuse
}{pgids: map[int]int{}}

func trackPgid(pgid int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.pgids[pgid]++
}

func untrackPgid(pgid int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.pgids[pgid] <= 1 {
		delete(registry.pgids, pgid)
		return
	}
	registry.pgids[pgid]--
}

// KillAllGroups sends sig to every process group this orchestrator has
// ever started a job in and not yet reaped, best-effort (a group that
// has already exited on its own is simply not found and ignored).
// This is how the signal router's whole-run cascade (§4.F) reaches
// every spawned job despite each one living in its own process group.
func KillAllGroups(sig syscall.Signal) {
	registry.mu.Lock()
	pgids := make([]int, 0, len(registry.pgids))
	for pgid := range registry.pgids {
		pgids = append(pgids, pgid)
	}
	registry.mu.Unlock()

	for _, pgid := range pgids {
		_ = syscall.Kill(-pgid, sig)
	}
}
