package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/litani-build/litani/internal/model"
)

// JobRunner executes one job's command end to end: spawn, classify,
// write the status file, copy artifacts. It is implemented by
// cmd/litani's `exec` subcommand wiring (procsup + outcome +
// cachedir + artifact), kept out of this package so the scheduler
// never depends on process-spawning directly.
type JobRunner interface {
	RunJob(ctx context.Context, job model.Job) (model.Outcome, error)
}

// Options configures one run-build invocation.
type Options struct {
	Parallel  int                 // 0 means uncapped
	Pools     model.Pools         // named pool depths
	OnJobDone func(jobID string)  // notifies the reporter (§4.E "wake within 2s")
}

// Result summarizes one run-build invocation for the CLI layer.
type Result struct {
	Outcomes map[string]model.Outcome // job_id -> final outcome (phony targets excluded)
	Failed   bool                     // true iff any job's outcome is fail
}

// Executor drives a Graph to completion under bounded parallelism.
// Dispatch is event-driven and work-conserving: whenever capacity or
// a new ready node appears, every eligible node starts immediately,
// never waiting for siblings at the same graph depth the way a
// depth-staged dispatcher would (see the package doc for why).
type Executor struct {
	graph   *Graph
	runner  JobRunner
	opts    Options

	mu          sync.Mutex
	state       map[string]nodeState
	outcome     map[string]model.Outcome
	globalCount int
	poolCount   map[string]int
}

func NewExecutor(g *Graph, runner JobRunner, opts Options) *Executor {
	state := make(map[string]nodeState, len(g.Nodes))
	for name := range g.Nodes {
		state[name] = statePending
	}
	return &Executor{
		graph:     g,
		runner:    runner,
		opts:      opts,
		state:     state,
		outcome:   make(map[string]model.Outcome, len(g.Nodes)),
		poolCount: make(map[string]int, len(opts.Pools)),
	}
}

// Run drives every node to a terminal state and returns once the
// whole graph is done. A failed job never stops the run (the -k 0
// policy, §4.E); its dependents are skipped and inherit `fail`.
func (e *Executor) Run(ctx context.Context) (*Result, error) {
	done := make(chan string, len(e.graph.Nodes))

	for {
		e.mu.Lock()
		e.resolvePhonies()
		started := e.dispatchReady(ctx, done)
		allTerminal := e.allTerminal()
		e.mu.Unlock()

		if allTerminal {
			break
		}
		if !started {
			select {
			case name := <-done:
				e.finishJob(name)
				if e.opts.OnJobDone != nil {
					e.opts.OnJobDone(name)
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			// Drain any completions that arrived while dispatching more
			// work, without blocking if none are ready yet.
			select {
			case name := <-done:
				e.finishJob(name)
				if e.opts.OnJobDone != nil {
					e.opts.OnJobDone(name)
				}
			default:
			}
		}
	}

	res := &Result{Outcomes: make(map[string]model.Outcome)}
	for name, n := range e.graph.Nodes {
		if n.Phony {
			continue
		}
		o := e.outcome[name]
		res.Outcomes[name] = o
		if o == model.OutcomeFail {
			res.Failed = true
		}
	}
	return res, nil
}

// resolvePhonies settles any phony node whose dependencies are all
// terminal; phony nodes never occupy concurrency capacity.
func (e *Executor) resolvePhonies() {
	changed := true
	for changed {
		changed = false
		for name, n := range e.graph.Nodes {
			if !n.Phony || e.state[name] != statePending {
				continue
			}
			if !e.depsTerminal(n) {
				continue
			}
			if e.depsOK(n) {
				e.state[name] = stateSuccess
				e.outcome[name] = model.OutcomeSuccess
			} else {
				e.state[name] = stateSkipped
				e.outcome[name] = model.OutcomeFail
			}
			changed = true
		}
	}
}

func (e *Executor) depsTerminal(n *Node) bool {
	for _, d := range n.DependsOn {
		if !e.state[d].terminal() {
			return false
		}
	}
	return true
}

func (e *Executor) depsOK(n *Node) bool {
	for _, d := range n.DependsOn {
		if !e.state[d].ok() {
			return false
		}
	}
	return true
}

func (e *Executor) allTerminal() bool {
	for _, s := range e.state {
		if !s.terminal() {
			return false
		}
	}
	return true
}

// dispatchReady starts every ready job node that currently has
// capacity (global and, if pooled, its pool's), and skips every node
// whose dependencies ended badly. It returns whether at least one node
// was started or skipped, so the caller knows whether to block for a
// completion or keep iterating.
func (e *Executor) dispatchReady(ctx context.Context, done chan<- string) bool {
	names := make([]string, 0, len(e.graph.Nodes))
	for name := range e.graph.Nodes {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic tie-break among equally-ready jobs

	started := false
	for _, name := range names {
		n := e.graph.Nodes[name]
		if n.Phony || e.state[name] != statePending {
			continue
		}
		if !e.depsTerminal(n) {
			continue
		}
		if !e.depsOK(n) {
			e.state[name] = stateSkipped
			e.outcome[name] = model.OutcomeFail
			started = true
			continue
		}
		if !e.hasCapacity(n.Job.Pool) {
			continue
		}
		e.acquire(n.Job.Pool)
		e.state[name] = stateRunning
		started = true
		job := *n.Job
		go func() {
			o, err := e.runner.RunJob(ctx, job)
			if err != nil {
				o = model.OutcomeFail
			}
			e.mu.Lock()
			e.outcome[job.JobID] = o
			e.mu.Unlock()
			done <- job.JobID
		}()
	}
	return started
}

func (e *Executor) hasCapacity(pool string) bool {
	if e.opts.Parallel > 0 && e.globalCount >= e.opts.Parallel {
		return false
	}
	if pool == "" {
		return true
	}
	depth, ok := e.opts.Pools[pool]
	if !ok || depth <= 0 {
		return true
	}
	return e.poolCount[pool] < depth
}

func (e *Executor) acquire(pool string) {
	e.globalCount++
	if pool != "" {
		e.poolCount[pool]++
	}
}

func (e *Executor) release(pool string) {
	e.globalCount--
	if pool != "" {
		e.poolCount[pool]--
	}
}

// finishJob records a completed job's outcome into terminal state and
// releases its concurrency slots. The outcome itself was already
// recorded by the worker goroutine under the mutex; here we only flip
// the node's state and free capacity.
func (e *Executor) finishJob(jobID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.graph.Nodes[jobID]
	if !ok {
		return
	}
	o := e.outcome[jobID]
	switch o {
	case model.OutcomeFail:
		e.state[jobID] = stateFail
	case model.OutcomeFailIgnored:
		e.state[jobID] = stateFailIgnored
	default:
		e.state[jobID] = stateSuccess
	}
	e.release(n.Job.Pool)
}

// ValidatePools rejects any declared pool with depth < 1 (§7). It does
// not check that a job's pool was declared; cmd/litani's
// validateJobPools does that.
func ValidatePools(pools model.Pools) error {
	for name, depth := range pools {
		if depth < 1 {
			return fmt.Errorf("pool %q has depth %d, must be >= 1", name, depth)
		}
	}
	return nil
}
