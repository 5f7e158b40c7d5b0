// Command litani is a distributed-friendly CI build orchestrator: it
// schedules user-declared jobs as a dependency DAG, grouped by pipeline
// and CI stage, and continuously materializes a live status report of
// the run while it executes. See internal/model, internal/cachedir,
// internal/scheduler and internal/reporter for the three subsystems
// this binary wires together.
package main

func main() {
	Execute()
}
