// Package scheduler implements Component E: it builds the dependency
// DAG from jobs' inputs/outputs, synthesizes pipeline/stage phony
// targets, and drives bounded-parallel execution under a global cap
// plus named pool semaphores. The mutex-guarded-state plus
// worker-channel dispatch loop is adapted from the
// dag-executor.go.go reference implementation's RunParallel, traded
// from its fixed depth-staged dispatch to an always-work-conserving
// ready-queue model since pool semaphores (unknown to that reference)
// make depth alone an unreliable readiness signal here.
package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/litani-build/litani/internal/model"
)

const (
	pipelinePhonyPrefix = "__pipeline_name_"
	stagePhonyPrefix    = "__ci_stage_"
)

// Node is one DAG vertex: a real job, or a phony pipeline/stage
// target with no command of its own.
type Node struct {
	Name    string // job_id, or a phony target name
	Job     *model.Job // nil for phony nodes
	Phony   bool
	DependsOn []string // names of nodes this node waits on
}

// Graph is the fully built dependency DAG plus reverse-edge lookups
// the scheduler needs for readiness checks.
type Graph struct {
	Nodes map[string]*Node
	// dependents[name] lists nodes that DependsOn name.
	dependents map[string][]string
}

// Build constructs the DAG from jobs (§4.E): an edge A->B exists when
// some output of A appears in B's inputs, plus synthesized phony
// targets per pipeline and per ci_stage. @file tokens in inputs and
// outputs are expanded against their referenced JSON list files before
// edges are computed, since expansion happens "at scheduling time"
// per spec.md §6 (glob expansion already happened earlier, at
// collect-into-cache time, in package jobstore).
func Build(jobs []model.Job) (*Graph, error) {
	expanded := make([]model.Job, len(jobs))
	for i, j := range jobs {
		ej, err := expandFileTokens(j)
		if err != nil {
			return nil, fmt.Errorf("expand @file tokens for job %s: %w", j.JobID, err)
		}
		expanded[i] = ej
	}

	g := &Graph{
		Nodes:      make(map[string]*Node, len(expanded)*2),
		dependents: make(map[string][]string),
	}

	// Index which job produces which output path.
	producer := make(map[string]string, len(expanded)*2)
	for _, j := range expanded {
		for _, out := range j.EffectiveOutputs() {
			producer[out] = j.JobID
		}
	}

	for _, j := range expanded {
		jc := j
		n := &Node{Name: j.JobID, Job: &jc}
		for _, in := range j.Inputs {
			if dep, ok := producer[in]; ok && dep != j.JobID {
				n.DependsOn = append(n.DependsOn, dep)
			}
		}
		g.Nodes[n.Name] = n
	}

	pipelines := map[string]bool{}
	stages := map[string]bool{}
	for _, j := range expanded {
		pipelines[j.PipelineName] = true
		stages[j.CIStage] = true
	}
	for p := range pipelines {
		name := pipelinePhonyPrefix + p
		node := &Node{Name: name, Phony: true}
		for _, j := range expanded {
			if j.PipelineName == p {
				node.DependsOn = append(node.DependsOn, j.JobID)
			}
		}
		g.Nodes[name] = node
	}
	for s := range stages {
		name := stagePhonyPrefix + s
		node := &Node{Name: name, Phony: true}
		for _, j := range expanded {
			if j.CIStage == s {
				node.DependsOn = append(node.DependsOn, j.JobID)
			}
		}
		g.Nodes[name] = node
	}

	for name, n := range g.Nodes {
		for _, dep := range n.DependsOn {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}
	return g, nil
}

// Restrict returns the subgraph reachable (via DependsOn) from the
// named phony targets, used by `run-build -p`/`-s` to build only the
// requested pipelines or stage. Unknown target names are an error.
func (g *Graph) Restrict(targets []string) (*Graph, error) {
	if len(targets) == 0 {
		return g, nil
	}
	keep := map[string]bool{}
	var visit func(name string) error
	visit = func(name string) error {
		if keep[name] {
			return nil
		}
		n, ok := g.Nodes[name]
		if !ok {
			return fmt.Errorf("unknown build target %q", name)
		}
		keep[name] = true
		for _, dep := range n.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, t := range targets {
		if err := visit(t); err != nil {
			return nil, err
		}
	}

	sub := &Graph{Nodes: make(map[string]*Node, len(keep)), dependents: make(map[string][]string)}
	for name := range keep {
		sub.Nodes[name] = g.Nodes[name]
	}
	for name, n := range sub.Nodes {
		for _, dep := range n.DependsOn {
			sub.dependents[dep] = append(sub.dependents[dep], name)
		}
	}
	return sub, nil
}

// PipelineTarget and StageTarget build the phony target name for
// `run-build -p`/`-s`.
func PipelineTarget(name string) string { return pipelinePhonyPrefix + name }
func StageTarget(name string) string    { return stagePhonyPrefix + name }

// expandFileTokens replaces any `@path` input/output token with the
// JSON string-list contents of path.
func expandFileTokens(j model.Job) (model.Job, error) {
	var err error
	j.Inputs, err = expandTokenList(j.Inputs)
	if err != nil {
		return j, err
	}
	j.Outputs, err = expandTokenList(j.Outputs)
	if err != nil {
		return j, err
	}
	return j, nil
}

func expandTokenList(tokens []string) ([]string, error) {
	if len(tokens) == 0 {
		return tokens, nil
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, "@") {
			out = append(out, tok)
			continue
		}
		path := strings.TrimPrefix(tok, "@")
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out = append(out, list...)
	}
	return out, nil
}
