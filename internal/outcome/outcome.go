// Package outcome implements Component D: it maps a job's raw return
// code and timeout status onto the three-way success/fail_ignored/fail
// outcome enum a job's policy (model.Job's OutcomeTable or the
// ignore/ok-returns lists) asks for, grounded directly on spec.md's
// §4.D decision tree.
package outcome

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/model"
)

// Policy is the subset of a job's fields the classifier needs.
type Policy struct {
	TimeoutOK     bool
	TimeoutIgnore bool
	IgnoreReturns []int
	OkReturns     []int
	OutcomeTable  string
}

// Result is everything a job's status document records about how its
// return code and timeout were classified.
type Result struct {
	Outcome           model.Outcome
	WrapperReturnCode int
	LoadedOutcomeDict map[string]any
}

// tableEntry is one row of an outcome_table JSON file: the (rc,
// timeout) key this entry matches, paired with the outcome it maps to.
type tableEntry struct {
	ReturnCode     int          `json:"return_code"`
	TimeoutReached bool         `json:"timeout_reached"`
	Outcome        model.Outcome `json:"outcome"`
}

// Classify implements the §4.D decision tree. rc is the job's raw
// command_return_code; timeoutReached reports whether procsup had to
// escalate past the declared timeout.
func Classify(rc int, timeoutReached bool, policy Policy) (Result, error) {
	if policy.OutcomeTable != "" {
		return classifyFromTable(rc, timeoutReached, policy.OutcomeTable)
	}
	return classifyDefault(rc, timeoutReached, policy), nil
}

func classifyDefault(rc int, timeoutReached bool, policy Policy) Result {
	switch {
	case timeoutReached && policy.TimeoutOK:
		return Result{Outcome: model.OutcomeSuccess, WrapperReturnCode: 0}
	case timeoutReached && policy.TimeoutIgnore:
		return Result{Outcome: model.OutcomeFailIgnored, WrapperReturnCode: 0}
	case timeoutReached:
		return Result{Outcome: model.OutcomeFail, WrapperReturnCode: nonzero(rc)}
	case rc == 0:
		return Result{Outcome: model.OutcomeSuccess, WrapperReturnCode: 0}
	case contains(policy.IgnoreReturns, rc):
		return Result{Outcome: model.OutcomeSuccess, WrapperReturnCode: 0}
	case contains(policy.OkReturns, rc):
		return Result{Outcome: model.OutcomeFailIgnored, WrapperReturnCode: 0}
	default:
		return Result{Outcome: model.OutcomeFail, WrapperReturnCode: rc}
	}
}

// classifyFromTable loads an outcome_table JSON file — a list of
// {return_code, timeout_reached, outcome} rows — and applies the first
// row whose key matches (rc, timeoutReached). The wrapper_rc
// convention for table-driven outcomes mirrors the default tree: zero
// unless the matched outcome is fail.
func classifyFromTable(rc int, timeoutReached bool, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read outcome table %s: %w", path, err)
	}
	var entries []tableEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return Result{}, fmt.Errorf("parse outcome table %s: %w", path, err)
	}
	for _, e := range entries {
		if e.ReturnCode != rc || e.TimeoutReached != timeoutReached {
			continue
		}
		wrapperRC := 0
		if e.Outcome == model.OutcomeFail {
			wrapperRC = nonzero(rc)
		}
		return Result{
			Outcome:           e.Outcome,
			WrapperReturnCode: wrapperRC,
			LoadedOutcomeDict: map[string]any{
				"return_code":     e.ReturnCode,
				"timeout_reached": e.TimeoutReached,
				"outcome":         e.Outcome,
			},
		}, nil
	}
	return Result{}, fmt.Errorf(
		"outcome table %s has no entry for return_code=%d timeout_reached=%v", path, rc, timeoutReached)
}

func contains(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// nonzero guarantees a "fail" wrapper_rc is never zero, even when the
// underlying rc was (e.g. a timeout on a command that would have
// exited 0 had it been allowed to finish).
func nonzero(rc int) int {
	if rc == 0 {
		return 1
	}
	return rc
}
