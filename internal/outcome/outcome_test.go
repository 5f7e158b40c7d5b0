package outcome

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/litani-build/litani/internal/model"
)

func TestClassify_SuccessOnZero(t *testing.T) {
	res, err := Classify(0, false, Policy{})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeSuccess || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want success/0", res)
	}
}

func TestClassify_TimeoutOK(t *testing.T) {
	res, err := Classify(1, true, Policy{TimeoutOK: true})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeSuccess || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want success/0", res)
	}
}

func TestClassify_TimeoutIgnore(t *testing.T) {
	res, err := Classify(1, true, Policy{TimeoutIgnore: true})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeFailIgnored || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want fail_ignored/0", res)
	}
}

func TestClassify_TimeoutPlain(t *testing.T) {
	res, err := Classify(0, true, Policy{})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeFail || res.WrapperReturnCode == 0 {
		t.Fatalf("got %+v, want fail/nonzero", res)
	}
}

func TestClassify_IgnoreReturns(t *testing.T) {
	res, err := Classify(42, false, Policy{IgnoreReturns: []int{42}})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeSuccess || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want success/0", res)
	}
}

func TestClassify_OkReturns(t *testing.T) {
	res, err := Classify(3, false, Policy{OkReturns: []int{3}})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeFailIgnored || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want fail_ignored/0", res)
	}
}

func TestClassify_DefaultFail(t *testing.T) {
	res, err := Classify(7, false, Policy{})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeFail || res.WrapperReturnCode != 7 {
		t.Fatalf("got %+v, want fail/7", res)
	}
}

func TestClassify_OutcomeTableOverrides(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "outcome_table.json")
	err := os.WriteFile(tablePath, []byte(`[
		{"return_code": 5, "timeout_reached": false, "outcome": "success"}
	]`), 0o644)
	if err != nil {
		t.Fatalf("write table: %v", err)
	}
	res, err := Classify(5, false, Policy{OutcomeTable: tablePath})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if res.Outcome != model.OutcomeSuccess || res.WrapperReturnCode != 0 {
		t.Fatalf("got %+v, want success/0", res)
	}
	if res.LoadedOutcomeDict == nil {
		t.Fatalf("expected LoadedOutcomeDict to be populated")
	}
}

func TestClassify_OutcomeTableMissingEntryErrors(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "outcome_table.json")
	if err := os.WriteFile(tablePath, []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if _, err := Classify(5, false, Policy{OutcomeTable: tablePath}); err == nil {
		t.Fatalf("expected error for unmatched table entry")
	}
}
