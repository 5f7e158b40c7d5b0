// Package validate implements Component I: compiled JSON Schemas for a
// single job and for the run document, checked before anything is
// written that a caller might rely on. The compile-from-marshaled-map
// pattern (marshal to bytes, AddResource, Compile) is lifted straight
// from a tool-parameter schema compiler (internal/agent/tool_registry.go's
// compileSchema). A validation failure here is a programming error,
// not user input (§4.I): callers treat it as fatal.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// compile mirrors compileSchema: marshal a schema literal (expressed
// as a map so it reads like JSON Schema, not Go structs) and compile
// it once.
func compile(name string, schema map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, strings.NewReader(string(b))); err != nil {
		return nil, fmt.Errorf("add %s schema resource: %w", name, err)
	}
	return c.Compile(name)
}

var (
	jobSchema *jsonschema.Schema
	runSchema *jsonschema.Schema
)

func init() {
	var err error
	jobSchema, err = compile("job.json", jobSchemaLiteral)
	if err != nil {
		panic(fmt.Sprintf("validate: compile job schema: %v", err))
	}
	runSchema, err = compile("run.json", runSchemaLiteral)
	if err != nil {
		panic(fmt.Sprintf("validate: compile run schema: %v", err))
	}
}

// Job validates a single job document (as produced by get-jobs, i.e.
// with private fields already stripped) against §3's declared
// attributes and optionality.
func Job(doc any) error {
	return validateDecoded("job", jobSchema, doc)
}

// RunDoc validates a full run document against the not-started /
// started-incomplete / complete job-status variants nested under
// pipelines[].ci_stages[].jobs[] (§4.I).
func RunDoc(doc any) error {
	return validateDecoded("run document", runSchema, doc)
}

func validateDecoded(kind string, schema *jsonschema.Schema, doc any) error {
	// jsonschema/v5 validates decoded JSON values (map[string]any,
	// []any, ...), so round-trip through JSON when callers pass a typed
	// struct instead of an already-decoded value.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s for validation: %w", kind, err)
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode %s for validation: %w", kind, err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("%s failed schema validation: %w", kind, err)
	}
	return nil
}
