package validate

// jobSchemaLiteral expresses §3's "Job definition" attributes as JSON
// Schema, with private fields (status_file, subcommand) deliberately
// absent since a validated job document is always one that has
// already gone through Job.Public().
var jobSchemaLiteral = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"job_id":        map[string]any{"type": "string"},
		"pipeline_name": map[string]any{"type": "string"},
		"ci_stage":      map[string]any{"type": "string"},
		"description":   map[string]any{"type": "string"},
		"command":       map[string]any{"type": "string"},
		"cwd":           map[string]any{"type": "string"},
		"inputs":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"outputs":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		// phony_outputs is never omitted (model.Job.PhonyOutputs has no
		// `omitempty`, to preserve nil-vs-empty), so an unset job carries
		// it as a literal JSON null rather than an absent key.
		"phony_outputs":            map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "string"}},
		"timeout":                  map[string]any{"type": "integer", "minimum": 0},
		"timeout_ok":               map[string]any{"type": "boolean"},
		"timeout_ignore":           map[string]any{"type": "boolean"},
		"ignore_returns":           map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		"ok_returns":               map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
		"outcome_table":            map[string]any{"type": "string"},
		"interleave_stdout_stderr": map[string]any{"type": "boolean"},
		"stdout_file":              map[string]any{"type": "string"},
		"stderr_file":              map[string]any{"type": "string"},
		"pool":                     map[string]any{"type": "string"},
		"tags":                     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required":             []any{"pipeline_name", "ci_stage", "command"},
	"additionalProperties": false,
}

// jobStatusSchema covers the three shapes a status/<id>.json can take
// (§4.I): not-started is never actually serialized (the reporter
// synthesizes it in memory), so only the started-incomplete and
// complete variants are real wire shapes.
var jobStatusSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"wrapper_arguments":    map[string]any{"type": "object"},
		"complete":             map[string]any{"type": "boolean"},
		"start_time":           map[string]any{"type": "string"},
		"end_time":             map[string]any{"type": "string"},
		"duration":             map[string]any{"type": "integer"},
		"command_return_code":  map[string]any{"type": "integer"},
		"wrapper_return_code":  map[string]any{"type": "integer"},
		"timeout_reached":      map[string]any{"type": "boolean"},
		"outcome":              map[string]any{"enum": []any{"success", "fail", "fail_ignored"}},
		"stdout":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"stderr":               map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"loaded_outcome_dict":  map[string]any{"type": "object"},
	},
	"required": []any{"wrapper_arguments", "complete"},
	"if": map[string]any{
		"properties": map[string]any{"complete": map[string]any{"const": true}},
	},
	"then": map[string]any{
		"required": []any{
			"start_time", "end_time", "duration",
			"command_return_code", "wrapper_return_code", "outcome",
		},
	},
}

var stageSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":     map[string]any{"type": "string"},
		"url":      map[string]any{"type": "string"},
		"progress": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"complete": map[string]any{"type": "boolean"},
		"status":   map[string]any{"enum": []any{"success", "fail", "fail_ignored"}},
		"jobs":     map[string]any{"type": "array", "items": jobStatusSchema},
	},
	"required": []any{"name", "complete", "status", "jobs"},
}

var pipelineSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":       map[string]any{"type": "string"},
		"url":        map[string]any{"type": "string"},
		"status":     map[string]any{"enum": []any{"in_progress", "success", "fail"}},
		"ci_stages":  map[string]any{"type": "array", "items": stageSchema},
	},
	"required": []any{"name", "status", "ci_stages"},
}

// runSchemaLiteral expresses the run document's pipelines[].ci_stages[].jobs[]
// nesting (§4.I).
var runSchemaLiteral = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"project":     map[string]any{"type": "string"},
		"run_id":      map[string]any{"type": "string"},
		"version":     map[string]any{"type": "string"},
		"start_time":  map[string]any{"type": "string"},
		"end_time":    map[string]any{"type": "string"},
		"status":      map[string]any{"enum": []any{"in_progress", "success", "fail"}},
		"pipelines":   map[string]any{"type": "array", "items": pipelineSchema},
		"fingerprint": map[string]any{"type": "string"},
	},
	"required": []any{"project", "run_id", "status", "pipelines"},
}
