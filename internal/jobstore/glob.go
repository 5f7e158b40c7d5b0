package jobstore

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/litani-build/litani/internal/model"
)

// expandGlobs implements SPEC_FULL §4.3: any input/output token that
// contains a glob meta-character is expanded against the job's cwd at
// merge-into-cache time, before dependency edges are built. Literal
// paths and @file tokens (handled later, at scheduling time, per
// spec.md §6) pass through unchanged. A glob matching nothing contributes
// no edge; it is not an error, matching how build tools commonly layer
// glob conveniences on top of literal dependency declarations.
func expandGlobs(job model.Job) model.Job {
	job.Inputs = expandList(job.Inputs, job.CWD)
	job.Outputs = expandList(job.Outputs, job.CWD)
	return job
}

func expandList(tokens []string, cwd string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "@") || !isGlob(tok) {
			out = append(out, tok)
			continue
		}
		base := cwd
		if base == "" {
			base = "."
		}
		matches, err := doublestar.FilepathGlob(filepath.Join(base, tok))
		if err != nil || len(matches) == 0 {
			continue
		}
		out = append(out, matches...)
	}
	return out
}

func isGlob(tok string) bool {
	return strings.ContainsAny(tok, "*?[")
}
