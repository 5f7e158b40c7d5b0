// Package model holds the on-disk document shapes shared by every
// component: job definitions, job status, the master cache document, and
// the derived run document.
package model

import "github.com/oklog/ulid/v2"

// NewID returns a fresh, lexically-sortable identifier suitable for both
// run IDs and job IDs. ulid.Make uses a monotonic, time-seeded entropy
// source internally guarded against concurrent callers, so it is safe to
// call from many goroutines (many concurrent add-job invocations, one
// run_id at init).
func NewID() string {
	return ulid.Make().String()
}
