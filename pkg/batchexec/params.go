package batchexec

import (
	"time"

	"github.com/pingrep/pingrep/pkg/result"
)

// Params defines one batch: every host from a single input file.
type Params struct {
	// Prefix identifies the batch; it is the host file's base name and
	// becomes the report name prefix.
	Prefix string
	// Hosts are probed in bounded parallel; order does not matter, the
	// final result order is determined by sorting.
	Hosts []string
	// Concurrency caps the number of probes in flight at once.
	Concurrency int
}

// Result is the outcome of one completed batch, ordered for reporting.
type Result struct {
	RunID       string              `json:"run_id" yaml:"run_id"`
	Prefix      string              `json:"prefix" yaml:"prefix"`
	StartedAt   time.Time           `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time           `json:"completed_at" yaml:"completed_at"`
	Hosts       []result.HostResult `json:"hosts" yaml:"hosts"`
	Succeeded   int                 `json:"succeeded" yaml:"succeeded"`
	Failed      int                 `json:"failed" yaml:"failed"`
	Errored     int                 `json:"errored" yaml:"errored"`
}
