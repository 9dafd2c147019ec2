// Package report renders completed batches: a spreadsheet report per input
// file and a human-readable console summary.
package report

import "github.com/pingrep/pingrep/pkg/batchexec"

// Sink consumes one ordered batch result and renders it somewhere. Sinks see
// batches only after coordination and sorting are finished.
type Sink interface {
	// Write renders the batch and returns the location it was written to.
	Write(batch *batchexec.Result) (string, error)
}
