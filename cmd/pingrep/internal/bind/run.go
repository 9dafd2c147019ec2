// Package bind translates command flags into service-layer options.
package bind

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pingrep/pingrep/pkg/config"
)

// RunOptions is the fully resolved input for the run command: configuration
// values with any explicitly set flags layered on top.
type RunOptions struct {
	ServersDir  string
	ResultsDir  string
	Binary      string
	Count       int
	TimeoutMS   int
	Concurrency int
	Output      string
	Progress    bool
}

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// BindRunOptions reads the run command flags and merges them over the
// resolved configuration. Only flags the user actually set override config
// values.
//
// Flags read:
//   - --servers-dir: directory holding host-list files
//   - --results-dir: directory receiving reports
//   - --count: echo requests per host
//   - --timeout-ms: per-packet reply timeout
//   - --concurrency: maximum probes in flight
//   - --output: run summary format (text, json, yaml)
//   - --progress: print live per-host completion updates
func BindRunOptions(cmd *cobra.Command, cfg config.Config) (RunOptions, error) {
	opts := RunOptions{
		ServersDir:  cfg.Workspace.ServersDir,
		ResultsDir:  cfg.Workspace.ResultsDir,
		Binary:      cfg.Probe.Binary,
		Count:       cfg.Probe.Count,
		TimeoutMS:   cfg.Probe.TimeoutMS,
		Concurrency: cfg.Batch.Concurrency,
		Output:      OutputText,
	}

	flags := cmd.Flags()
	if flags.Changed("servers-dir") {
		opts.ServersDir, _ = flags.GetString("servers-dir")
	}
	if flags.Changed("results-dir") {
		opts.ResultsDir, _ = flags.GetString("results-dir")
	}
	if flags.Changed("count") {
		opts.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("timeout-ms") {
		opts.TimeoutMS, _ = flags.GetInt("timeout-ms")
	}
	if flags.Changed("concurrency") {
		opts.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("output") {
		opts.Output, _ = flags.GetString("output")
	}
	opts.Progress, _ = flags.GetBool("progress")

	switch opts.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return RunOptions{}, fmt.Errorf("unsupported output format %q (expected text, json or yaml)", opts.Output)
	}
	if opts.Count < 1 {
		return RunOptions{}, fmt.Errorf("count must be >= 1, got %d", opts.Count)
	}
	if opts.TimeoutMS <= 0 {
		return RunOptions{}, fmt.Errorf("timeout-ms must be positive, got %d", opts.TimeoutMS)
	}
	if opts.Concurrency < 1 {
		return RunOptions{}, fmt.Errorf("concurrency must be >= 1, got %d", opts.Concurrency)
	}

	return opts, nil
}
