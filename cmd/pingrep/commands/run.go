package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pingrep/pingrep/cmd/pingrep/internal/bind"
	"github.com/pingrep/pingrep/pkg/appctx"
	"github.com/pingrep/pingrep/pkg/batchexec"
	"github.com/pingrep/pingrep/pkg/probe"
	"github.com/pingrep/pingrep/pkg/report"
	"github.com/pingrep/pingrep/pkg/workspace"
)

// NewRunCommand constructs the 'run' command: probe every host-list file and
// write one report per file.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Probe every host list in the servers directory and write reports",
		Long: `Discovers .txt host-list files in the servers directory, probes each file's
hosts as one batch with bounded parallelism, and writes a spreadsheet report
per file into the results directory. Files are processed sequentially; one
batch completes fully before the next begins.`,
		Args: cobra.NoArgs,
		RunE: runRunCommand,
	}

	cmd.Flags().String("servers-dir", "", "Directory holding host-list files (overrides config)")
	cmd.Flags().String("results-dir", "", "Directory receiving reports (overrides config)")
	cmd.Flags().Int("count", 0, "Echo requests per host (overrides config)")
	cmd.Flags().Int("timeout-ms", 0, "Per-packet reply timeout in milliseconds (overrides config)")
	cmd.Flags().Int("concurrency", 0, "Maximum probes in flight (overrides config)")
	cmd.Flags().String("output", bind.OutputText, "Run summary format (text, json, yaml)")
	cmd.Flags().Bool("progress", false, "Print live per-host completion updates")

	return cmd
}

// fileReport pairs a completed batch with the report written for it.
type fileReport struct {
	Batch      *batchexec.Result `json:"batch" yaml:"batch"`
	ReportPath string            `json:"report_path" yaml:"report_path"`
}

func runRunCommand(cmd *cobra.Command, args []string) error {
	cfg, ok := appctx.ConfigFrom(cmd.Context())
	if !ok {
		return fmt.Errorf("configuration missing from command context")
	}
	opts, err := bind.BindRunOptions(cmd, cfg)
	if err != nil {
		return err
	}

	logger := log.With().Str("command", "run").Logger()
	logger.Info().Str("servers_dir", opts.ServersDir).Int("count", opts.Count).
		Int("timeout_ms", opts.TimeoutMS).Int("concurrency", opts.Concurrency).Msg("starting run")

	ws := workspace.New(opts.ServersDir, opts.ResultsDir, log.Logger)
	if err := ws.Initialize(); err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}
	defer func() {
		if err := ws.Close(); err != nil {
			logger.Warn().Err(err).Msg("releasing workspace lock failed")
		}
	}()

	files, err := ws.ListHostFiles()
	if errors.Is(err, workspace.ErrNoHostFiles) {
		fmt.Fprintf(cmd.OutOrStdout(), "No host files found in %s\n", opts.ServersDir)
		fmt.Fprintln(cmd.OutOrStdout(), "Add .txt files with one host per line")
		return nil
	}
	if err != nil {
		return err
	}

	executor := probe.NewCommandExecutor(opts.Binary, probe.DefaultBuilder(),
		opts.Count, time.Duration(opts.TimeoutMS)*time.Millisecond, log.Logger)
	prober := probe.NewProber(executor, opts.Count, log.Logger)

	svc := batchexec.NewService(prober, log.Logger)
	if opts.Progress {
		svc = svc.WithProgressSink(&progressLogger{logger: logger})
	}

	sink := report.NewXLSXSink(func(prefix string) string {
		return ws.ReportPath(prefix, report.Extension)
	}, log.Logger)
	summary := report.NewConsoleSummary(cmd.OutOrStdout())

	// Host files are processed sequentially; each batch fully completes and
	// is reported before the next begins.
	var reports []fileReport
	for _, hf := range files {
		hosts, err := ws.LoadHosts(hf)
		if err != nil {
			logger.Warn().Str("file", hf.Path).Err(err).Msg("skipping host file")
			continue
		}

		batch, err := svc.Run(cmd.Context(), batchexec.Params{
			Prefix:      hf.Prefix,
			Hosts:       hosts,
			Concurrency: opts.Concurrency,
		})
		if err != nil {
			return fmt.Errorf("probing batch %s: %w", hf.Prefix, err)
		}

		path, err := sink.Write(batch)
		if err != nil {
			return fmt.Errorf("writing report for %s: %w", hf.Prefix, err)
		}
		reports = append(reports, fileReport{Batch: batch, ReportPath: path})

		if opts.Output == bind.OutputText {
			summary.PrintBatch(batch)
		}
	}

	return printRunSummary(cmd, opts.Output, reports, summary)
}

// printRunSummary renders the end-of-run overview in the requested format.
func printRunSummary(cmd *cobra.Command, format string, reports []fileReport, summary *report.ConsoleSummary) error {
	switch format {
	case bind.OutputJSON:
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding run summary: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case bind.OutputYAML:
		data, err := yaml.Marshal(reports)
		if err != nil {
			return fmt.Errorf("encoding run summary: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		for _, r := range reports {
			summary.PrintReportLocation(r.Batch.Prefix, r.ReportPath)
		}
	}
	return nil
}

// progressLogger forwards batch progress events to the run logger.
type progressLogger struct {
	logger zerolog.Logger
}

func (p *progressLogger) OnEvent(ev batchexec.ProgressEvent) {
	p.logger.Info().Str("prefix", ev.Prefix).Str("host", ev.Host).Str("status", string(ev.Status)).
		Msgf("completed %d/%d", ev.Completed, ev.Total)
}
