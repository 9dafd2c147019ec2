package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/pingrep/pingrep/pkg/batchexec"
	"github.com/pingrep/pingrep/pkg/result"
)

var (
	batchHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("105")).
				Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)
)

// ConsoleSummary prints human-readable batch summaries to a terminal.
type ConsoleSummary struct {
	w io.Writer
}

// NewConsoleSummary builds a summary writer targeting w.
func NewConsoleSummary(w io.Writer) *ConsoleSummary {
	return &ConsoleSummary{w: w}
}

// PrintBatch renders one completed batch as a table with colored statuses.
func (c *ConsoleSummary) PrintBatch(batch *batchexec.Result) {
	fmt.Fprintln(c.w, batchHeaderStyle.Render(fmt.Sprintf("## %s: %d hosts (%d ok, %d failed, %d errors)",
		batch.Prefix, len(batch.Hosts), batch.Succeeded, batch.Failed, batch.Errored)))

	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVER\tRECEIVED\tLOSS\tAVG PING\tSTATUS\tTIME")
	for _, r := range batch.Hosts {
		fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\t%s\t%s\n",
			r.Host, r.Received, r.Sent, lossCell(r), avgCell(r), styleStatus(r.Status), r.ResponseTime)
	}
	tw.Flush()
	fmt.Fprintln(c.w)
}

// PrintReportLocation notes where a batch's spreadsheet landed.
func (c *ConsoleSummary) PrintReportLocation(prefix, path string) {
	fmt.Fprintf(c.w, "%s: %s\n", prefix, path)
}

func styleStatus(status result.Status) string {
	switch status {
	case result.StatusSuccess:
		return successStyle.Render(string(status))
	case result.StatusFailed:
		return failedStyle.Render(string(status))
	default:
		return errorStyle.Render(string(status))
	}
}
