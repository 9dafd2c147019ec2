package report

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/pingrep/pingrep/pkg/batchexec"
	"github.com/pingrep/pingrep/pkg/result"
)

// Extension is the report file extension produced by the XLSX sink.
const Extension = "xlsx"

// Column headers, in sheet order A..H.
var headers = []string{
	"Server", "Sent", "Received", "Lost", "Packet Loss %",
	"Avg Ping (ms)", "Status", "Response Time",
}

// Fill colors matching the established report look: blue header, green
// success rows, red failure rows.
const (
	headerFillColor = "4F81BD"
	goodFillColor   = "C6EFCE"
	badFillColor    = "FFC7CE"
)

// XLSXSink writes one spreadsheet per batch. The target path is resolved per
// prefix so the sink stays ignorant of workspace layout.
type XLSXSink struct {
	pathFor func(prefix string) string
	logger  zerolog.Logger
}

// NewXLSXSink builds a sink resolving report paths through pathFor.
func NewXLSXSink(pathFor func(prefix string) string, logger zerolog.Logger) *XLSXSink {
	return &XLSXSink{
		pathFor: pathFor,
		logger:  logger.With().Str("component", "report.xlsx").Logger(),
	}
}

// Write renders the batch into <prefix>_results.xlsx. The sheet is named
// after the upper-cased prefix; the header row is styled distinctly and data
// rows are filled green or red by probe status.
func (s *XLSXSink) Write(batch *batchexec.Result) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := strings.ToUpper(batch.Prefix)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if err != nil {
		return "", fmt.Errorf("creating header style: %w", err)
	}
	goodStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{goodFillColor}},
	})
	if err != nil {
		return "", fmt.Errorf("creating style: %w", err)
	}
	badStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{badFillColor}},
	})
	if err != nil {
		return "", fmt.Errorf("creating style: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return "", fmt.Errorf("writing header: %w", err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "H1", headerStyle); err != nil {
		return "", fmt.Errorf("styling header: %w", err)
	}

	for i, r := range batch.Hosts {
		row := i + 2
		values := []any{
			r.Host,
			r.Sent,
			r.Received,
			r.Lost,
			lossCell(r),
			avgCell(r),
			string(r.Status),
			r.ResponseTime,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return "", fmt.Errorf("writing row %d: %w", row, err)
			}
		}

		rowStyle := badStyle
		if r.Status == result.StatusSuccess {
			rowStyle = goodStyle
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(headers), row)
		if err := f.SetCellStyle(sheet, first, last, rowStyle); err != nil {
			return "", fmt.Errorf("styling row %d: %w", row, err)
		}
	}

	// Widen the server, status and response-time columns.
	for _, w := range []struct {
		col   string
		width float64
	}{{"A", 30}, {"G", 20}, {"H", 15}} {
		if err := f.SetColWidth(sheet, w.col, w.col, w.width); err != nil {
			return "", fmt.Errorf("setting column width: %w", err)
		}
	}

	path := s.pathFor(batch.Prefix)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving report %s: %w", path, err)
	}
	s.logger.Info().Str("path", path).Int("hosts", len(batch.Hosts)).Msg("report written")
	return path, nil
}

// lossCell renders packet loss, or N/A for probes that never executed.
func lossCell(r result.HostResult) string {
	if r.IsError() {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", r.PacketLoss)
}

// avgCell renders the average round-trip time, or N/A when no sample exists.
func avgCell(r result.HostResult) string {
	if r.AvgPing == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", r.AvgPing)
}
