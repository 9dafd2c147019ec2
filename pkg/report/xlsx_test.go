package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pingrep/pingrep/pkg/batchexec"
	"github.com/pingrep/pingrep/pkg/result"
)

func testBatch() *batchexec.Result {
	return &batchexec.Result{
		RunID:       "test-run",
		Prefix:      "prod",
		StartedAt:   time.Now().Add(-time.Minute),
		CompletedAt: time.Now(),
		Hosts: []result.HostResult{
			result.New("fast.example.com", 40, 40, 12.34, "16.12s"),
			result.New("lossy.example.com", 40, 37, 80.5, "16.40s"),
			result.New("dead.example.com", 40, 0, 0, "16.00s"),
			result.NewError("gone.example.com", 40, "timeout"),
		},
		Succeeded: 2,
		Failed:    1,
		Errored:   1,
	}
}

func writeTestReport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sink := NewXLSXSink(func(prefix string) string {
		return filepath.Join(dir, prefix+"_results.xlsx")
	}, zerolog.Nop())

	path, err := sink.Write(testBatch())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "prod_results.xlsx"), path)
	return path
}

func TestXLSXSink_SheetAndHeader(t *testing.T) {
	path := writeTestReport(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{"PROD"}, f.GetSheetList())

	for i, want := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		got, err := f.GetCellValue("PROD", cell)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestXLSXSink_RowValues(t *testing.T) {
	path := writeTestReport(t)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("PROD", cell)
		require.NoError(t, err)
		return v
	}

	// Row 2: full success.
	require.Equal(t, "fast.example.com", get("A2"))
	require.Equal(t, "40", get("B2"))
	require.Equal(t, "40", get("C2"))
	require.Equal(t, "0", get("D2"))
	require.Equal(t, "0.0%", get("E2"))
	require.Equal(t, "12.34", get("F2"))
	require.Equal(t, "Success", get("G2"))
	require.Equal(t, "16.12s", get("H2"))

	// Row 3: partial loss.
	require.Equal(t, "7.5%", get("E3"))

	// Row 4: failed probe has loss but no average.
	require.Equal(t, "100.0%", get("E4"))
	require.Equal(t, "N/A", get("F4"))
	require.Equal(t, "Failed", get("G4"))

	// Row 5: execution fault renders N/A loss and average.
	require.Equal(t, "N/A", get("E5"))
	require.Equal(t, "N/A", get("F5"))
	require.Equal(t, "Error: timeout", get("G5"))
	require.Equal(t, result.ResponseTimeNA, get("H5"))
}

func TestXLSXSink_EmptyBatch(t *testing.T) {
	dir := t.TempDir()
	sink := NewXLSXSink(func(prefix string) string {
		return filepath.Join(dir, prefix+"_results.xlsx")
	}, zerolog.Nop())

	path, err := sink.Write(&batchexec.Result{Prefix: "empty"})
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"EMPTY"}, f.GetSheetList())
}
