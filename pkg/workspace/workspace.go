// Package workspace manages the on-disk layout of a run: the servers
// directory holding host-list files and the results directory receiving
// reports.
//
// Layout:
//
//	servers/
//	  <prefix>.txt        one hostname or address per non-empty line
//	ping_results/
//	  <prefix>_results.xlsx
//	  .pingrep.lock       held for the duration of a run
package workspace

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"
)

var (
	// ErrNoHostFiles is returned when the servers directory contains no
	// host-list files at all.
	ErrNoHostFiles = errors.New("no host files found")

	// ErrEmptyHostFile is returned when a host-list file exists but holds no
	// usable host lines.
	ErrEmptyHostFile = errors.New("host file is empty")

	// ErrLocked is returned when another run already holds the results
	// directory lock.
	ErrLocked = errors.New("results directory is locked by another run")
)

// lockFile is the flock target inside the results directory.
const lockFile = ".pingrep.lock"

// HostFile identifies one host-list file. The prefix (base name without
// extension) names the report written for it.
type HostFile struct {
	Prefix string
	Path   string
}

// Workspace owns the input and output directories of a run.
type Workspace struct {
	serversDir string
	resultsDir string
	lock       *flock.Flock
	logger     zerolog.Logger
}

// New creates a Workspace over the given directories.
func New(serversDir, resultsDir string, logger zerolog.Logger) *Workspace {
	return &Workspace{
		serversDir: serversDir,
		resultsDir: resultsDir,
		logger:     logger.With().Str("component", "workspace").Logger(),
	}
}

// Initialize creates the directory structure and acquires the run lock so
// two concurrent invocations cannot interleave reports in the same results
// directory.
func (w *Workspace) Initialize() error {
	for _, dir := range []string{w.serversDir, w.resultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	w.lock = flock.New(filepath.Join(w.resultsDir, lockFile))
	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}

	w.logger.Debug().Str("servers_dir", w.serversDir).Str("results_dir", w.resultsDir).Msg("workspace ready")
	return nil
}

// Close releases the run lock.
func (w *Workspace) Close() error {
	if w.lock == nil {
		return nil
	}
	return w.lock.Unlock()
}

// ListHostFiles returns every .txt host-list file in the servers directory,
// sorted by name for a deterministic processing order. An empty directory
// yields ErrNoHostFiles.
func (w *Workspace) ListHostFiles() ([]HostFile, error) {
	entries, err := os.ReadDir(w.serversDir)
	if err != nil {
		return nil, fmt.Errorf("reading servers directory %s: %w", w.serversDir, err)
	}

	var files []HostFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		files = append(files, HostFile{
			Prefix: strings.TrimSuffix(entry.Name(), ".txt"),
			Path:   filepath.Join(w.serversDir, entry.Name()),
		})
	}
	if len(files) == 0 {
		return nil, ErrNoHostFiles
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Prefix < files[j].Prefix })
	return files, nil
}

// LoadHosts reads one host-list file: trimmed non-empty lines, comment lines
// starting with '#' skipped. A file with no usable lines yields
// ErrEmptyHostFile so the caller can skip it and keep going.
func (w *Workspace) LoadHosts(hf HostFile) ([]string, error) {
	f, err := os.Open(hf.Path)
	if err != nil {
		return nil, fmt.Errorf("opening host file %s: %w", hf.Path, err)
	}
	defer f.Close()

	var hosts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hosts = append(hosts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading host file %s: %w", hf.Path, err)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyHostFile, hf.Path)
	}
	return hosts, nil
}

// ReportPath returns the report location for a batch prefix, e.g.
// ping_results/<prefix>_results.xlsx.
func (w *Workspace) ReportPath(prefix, ext string) string {
	return filepath.Join(w.resultsDir, fmt.Sprintf("%s_results.%s", prefix, ext))
}
