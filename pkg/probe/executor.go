package probe

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"
)

// ErrTimeout is returned by an Executor when the probe exceeded its overall
// deadline and the subprocess was killed.
var ErrTimeout = errors.New("probe timed out")

// RawOutcome captures what one ping subprocess produced. It is owned by the
// prober for the duration of a single probe and discarded after parsing.
type RawOutcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Executor runs one external echo probe against a host. Implementations must
// be safe for concurrent use; the batch layer calls Run from multiple
// goroutines.
type Executor interface {
	Run(ctx context.Context, host string) (RawOutcome, error)
}

// CommandExecutor shells out to the platform ping binary. Arguments come from
// the ArgsBuilder strategy; each call spawns exactly one subprocess and blocks
// until it exits or the overall deadline fires.
type CommandExecutor struct {
	binary  string
	args    ArgsBuilder
	count   int
	timeout time.Duration
	overall time.Duration
	logger  zerolog.Logger
}

// overallGrace pads the per-probe deadline beyond count x timeout so a probe
// that is replying at the very edge of its packet timeout still completes.
const overallGrace = 5 * time.Second

// NewCommandExecutor builds an executor invoking binary (normally "ping")
// with count echo requests and the given per-packet timeout.
func NewCommandExecutor(binary string, args ArgsBuilder, count int, timeout time.Duration, logger zerolog.Logger) *CommandExecutor {
	return &CommandExecutor{
		binary:  binary,
		args:    args,
		count:   count,
		timeout: timeout,
		overall: time.Duration(count)*timeout + overallGrace,
		logger:  logger.With().Str("component", "probe.executor").Logger(),
	}
}

// Run executes the probe. A non-zero subprocess exit is not an error here:
// the outcome carries the exit code and the captured output, and
// interpretation is left to the caller. ErrTimeout is returned when the
// overall deadline killed the subprocess.
func (e *CommandExecutor) Run(ctx context.Context, host string) (RawOutcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.overall)
	defer cancel()

	argv := e.args.Build(host, e.count, e.timeout)
	e.logger.Debug().Str("host", host).Strs("args", argv).Msg("spawning probe")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, e.binary, argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	outcome := RawOutcome{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		e.logger.Debug().Str("host", host).Dur("elapsed", outcome.Duration).Msg("probe deadline exceeded")
		return outcome, ErrTimeout
	}
	if runCtx.Err() != nil {
		return outcome, runCtx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		// The subprocess never ran (binary missing, fork failure, ...).
		return outcome, err
	}
	return outcome, nil
}
