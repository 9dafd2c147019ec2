package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pingrep/pingrep/pkg/result"
)

// Prober turns one host identifier into a normalized HostResult. It holds no
// per-probe state, so a single Prober is shared across all workers of a batch.
type Prober struct {
	executor Executor
	count    int
	logger   zerolog.Logger
}

// NewProber builds a prober sending count echo requests per host through the
// given executor.
func NewProber(executor Executor, count int, logger zerolog.Logger) *Prober {
	return &Prober{
		executor: executor,
		count:    count,
		logger:   logger.With().Str("component", "probe.prober").Logger(),
	}
}

// Count returns the number of echo requests sent per host.
func (p *Prober) Count() int {
	return p.count
}

// Probe runs one probe against host and classifies the outcome. Execution
// faults never escape as errors; they become Error-status results so one bad
// host cannot abort its batch.
//
// A non-zero exit code is only treated as an execution fault when the output
// carries no recognizable statistics: iputils ping exits 1 on total packet
// loss, which is a Failed probe rather than a failed execution.
func (p *Prober) Probe(ctx context.Context, host string) result.HostResult {
	start := time.Now()

	outcome, err := p.executor.Run(ctx, host)
	switch {
	case errors.Is(err, ErrTimeout):
		p.logger.Debug().Str("host", host).Msg("probe timed out")
		return result.NewError(host, p.count, "timeout")
	case err != nil:
		p.logger.Debug().Str("host", host).Err(err).Msg("probe execution failed")
		return result.NewError(host, p.count, err.Error())
	}

	stats := Parse(outcome.Stdout, p.logger)
	if outcome.ExitCode != 0 && stats.Dialect == DialectNone {
		p.logger.Debug().Str("host", host).Int("exit_code", outcome.ExitCode).Msg("probe exited abnormally")
		return result.NewError(host, p.count, fmt.Sprintf("ping failed (code %d)", outcome.ExitCode))
	}

	return result.New(host, p.count, stats.Received, mean(stats.Times),
		fmt.Sprintf("%.2fs", time.Since(start).Seconds()))
}

// mean returns the average of samples, or 0 when there are none.
func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
