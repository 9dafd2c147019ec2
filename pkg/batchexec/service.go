// Package batchexec coordinates the bounded-parallel probing of one batch of
// hosts and produces its deterministically ordered result list.
package batchexec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pingrep/pingrep/pkg/result"
)

// ErrNoConcurrency is returned when Params carries a concurrency limit below 1.
var ErrNoConcurrency = errors.New("concurrency limit must be >= 1")

// hostProber is the unit of parallel work dispatched per host.
type hostProber interface {
	Probe(ctx context.Context, host string) result.HostResult
	Count() int
}

// ProgressSink receives per-host completion notifications during a run.
type ProgressSink interface {
	OnEvent(ProgressEvent)
}

// ProgressEvent describes one completed probe within a batch.
type ProgressEvent struct {
	Prefix    string
	Host      string
	Status    result.Status
	Completed int
	Total     int
	Timestamp time.Time
}

// Service runs batches. One Service is reused across all input files of a run.
type Service struct {
	prober       hostProber
	progressSink ProgressSink
	logger       zerolog.Logger
}

// NewService builds a batch service dispatching probes to the given prober.
func NewService(prober hostProber, logger zerolog.Logger) *Service {
	return &Service{
		prober: prober,
		logger: logger.With().Str("component", "batchexec").Logger(),
	}
}

// WithProgressSink attaches a sink receiving per-host completion events.
func (s *Service) WithProgressSink(sink ProgressSink) *Service {
	s.progressSink = sink
	return s
}

// Run probes every host in the batch with at most params.Concurrency probes
// in flight, waits for all of them, and returns the sorted result list.
// Individual probe faults surface as Error-status results and never abort the
// batch; no result is acted on before the whole batch completes.
func (s *Service) Run(ctx context.Context, params Params) (*Result, error) {
	if params.Concurrency < 1 {
		return nil, ErrNoConcurrency
	}

	res := &Result{
		RunID:     uuid.New().String(),
		Prefix:    params.Prefix,
		StartedAt: time.Now(),
	}
	logger := s.logger.With().Str("run_id", res.RunID).Str("prefix", params.Prefix).Logger()

	if len(params.Hosts) == 0 {
		logger.Info().Msg("batch has no hosts, nothing to dispatch")
		res.CompletedAt = time.Now()
		return res, nil
	}

	logger.Info().Int("hosts", len(params.Hosts)).Int("concurrency", params.Concurrency).Msg("starting batch")

	var (
		mu        sync.Mutex
		completed atomic.Int64
	)
	total := len(params.Hosts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(params.Concurrency)
	for _, host := range params.Hosts {
		host := host
		g.Go(func() error {
			r := s.probe(gctx, host)

			mu.Lock()
			res.Hosts = append(res.Hosts, r)
			mu.Unlock()

			done := int(completed.Add(1))
			logger.Debug().Str("host", host).Str("status", string(r.Status)).
				Int("completed", done).Int("total", total).Msg("probe completed")
			if s.progressSink != nil {
				s.progressSink.OnEvent(ProgressEvent{
					Prefix:    params.Prefix,
					Host:      host,
					Status:    r.Status,
					Completed: done,
					Total:     total,
					Timestamp: time.Now(),
				})
			}
			return nil
		})
	}
	// Tasks never return errors; faults are folded into results above.
	_ = g.Wait()

	result.Sort(res.Hosts)
	res.CompletedAt = time.Now()
	for _, r := range res.Hosts {
		switch {
		case r.Status == result.StatusSuccess:
			res.Succeeded++
		case r.Status == result.StatusFailed:
			res.Failed++
		default:
			res.Errored++
		}
	}

	logger.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Int("errored", res.Errored).
		Dur("elapsed", res.CompletedAt.Sub(res.StartedAt)).Msg("batch completed")
	return res, nil
}

// probe runs one prober call, converting a panicking probe into an
// Error-status result so sibling probes keep running.
func (s *Service) probe(ctx context.Context, host string) (r result.HostResult) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Str("host", host).Interface("panic", rec).Msg("probe panicked")
			r = result.NewError(host, s.prober.Count(), fmt.Sprintf("probe panic: %v", rec))
		}
	}()
	return s.prober.Probe(ctx, host)
}
