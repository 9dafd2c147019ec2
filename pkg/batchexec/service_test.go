package batchexec

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pingrep/pingrep/pkg/result"
)

// recordingProber tracks how many probes run simultaneously and returns a
// scripted result per host.
type recordingProber struct {
	delay     time.Duration
	results   map[string]result.HostResult
	inFlight  atomic.Int64
	highWater atomic.Int64
	panicOn   string
}

func (p *recordingProber) Count() int { return 40 }

func (p *recordingProber) Probe(ctx context.Context, host string) result.HostResult {
	cur := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		hw := p.highWater.Load()
		if cur <= hw || p.highWater.CompareAndSwap(hw, cur) {
			break
		}
	}

	if p.panicOn == host {
		panic("scripted probe panic")
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if r, ok := p.results[host]; ok {
		return r
	}
	return result.New(host, 40, 40, 1.0, "0.10s")
}

func newTestService(p *recordingProber) *Service {
	return NewService(p, zerolog.Nop())
}

func TestRun_ConcurrencyBound(t *testing.T) {
	hosts := make([]string, 5)
	for i := range hosts {
		hosts[i] = fmt.Sprintf("host-%d", i)
	}
	prober := &recordingProber{delay: 30 * time.Millisecond}
	svc := newTestService(prober)

	res, err := svc.Run(context.Background(), Params{Prefix: "lab", Hosts: hosts, Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, res.Hosts, 5)
	require.LessOrEqual(t, prober.highWater.Load(), int64(2))
}

func TestRun_SortsAndTallies(t *testing.T) {
	prober := &recordingProber{results: map[string]result.HostResult{
		"slow": result.New("slow", 40, 40, 50, "2.00s"),
		"fast": result.New("fast", 40, 40, 10, "0.40s"),
		"dead": result.New("dead", 40, 0, 0, "16.00s"),
		"gone": result.NewError("gone", 40, "timeout"),
	}}
	svc := newTestService(prober)

	res, err := svc.Run(context.Background(), Params{
		Prefix:      "prod",
		Hosts:       []string{"gone", "slow", "dead", "fast"},
		Concurrency: 4,
	})
	require.NoError(t, err)

	require.Equal(t, "fast", res.Hosts[0].Host)
	require.Equal(t, "slow", res.Hosts[1].Host)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, 1, res.Failed)
	require.Equal(t, 1, res.Errored)
	require.NotEmpty(t, res.RunID)
	require.False(t, res.CompletedAt.Before(res.StartedAt))
}

func TestRun_EmptyHostList(t *testing.T) {
	svc := newTestService(&recordingProber{})
	res, err := svc.Run(context.Background(), Params{Prefix: "empty", Concurrency: 8})
	require.NoError(t, err)
	require.Empty(t, res.Hosts)
	require.Zero(t, res.Succeeded+res.Failed+res.Errored)
}

func TestRun_InvalidConcurrency(t *testing.T) {
	svc := newTestService(&recordingProber{})
	_, err := svc.Run(context.Background(), Params{Prefix: "x", Hosts: []string{"h"}, Concurrency: 0})
	require.ErrorIs(t, err, ErrNoConcurrency)
}

func TestRun_PanickingProbeDoesNotAbortBatch(t *testing.T) {
	prober := &recordingProber{panicOn: "bad"}
	svc := newTestService(prober)

	res, err := svc.Run(context.Background(), Params{
		Prefix:      "mixed",
		Hosts:       []string{"good-1", "bad", "good-2"},
		Concurrency: 3,
	})
	require.NoError(t, err)
	require.Len(t, res.Hosts, 3)
	require.Equal(t, 2, res.Succeeded)
	require.Equal(t, 1, res.Errored)
}

// progressRecorder captures events for assertion.
type progressRecorder struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (p *progressRecorder) OnEvent(ev ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func TestRun_ProgressEvents(t *testing.T) {
	rec := &progressRecorder{}
	svc := newTestService(&recordingProber{}).WithProgressSink(rec)

	_, err := svc.Run(context.Background(), Params{
		Prefix:      "lab",
		Hosts:       []string{"a", "b", "c"},
		Concurrency: 2,
	})
	require.NoError(t, err)
	require.Len(t, rec.events, 3)
	for _, ev := range rec.events {
		require.Equal(t, "lab", ev.Prefix)
		require.Equal(t, 3, ev.Total)
		require.Positive(t, ev.Completed)
	}
}
