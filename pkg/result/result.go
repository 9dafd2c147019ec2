// Package result defines the per-host probe outcome and its report ordering.
package result

import (
	"fmt"
	"math"
	"sort"
)

// Status classifies the outcome of one host probe.
type Status string

const (
	// StatusSuccess means at least one echo reply was received.
	StatusSuccess Status = "Success"

	// StatusFailed means the probe ran to completion but no reply arrived.
	StatusFailed Status = "Failed"
)

// ErrorStatus builds the status value for a probe that could not be executed,
// e.g. "Error: timeout" or "Error: ping failed (code 2)".
func ErrorStatus(reason string) Status {
	return Status(fmt.Sprintf("Error: %s", reason))
}

// HostResult is the normalized outcome of probing a single host. It is
// constructed once, never mutated, and collected into a batch for reporting.
type HostResult struct {
	Host         string  `json:"host" yaml:"host"`
	Sent         int     `json:"sent" yaml:"sent"`
	Received     int     `json:"received" yaml:"received"`
	Lost         int     `json:"lost" yaml:"lost"`
	PacketLoss   float64 `json:"packet_loss" yaml:"packet_loss"`
	AvgPing      float64 `json:"avg_ping_ms" yaml:"avg_ping_ms"`
	Status       Status  `json:"status" yaml:"status"`
	ResponseTime string  `json:"response_time" yaml:"response_time"`
}

// ResponseTimeNA marks the elapsed time on probes that never ran to completion.
const ResponseTimeNA = "n/a"

// New builds a HostResult from a finished probe. Lost, packet loss and status
// are derived so that Received+Lost == Sent and PacketLoss == Lost/Sent*100
// hold for every value produced here.
func New(host string, sent, received int, avgPing float64, elapsed string) HostResult {
	if received > sent {
		received = sent
	}
	lost := sent - received
	status := StatusSuccess
	if received == 0 {
		status = StatusFailed
	}
	return HostResult{
		Host:         host,
		Sent:         sent,
		Received:     received,
		Lost:         lost,
		PacketLoss:   float64(lost) / float64(sent) * 100,
		AvgPing:      avgPing,
		Status:       status,
		ResponseTime: elapsed,
	}
}

// NewError builds the HostResult for a probe that could not be executed or
// timed out. All packets count as lost.
func NewError(host string, sent int, reason string) HostResult {
	return HostResult{
		Host:         host,
		Sent:         sent,
		Received:     0,
		Lost:         sent,
		PacketLoss:   100,
		AvgPing:      0,
		Status:       ErrorStatus(reason),
		ResponseTime: ResponseTimeNA,
	}
}

// IsError reports whether the result represents an execution fault rather
// than a completed probe.
func (r HostResult) IsError() bool {
	return r.Status != StatusSuccess && r.Status != StatusFailed
}

// sortPing is the ordering key for average ping. Hosts without a single valid
// sample sort after every real measurement within their status group.
func (r HostResult) sortPing() float64 {
	if r.AvgPing == 0 {
		return math.Inf(1)
	}
	return r.AvgPing
}

// Sort orders a batch for reporting: successful hosts first, then ascending
// average round-trip time. The sort is stable, so re-sorting an already
// ordered batch leaves it unchanged.
func Sort(results []HostResult) {
	sort.SliceStable(results, func(i, j int) bool {
		iSuccess := results[i].Status == StatusSuccess
		jSuccess := results[j].Status == StatusSuccess
		if iSuccess != jSuccess {
			return iSuccess
		}
		return results[i].sortPing() < results[j].sortPing()
	})
}
