// Package probe runs ICMP echo probes through the platform ping binary and
// turns their textual output into normalized per-host results.
package probe

import (
	"fmt"
	"runtime"
	"time"
)

// ArgsBuilder constructs the argument vector for one ping invocation. The
// flag names and timeout units differ between the Windows and POSIX ping
// families, so the builder is selected once at startup and reused for every
// probe.
type ArgsBuilder interface {
	// Build returns the arguments (excluding the binary name) for an echo
	// probe against host with the given packet count and per-packet timeout.
	Build(host string, count int, timeout time.Duration) []string
}

// windowsArgs builds arguments for the Windows ping dialect: request count
// via -n, reply timeout via -w in milliseconds.
type windowsArgs struct{}

func (windowsArgs) Build(host string, count int, timeout time.Duration) []string {
	return []string{
		"-n", fmt.Sprintf("%d", count),
		"-w", fmt.Sprintf("%d", timeout.Milliseconds()),
		host,
	}
}

// posixArgs builds arguments for the iputils/BSD dialect: packet count via
// -c, reply timeout via -W in whole seconds. Sub-second timeouts round up to
// one second because -W 0 means "wait forever" on iputils.
type posixArgs struct{}

func (posixArgs) Build(host string, count int, timeout time.Duration) []string {
	secs := int(timeout.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return []string{
		"-c", fmt.Sprintf("%d", count),
		"-W", fmt.Sprintf("%d", secs),
		host,
	}
}

// BuilderForOS returns the argument strategy for the given GOOS value.
func BuilderForOS(goos string) ArgsBuilder {
	if goos == "windows" {
		return windowsArgs{}
	}
	return posixArgs{}
}

// DefaultBuilder returns the argument strategy for the running platform.
func DefaultBuilder() ArgsBuilder {
	return BuilderForOS(runtime.GOOS)
}
