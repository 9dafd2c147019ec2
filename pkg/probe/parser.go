package probe

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Dialect identifies which ping output family the parser recognized.
type Dialect int

const (
	// DialectNone means no statistics marker was found in the output.
	DialectNone Dialect = iota
	// DialectWindows matched the "received = N" summary form.
	DialectWindows
	// DialectPosix matched the "N packets transmitted, M received," form.
	DialectPosix
)

// Statistics is the structured view of one probe's raw output: how many echo
// replies arrived and every round-trip time the output reported. It is
// derived once from the raw text and never mutated.
type Statistics struct {
	Received int
	Times    []float64
	Dialect  Dialect
}

const (
	windowsReceivedMarker  = "received = "
	posixTransmittedMarker = "packets transmitted, "
	posixReceivedMarker    = " received,"
	timeMarker             = "time="
)

// Parse extracts reply counts and round-trip samples from raw ping output.
// Both the Windows summary dialect and the iputils/BSD dialect are handled;
// when neither marker is present the received count stays zero. Individual
// malformed time tokens are skipped with a debug note and never abort the
// scan of later lines.
func Parse(raw string, logger zerolog.Logger) Statistics {
	out := strings.ToLower(raw)
	stats := Statistics{}

	if _, after, ok := strings.Cut(out, windowsReceivedMarker); ok {
		numTok, _, _ := strings.Cut(after, ",")
		if n, err := strconv.Atoi(strings.TrimSpace(numTok)); err == nil {
			stats.Received = n
			stats.Dialect = DialectWindows
		}
	} else if _, after, ok := strings.Cut(out, posixTransmittedMarker); ok {
		numTok, _, _ := strings.Cut(after, posixReceivedMarker)
		if n, err := strconv.Atoi(strings.TrimSpace(numTok)); err == nil {
			stats.Received = n
			stats.Dialect = DialectPosix
		}
	}

	for _, line := range strings.Split(out, "\n") {
		_, after, ok := strings.Cut(line, timeMarker)
		if !ok {
			continue
		}
		fields := strings.Fields(after)
		if len(fields) == 0 {
			continue
		}
		tok := strings.TrimSuffix(fields[0], "ms")
		ms, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			logger.Debug().Str("line", strings.TrimSpace(line)).Err(err).Msg("skipping unparseable time token")
			continue
		}
		stats.Times = append(stats.Times, ms)
	}

	return stats
}
