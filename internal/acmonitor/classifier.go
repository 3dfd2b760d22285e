package acmonitor

import (
	"strconv"
	"strings"
)

const (
	prefixRequestedCar     = "REQUESTED CAR:"
	prefixDriverJoined     = "DRIVER:"
	prefixCleanExit        = "Clean exit, driver disconnected"
	prefixConnectionClosed = "Connection is now closed"
	prefixLapCompleted     = "Result.OnLapCompleted"
	prefixLap              = "LAP "
	prefixLapWithCuts      = "LAP WITH CUTS"
	prefixTrack            = "TRACK="
	prefixNumCPU           = "Num CPU:"
)

// Classifier maps one raw log line to at most one Event. It reads the recent
// line window to correlate lap completions and timestamps, the race config
// for friendly car names and the current track directory for change
// detection. It never mutates any of them.
type Classifier struct {
	window         *LineWindow
	race           func() *RaceConfig
	trackDirectory func() string
	logger         Logger
}

func NewClassifier(window *LineWindow, race func() *RaceConfig, trackDirectory func() string, logger Logger) *Classifier {
	return &Classifier{
		window:         window,
		race:           race,
		trackDirectory: trackDirectory,
		logger:         logger,
	}
}

// Classify returns the Event for a recognised line, or nil. Prefixes are
// checked in a fixed priority order; the first match wins. The line is
// expected to already be in the window.
func (c *Classifier) Classify(line string) Event {
	switch {
	case strings.HasPrefix(line, prefixRequestedCar):
		return c.classifyRequestedCar(line)
	case strings.HasPrefix(line, prefixDriverJoined):
		return DriverJoined{Name: nameBeforeBracket(line[len(prefixDriverJoined):])}
	case strings.HasPrefix(line, prefixCleanExit):
		rest := strings.TrimLeft(line[len(prefixCleanExit):], ": \t")
		return DriverLeft{Name: nameBeforeBracket(rest)}
	case strings.HasPrefix(line, prefixConnectionClosed):
		rest := strings.TrimSpace(line[len(prefixConnectionClosed):])
		rest = strings.TrimPrefix(rest, "for ")
		return DriverLeft{Name: nameBeforeBracket(rest)}
	case strings.HasPrefix(line, prefixLapCompleted):
		return c.classifyLapCompleted(line)
	case strings.HasPrefix(line, prefixTrack):
		directory := strings.TrimSpace(line[strings.LastIndex(line, "=")+1:])

		if directory == c.trackDirectory() {
			// same track, not a change
			return nil
		}

		return TrackChanged{Directory: directory}
	case strings.HasPrefix(line, prefixNumCPU):
		return c.classifyTimestamp()
	}

	return nil
}

func (c *Classifier) classifyRequestedCar(line string) Event {
	car := strings.TrimSpace(strings.ReplaceAll(line[len(prefixRequestedCar):], "*", ""))

	// swap the directory for the friendly name when the race config knows it
	if race := c.race(); race != nil {
		if name, ok := race.CarName(car); ok {
			car = name
		}
	}

	return RequestedCar{Car: car}
}

func (c *Classifier) classifyLapCompleted(line string) Event {
	cutsIndex := strings.LastIndex(line, "Cuts:")

	if cutsIndex < 0 {
		c.logger.Warnf("Lap completed line carries no cut count, dropping: %q", line)
		return nil
	}

	cuts, err := strconv.Atoi(strings.TrimSpace(line[cutsIndex+len("Cuts:"):]))

	if err != nil {
		c.logger.WithError(err).Warnf("Could not parse cut count, dropping: %q", line)
		return nil
	}

	lapLine, ok := c.window.Scan(func(l string) bool {
		return strings.HasPrefix(l, prefixLap) && !strings.HasPrefix(l, prefixLapWithCuts)
	})

	if !ok {
		c.logger.Warnf("Lap completed with no LAP line in the last %d lines, dropping", c.window.Len())
		return nil
	}

	parts := strings.Split(strings.TrimRight(lapLine[len(prefixLap):], " \t\r"), " ")

	if len(parts) < 2 {
		c.logger.Warnf("Could not split LAP line into name and time, dropping: %q", lapLine)
		return nil
	}

	return LapCompleted{
		Name: strings.Join(parts[:len(parts)-1], " "),
		Time: parts[len(parts)-1],
		Cuts: cuts,
	}
}

// classifyTimestamp reads the line preceding the "Num CPU:" marker, which in
// the server log is its own startup timestamp, and collapses whitespace into
// dots so it is safe to use as an archive file name prefix.
func (c *Classifier) classifyTimestamp() Event {
	previous := strings.TrimSpace(c.window.At(1))

	if previous == "" {
		c.logger.Warnf("Num CPU marker with no preceding line, no timestamp recorded")
		return nil
	}

	return TimestampObserved{Value: strings.Join(strings.Fields(previous), ".") + "."}
}

// nameBeforeBracket extracts a driver name from text of the form
// "Name [steamid]".
func nameBeforeBracket(s string) string {
	if i := strings.Index(s, "["); i >= 0 {
		s = s[:i]
	}

	return strings.TrimSpace(s)
}
