package acmonitor

// Event is a single recognised occurrence in the server log. Lines which
// match none of the recognised prefixes produce no Event at all.
type Event interface {
	eventName() string
}

// RequestedCar is logged when a connecting client requests a car, shortly
// before the matching DriverJoined line.
type RequestedCar struct {
	Car string
}

func (RequestedCar) eventName() string { return "requested car" }

type DriverJoined struct {
	Name string
}

func (DriverJoined) eventName() string { return "driver joined" }

// DriverLeft covers both the clean-exit and connection-closed log lines.
type DriverLeft struct {
	Name string
}

func (DriverLeft) eventName() string { return "driver left" }

// LapCompleted carries the driver name and time correlated from the most
// recent LAP line in the window, plus the cut count from the completion line.
type LapCompleted struct {
	Name string
	Time string
	Cuts int
}

func (LapCompleted) eventName() string { return "lap completed" }

// TrackChanged is only produced when the logged directory differs from the
// one currently held in state.
type TrackChanged struct {
	Directory string
}

func (TrackChanged) eventName() string { return "track changed" }

// TimestampObserved carries a filesystem-safe rendering of the log's own
// startup timestamp, used to prefix archive file names.
type TimestampObserved struct {
	Value string
}

func (TimestampObserved) eventName() string { return "timestamp observed" }
