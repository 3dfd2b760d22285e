package acmonitor

import (
	"errors"
	"strconv"
	"strings"
)

// DriverSession is one currently-online driver. MessageID is the Discord
// message announcing the join, kept so it can be deleted when they leave.
type DriverSession struct {
	MessageID string `json:"id"`
	Car       string `json:"car"`
}

// LapRecord is the best recorded lap for one (driver, car) pair. TimeMS is
// the canonical comparison key; Time keeps the string exactly as logged.
type LapRecord struct {
	Time   string `json:"time"`
	TimeMS int    `json:"time_ms"`
	Cuts   int    `json:"cuts"`
}

// SessionState is the whole persisted server state. Field names match the
// state.json snapshot layout, which is reloaded verbatim at startup.
type SessionState struct {
	Online         map[string]*DriverSession        `json:"online"`
	Laps           map[string]map[string]*LapRecord `json:"laps"`
	Naughties      map[string]map[string]*LapRecord `json:"naughties"`
	TrackName      string                           `json:"track_name"`
	TrackDirectory string                           `json:"track_directory"`
	TrackMessageID string                           `json:"track_message_id"`
	ArchivePath    string                           `json:"archive_path"`
	Carset         string                           `json:"carset"`
}

func NewSessionState() *SessionState {
	state := &SessionState{}
	state.Reset()

	return state
}

// Reset clears everything back to the empty state. On a track change the
// online roster must already have had its per-driver leave cleanup run.
func (s *SessionState) Reset() {
	s.Online = make(map[string]*DriverSession)
	s.Laps = make(map[string]map[string]*LapRecord)
	s.Naughties = make(map[string]map[string]*LapRecord)
	s.TrackName = ""
	s.TrackDirectory = ""
	s.TrackMessageID = ""
	s.ArchivePath = ""
	s.Carset = ""
}

// ensureMaps replaces nil maps with empty ones after a JSON reload of a
// snapshot that was written before any drivers or laps existed.
func (s *SessionState) ensureMaps() {
	if s.Online == nil {
		s.Online = make(map[string]*DriverSession)
	}

	if s.Laps == nil {
		s.Laps = make(map[string]map[string]*LapRecord)
	}

	if s.Naughties == nil {
		s.Naughties = make(map[string]map[string]*LapRecord)
	}
}

// Clone deep-copies the state. Used to archive the final state of a track
// session before the live state is reset for the next one.
func (s *SessionState) Clone() *SessionState {
	clone := &SessionState{
		Online:         make(map[string]*DriverSession, len(s.Online)),
		Laps:           cloneLapTable(s.Laps),
		Naughties:      cloneLapTable(s.Naughties),
		TrackName:      s.TrackName,
		TrackDirectory: s.TrackDirectory,
		TrackMessageID: s.TrackMessageID,
		ArchivePath:    s.ArchivePath,
		Carset:         s.Carset,
	}

	for name, session := range s.Online {
		sessionCopy := *session
		clone.Online[name] = &sessionCopy
	}

	return clone
}

func cloneLapTable(table map[string]map[string]*LapRecord) map[string]map[string]*LapRecord {
	out := make(map[string]map[string]*LapRecord, len(table))

	for name, byCar := range table {
		out[name] = make(map[string]*LapRecord, len(byCar))

		for car, lap := range byCar {
			lapCopy := *lap
			out[name][car] = &lapCopy
		}
	}

	return out
}

var ErrInvalidLapTime = errors.New("acmonitor: invalid lap time")

// ParseLapTime converts a logged "MM:SS:mmm" time into milliseconds.
func ParseLapTime(s string) (int, error) {
	parts := strings.Split(s, ":")

	if len(parts) != 3 {
		return 0, ErrInvalidLapTime
	}

	minutes, err := strconv.Atoi(parts[0])

	if err != nil {
		return 0, ErrInvalidLapTime
	}

	seconds, err := strconv.Atoi(parts[1])

	if err != nil {
		return 0, ErrInvalidLapTime
	}

	millis, err := strconv.Atoi(parts[2])

	if err != nil {
		return 0, ErrInvalidLapTime
	}

	return minutes*60000 + seconds*1000 + millis, nil
}
