package acmonitor

import (
	"sort"
)

// Reducer owns all mutation of the SessionState. Given an Event it updates
// the state and returns the side-effect intents to run, in order.
//
// The pending car and pending timestamp are carry-over values: a requested
// car belongs to the next join, and an observed timestamp only becomes
// effective at the next track change. The timestamp current when a track
// change is detected was observed during the session that just ended, so the
// ended track's archive is the one that receives it.
type Reducer struct {
	state  *SessionState
	logger Logger

	raceConfigPath string
	race           *RaceConfig

	pendingCar       string
	pendingTimestamp string
	timestamp        string
}

func NewReducer(state *SessionState, raceConfigPath string, logger Logger) *Reducer {
	r := &Reducer{
		state:          state,
		raceConfigPath: raceConfigPath,
		logger:         logger,
	}

	r.reloadRaceConfig()

	return r
}

// Race returns the currently loaded race config, nil when none is configured
// or the last reload failed.
func (r *Reducer) Race() *RaceConfig {
	return r.race
}

// Timestamp is the effective archive timestamp, committed from the pending
// one at the last track change (or replay completion).
func (r *Reducer) Timestamp() string {
	return r.timestamp
}

// CommitTimestamp promotes the pending timestamp. Called once after the
// initial replay, where no track change will have committed it.
func (r *Reducer) CommitTimestamp() {
	r.timestamp = r.pendingTimestamp
}

func (r *Reducer) Apply(event Event) []Intent {
	switch e := event.(type) {
	case RequestedCar:
		r.pendingCar = e.Car
		return nil
	case DriverJoined:
		return r.applyJoin(e)
	case DriverLeft:
		return r.applyLeave(e)
	case LapCompleted:
		return r.applyLap(e)
	case TrackChanged:
		return r.applyTrackChange(e)
	case TimestampObserved:
		r.pendingTimestamp = e.Value
		return nil
	}

	return nil
}

func (r *Reducer) applyJoin(e DriverJoined) []Intent {
	// a rejoin under the same name silently replaces the old session
	session := &DriverSession{Car: r.pendingCar}
	r.state.Online[e.Name] = session
	r.pendingCar = ""

	return []Intent{
		notifyJoinIntent{name: e.Name, session: session},
		persistIntent{timestamp: r.timestamp},
	}
}

func (r *Reducer) applyLeave(e DriverLeft) []Intent {
	session, ok := r.state.Online[e.Name]

	if !ok {
		r.logger.Debugf("Driver %s left but was not online, ignoring", e.Name)
		return nil
	}

	delete(r.state.Online, e.Name)

	return []Intent{
		notifyLeaveIntent{name: e.Name, messageID: session.MessageID},
		persistIntent{timestamp: r.timestamp},
	}
}

func (r *Reducer) applyLap(e LapCompleted) []Intent {
	timeMS, err := ParseLapTime(e.Time)

	if err != nil {
		r.logger.WithError(err).Warnf("Dropping lap with unparseable time %q for %s", e.Time, e.Name)
		return nil
	}

	session, ok := r.state.Online[e.Name]

	if !ok {
		r.logger.Warnf("Lap completed for %s, who is not online. Ignoring", e.Name)
		return nil
	}

	table := r.state.Laps

	if e.Cuts > 0 {
		table = r.state.Naughties
	}

	byCar := table[e.Name]

	if byCar == nil {
		byCar = make(map[string]*LapRecord)
		table[e.Name] = byCar
	}

	if existing, ok := byCar[session.Car]; ok && timeMS >= existing.TimeMS {
		// only a strictly faster lap replaces the stored one
		return nil
	}

	byCar[session.Car] = &LapRecord{
		Time:   e.Time,
		TimeMS: timeMS,
		Cuts:   e.Cuts,
	}

	return []Intent{
		persistIntent{timestamp: r.timestamp},
		notifyLeaderboardIntent{},
	}
}

func (r *Reducer) applyTrackChange(e TrackChanged) []Intent {
	r.logger.Infof("Track changed: %q -> %q", r.state.TrackDirectory, e.Directory)

	r.timestamp = r.pendingTimestamp

	intents := []Intent{
		archiveIntent{snapshot: r.state.Clone(), timestamp: r.timestamp},
	}

	// per-driver leave cleanup must run before the reset wipes the roster
	for _, name := range sortedOnlineNames(r.state.Online) {
		intents = append(intents, notifyLeaveIntent{name: name, messageID: r.state.Online[name].MessageID})
	}

	r.state.Reset()
	r.state.TrackDirectory = e.Directory

	r.reloadRaceConfig()
	r.reconcileRaceConfig()

	return append(intents,
		persistIntent{timestamp: r.timestamp},
		notifyLeaderboardIntent{},
	)
}

func (r *Reducer) reloadRaceConfig() {
	if r.raceConfigPath == "" {
		r.race = nil
		return
	}

	race, err := LoadRaceConfig(r.raceConfigPath)

	if err != nil {
		r.logger.WithError(err).Errorf("Could not load race config from %s", r.raceConfigPath)
		r.race = nil
		return
	}

	r.race = race
}

// reconcileRaceConfig overwrites the track identity and carset from the race
// config when they differ from the state, blanking the leaderboard message
// and recorded laps. Reports whether anything changed.
func (r *Reducer) reconcileRaceConfig() bool {
	if r.race == nil {
		return false
	}

	if r.race.Track.Name == r.state.TrackName && r.race.Carset == r.state.Carset {
		return false
	}

	r.state.TrackMessageID = ""
	r.state.Laps = make(map[string]map[string]*LapRecord)
	r.state.TrackName = r.race.Track.Name
	r.state.TrackDirectory = r.race.Track.Directory
	r.state.Carset = r.race.Carset

	return true
}

func sortedOnlineNames(online map[string]*DriverSession) []string {
	names := make([]string, 0, len(online))

	for name := range online {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
