package acmonitor

// Intent is a side effect requested by the reducer, executed in order by the
// monitor loop once the state mutation that produced it is complete. During
// the initial log replay most intents are suppressed; see Monitor.execute.
type Intent interface {
	intent()
}

// persistIntent saves and archives the live state.
type persistIntent struct {
	timestamp string
}

// archiveIntent saves and archives a snapshot taken before a track-change
// reset, so the ended track's final state survives.
type archiveIntent struct {
	snapshot  *SessionState
	timestamp string
}

// notifyJoinIntent announces a join. The dispatcher writes the resulting
// message id back onto the session.
type notifyJoinIntent struct {
	name    string
	session *DriverSession
}

// notifyLeaveIntent deletes the join announcement, best-effort.
type notifyLeaveIntent struct {
	name      string
	messageID string
}

type notifyLeaderboardIntent struct{}

func (persistIntent) intent()           {}
func (archiveIntent) intent()           {}
func (notifyJoinIntent) intent()        {}
func (notifyLeaveIntent) intent()       {}
func (notifyLeaderboardIntent) intent() {}
