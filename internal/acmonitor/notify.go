package acmonitor

// Messenger is one outbound message channel. Implementations must treat
// message ids as opaque strings.
type Messenger interface {
	Send(content string) (messageID string, err error)
	Edit(messageID string, content string) error
	Delete(messageID string) error
}

// Dispatcher formats and delivers the external notifications. Every delivery
// failure is swallowed here: it is logged and the monitor continues, at worst
// with a stale or absent message id until the next natural retrigger.
type Dispatcher struct {
	serverName      string
	moreLapsURL     string
	oneLapPerDriver bool

	activity    Messenger
	leaderboard Messenger

	logger Logger
}

func NewDispatcher(config *Config, activity Messenger, leaderboard Messenger, logger Logger) *Dispatcher {
	return &Dispatcher{
		serverName:      config.ServerName,
		moreLapsURL:     config.MoreLapsURL,
		oneLapPerDriver: config.OneLapPerDriver,
		activity:        activity,
		leaderboard:     leaderboard,
		logger:          logger,
	}
}

// NotifyJoin announces a driver joining and stores the resulting message id
// on their session so NotifyLeave can delete it later. On failure the id
// stays empty.
func (d *Dispatcher) NotifyJoin(name string, session *DriverSession) {
	if d.activity == nil {
		return
	}

	message := name + " is on " + d.serverName + "!"

	if session.Car != "" {
		message += "\n" + session.Car
	}

	messageID, err := d.activity.Send(message)

	if err != nil {
		d.logger.WithError(err).Errorf("Could not send join message for %s", name)
		return
	}

	session.MessageID = messageID
}

// NotifyLeave deletes the join announcement, best-effort.
func (d *Dispatcher) NotifyLeave(name string, messageID string) {
	if d.activity == nil || messageID == "" {
		return
	}

	if err := d.activity.Delete(messageID); err != nil {
		d.logger.WithError(err).Warnf("Could not delete join message for %s", name)
	}
}

// NotifyLeaderboard renders the leaderboard and edits the existing message in
// place, falling back to sending a new one when the edit fails or no message
// exists yet. Reports whether the stored message id changed, in which case
// the caller should persist the state.
func (d *Dispatcher) NotifyLeaderboard(state *SessionState) bool {
	if d.leaderboard == nil {
		return false
	}

	message := RenderLeaderboard(state, d.oneLapPerDriver, d.moreLapsURL)

	if state.TrackMessageID != "" {
		err := d.leaderboard.Edit(state.TrackMessageID, message)

		if err == nil {
			return false
		}

		d.logger.WithError(err).Warnf("Could not edit leaderboard message %s, sending a new one", state.TrackMessageID)
	}

	messageID, err := d.leaderboard.Send(message)

	if err != nil {
		d.logger.WithError(err).Errorf("Could not send leaderboard message")
		return false
	}

	changed := messageID != state.TrackMessageID
	state.TrackMessageID = messageID

	return changed
}
