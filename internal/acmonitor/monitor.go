package acmonitor

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/nxadm/tail"
	"github.com/pkg/errors"
)

// Monitor is the outer loop: it replays the existing log, then follows it
// indefinitely, feeding each line through the classifier and reducer and
// executing the resulting intents in order. It is single-threaded; nothing
// else touches the state.
type Monitor struct {
	config *Config
	logger Logger

	state      *SessionState
	window     *LineWindow
	classifier *Classifier
	reducer    *Reducer
	store      *Store
	dispatcher *Dispatcher
}

func NewMonitor(config *Config, logger Logger) (*Monitor, error) {
	store := NewStore(config.StateDir, logger)

	state, err := store.Load()

	if err != nil {
		logger.WithError(err).Warnf("Could not load state snapshot, starting from empty state")
		state = nil
	}

	if state == nil {
		state = NewSessionState()
		logger.Infof("No state snapshot found, starting from empty state")
	} else {
		logger.Infof("Loaded state snapshot from %s", store.StatePath())
	}

	var activity, leaderboard Messenger

	if config.WebhookLog != "" {
		activity, err = NewDiscordWebhook(config.WebhookLog)

		if err != nil {
			return nil, errors.Wrap(err, "initialise activity webhook")
		}
	}

	if config.WebhookLaps != "" {
		leaderboard, err = NewDiscordWebhook(config.WebhookLaps)

		if err != nil {
			return nil, errors.Wrap(err, "initialise leaderboard webhook")
		}
	}

	monitor := &Monitor{
		config: config,
		logger: logger,
		state:  state,
		window: NewLineWindow(lineWindowSize),
		store:  store,
	}

	monitor.reducer = NewReducer(state, config.RaceJSONPath, logger)
	monitor.classifier = NewClassifier(monitor.window, monitor.reducer.Race, func() string { return state.TrackDirectory }, logger)
	monitor.dispatcher = NewDispatcher(config, activity, leaderboard, logger)

	return monitor, nil
}

// Run replays the full existing log with notifications and per-event persists
// suppressed, persists the caught-up state once, posts the current
// leaderboard, then follows the log until the context is cancelled. Only the
// log file being unreadable is fatal.
func (m *Monitor) Run(ctx context.Context) error {
	if m.reducer.reconcileRaceConfig() {
		m.logger.Infof("Track info updated from race config: %s (%s)", m.state.TrackName, m.state.Carset)
	}

	if err := m.replay(); err != nil {
		return err
	}

	// the timestamp observed during replay belongs to the session the log
	// currently describes
	m.reducer.CommitTimestamp()

	if err := m.store.SaveAndArchive(m.state, m.reducer.Timestamp()); err != nil {
		m.logger.WithError(err).Errorf("Could not persist state after replay")
	}

	if m.dispatcher.NotifyLeaderboard(m.state) {
		if err := m.store.SaveAndArchive(m.state, m.reducer.Timestamp()); err != nil {
			m.logger.WithError(err).Errorf("Could not persist leaderboard message id")
		}
	}

	m.logger.Infof("Monitoring %s for changes", m.config.LogPath)

	return m.follow(ctx)
}

func (m *Monitor) replay() error {
	f, err := os.Open(m.config.LogPath)

	if err != nil {
		return errors.Wrap(err, "open server log")
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	numLines := 0

	for scanner.Scan() {
		m.processLine(scanner.Text(), true)
		numLines++
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "replay server log")
	}

	m.logger.Infof("Replayed %d existing log lines", numLines)

	return nil
}

func (m *Monitor) follow(ctx context.Context) error {
	t, err := tail.TailFile(m.config.LogPath, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:    tail.DiscardingLogger,
	})

	if err != nil {
		return errors.Wrap(err, "follow server log")
	}

	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-t.Lines:
			if !ok {
				return errors.Wrap(t.Err(), "follow server log")
			}

			if line.Err != nil {
				m.logger.WithError(line.Err).Warnf("Error reading server log, continuing")
				continue
			}

			m.processLine(line.Text, false)
		}
	}
}

// processLine pushes the line into the window, classifies it and applies any
// resulting event. A malformed line never stops the loop.
func (m *Monitor) processLine(line string, replay bool) {
	m.window.Push(line)

	event := m.classifier.Classify(line)

	if event == nil {
		return
	}

	m.logger.Debugf("Event (%s): %s", event.eventName(), strings.TrimSpace(line))

	m.execute(m.reducer.Apply(event), replay)
}

// execute runs the reducer's intents in order. During replay, join and
// leaderboard messages are suppressed (joins for drivers who have since left
// would be noise) and per-event persists are deferred to a single save at the
// end. Leave cleanup still runs so join messages sent before a restart are
// deleted when the replayed log shows the driver leaving, and track-change
// archives still run so no track session's record is lost.
func (m *Monitor) execute(intents []Intent, replay bool) {
	for _, intent := range intents {
		switch it := intent.(type) {
		case persistIntent:
			if replay {
				continue
			}

			if err := m.store.SaveAndArchive(m.state, it.timestamp); err != nil {
				m.logger.WithError(err).Errorf("Could not persist state")
			}
		case archiveIntent:
			// a track change in the replayed portion of the log still has to
			// write the ended track's archive, or a restart across a change
			// loses that session's record. During replay, skip only when the
			// snapshot could not produce an archive file anyway.
			if replay && (it.snapshot.TrackDirectory == "" || it.timestamp == "") {
				continue
			}

			if err := m.store.SaveAndArchive(it.snapshot, it.timestamp); err != nil {
				m.logger.WithError(err).Errorf("Could not archive previous track state")
			}
		case notifyJoinIntent:
			if replay {
				continue
			}

			m.dispatcher.NotifyJoin(it.name, it.session)
		case notifyLeaveIntent:
			m.dispatcher.NotifyLeave(it.name, it.messageID)
		case notifyLeaderboardIntent:
			if replay {
				continue
			}

			if m.dispatcher.NotifyLeaderboard(m.state) {
				if err := m.store.SaveAndArchive(m.state, m.reducer.Timestamp()); err != nil {
					m.logger.WithError(err).Errorf("Could not persist leaderboard message id")
				}
			}
		}
	}
}
