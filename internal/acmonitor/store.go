package acmonitor

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	stateFileName    = "state.json"
	archiveDirectory = "archive"
)

// Store writes the state snapshot to a fixed path in the state directory and
// keeps a per-track-session archive copy alongside it.
type Store struct {
	dir    string
	logger Logger
}

func NewStore(dir string, logger Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger,
	}
}

func (s *Store) StatePath() string {
	return filepath.Join(s.dir, stateFileName)
}

// Load reloads the snapshot from disk. A missing snapshot is not an error;
// it returns (nil, nil) and the caller starts from an empty state.
func (s *Store) Load() (*SessionState, error) {
	data, err := ioutil.ReadFile(s.StatePath())

	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "read state snapshot")
	}

	state := &SessionState{}

	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.Wrap(err, "decode state snapshot")
	}

	state.ensureMaps()

	return state, nil
}

// SaveAndArchive writes the snapshot atomically, then copies it to
// archive/{timestamp}{trackDirectory}.json when both parts are known. An
// archive failure is logged and recorded as a blank archive path; only
// failure to write the snapshot itself is returned as an error.
func (s *Store) SaveAndArchive(state *SessionState, timestamp string) error {
	if err := os.MkdirAll(filepath.Join(s.dir, archiveDirectory), 0755); err != nil {
		return errors.Wrap(err, "create state directory")
	}

	if state.TrackDirectory != "" && timestamp != "" {
		state.ArchivePath = filepath.Join(s.dir, archiveDirectory, timestamp+state.TrackDirectory+".json")
	} else {
		state.ArchivePath = ""
	}

	data, err := json.MarshalIndent(state, "", "  ")

	if err != nil {
		return errors.Wrap(err, "encode state snapshot")
	}

	tempPath := s.StatePath() + ".tmp"

	if err := ioutil.WriteFile(tempPath, data, 0644); err != nil {
		return errors.Wrap(err, "write state snapshot")
	}

	if err := os.Rename(tempPath, s.StatePath()); err != nil {
		return errors.Wrap(err, "replace state snapshot")
	}

	if state.ArchivePath != "" {
		if err := ioutil.WriteFile(state.ArchivePath, data, 0644); err != nil {
			s.logger.WithError(err).Errorf("Could not write archive copy %s", state.ArchivePath)
			state.ArchivePath = ""
		}
	}

	s.logger.Debugf("Saved state snapshot to %s (archive: %q)", s.StatePath(), state.ArchivePath)

	return nil
}
