package acmonitor

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// RaceConfig is the optional race.json document describing the scheduled
// event: the track, the carset label and the friendly-name to directory
// mapping for its cars. It is produced by the content packaging tooling and
// treated here as read-only input.
type RaceConfig struct {
	Track struct {
		Name      string `json:"name"`
		Directory string `json:"directory"`
	} `json:"track"`
	Carset string            `json:"carset"`
	Cars   map[string]string `json:"cars"`
}

func LoadRaceConfig(path string) (*RaceConfig, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, errors.Wrap(err, "open race config")
	}

	defer f.Close()

	var raceConfig *RaceConfig

	if err := json.NewDecoder(f).Decode(&raceConfig); err != nil {
		return nil, errors.Wrap(err, "decode race config")
	}

	return raceConfig, nil
}

// CarName reverse-looks-up the friendly name for a car directory.
func (rc *RaceConfig) CarName(directory string) (string, bool) {
	for name, dir := range rc.Cars {
		if dir == directory {
			return name, true
		}
	}

	return "", false
}
