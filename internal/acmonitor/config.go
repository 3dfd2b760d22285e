package acmonitor

import (
	"os"

	"github.com/cj123/ini"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var ErrNoLogPath = errors.New("acmonitor: no log_path configured")

// Config is the monitor's startup configuration.
type Config struct {
	// ServerName appears in join messages. When empty it is read from the
	// NAME key of ServerCfgPath, if that is set.
	ServerName    string `yaml:"server_name"`
	ServerCfgPath string `yaml:"server_cfg"`

	// LogPath is the acServer log file to replay and follow. Required.
	LogPath string `yaml:"log_path"`

	// StateDir holds state.json and the archive directory.
	StateDir string `yaml:"state_dir"`

	// RaceJSONPath optionally points at the race.json produced by the
	// content packaging tool, re-read at every track change.
	RaceJSONPath string `yaml:"race_json"`

	WebhookLog  string `yaml:"webhook_log"`
	WebhookLaps string `yaml:"webhook_laps"`
	MoreLapsURL string `yaml:"more_laps_url"`

	// OneLapPerDriver ranks each driver's single best lap rather than one
	// entry per car they drove.
	OneLapPerDriver bool `yaml:"one_lap_per_driver"`
}

func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	config := &Config{
		StateDir:        "web",
		OneLapPerDriver: true,
	}

	if err := yaml.NewDecoder(f).Decode(config); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if config.LogPath == "" {
		return nil, ErrNoLogPath
	}

	if config.ServerName == "" && config.ServerCfgPath != "" {
		name, err := serverNameFromCfg(config.ServerCfgPath)

		if err != nil {
			return nil, errors.Wrapf(err, "read server name from %s", config.ServerCfgPath)
		}

		config.ServerName = name
	}

	return config, nil
}

// serverNameFromCfg reads the NAME key of an acServer server_cfg.ini.
func serverNameFromCfg(path string) (string, error) {
	cfg, err := ini.Load(path)

	if err != nil {
		return "", err
	}

	return cfg.Section("SERVER").Key("NAME").Value(), nil
}
