package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yml"

// AppConfig is config.yml.
type AppConfig struct {
	ConfigVersion int `yaml:"config_version"`

	// TeamAllocation is the number of players on each team, in output order.
	TeamAllocation []int  `yaml:"team_allocation"`
	PathHashSalt   uint32 `yaml:"path_hash_salt"`
	TeamHashSalt   uint32 `yaml:"team_hash_salt"`
	NameMaxLength  int    `yaml:"name_max_length"`

	// StickOnlyPlayers never contribute button presses.
	StickOnlyPlayers []string `yaml:"stick_only_players"`

	// PortsToUse limits multi-port adapters to their first N sub ports.
	PortsToUse int    `yaml:"ports_to_use"`
	ByPathDir  string `yaml:"by_path_dir"`
	RosterFile string `yaml:"roster_file"`
	SinkName   string `yaml:"sink_name"`

	PollInterval   time.Duration `yaml:"poll_interval"`
	RenderInterval time.Duration `yaml:"render_interval"`
	LogLevel       string        `yaml:"log_level"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the optional feedback publisher.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		ConfigVersion:  latestConfigVersion,
		TeamAllocation: []int{4, 4},
		PathHashSalt:   1,
		TeamHashSalt:   1,
		NameMaxLength:  12,
		PortsToUse:     1,
		ByPathDir:      defaultByPathDir,
		RosterFile:     "teamlock.yml",
		SinkName:       "teamjoy{{index}}",
		PollInterval:   5 * time.Millisecond,
		RenderInterval: 50 * time.Millisecond,
		LogLevel:       "info",
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "teamjoy",
			Topic:    "teamjoy/feedback",
		},
	}
}

// LoadAppConfig reads dir/config.yml. A missing file yields the defaults;
// keys missing from the file keep their default values.
func LoadAppConfig(dir string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// An unversioned file predates config_version.
		cfg.ConfigVersion = 0
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if !filepath.IsAbs(cfg.RosterFile) {
		cfg.RosterFile = filepath.Join(dir, cfg.RosterFile)
	}
	return &cfg, nil
}

// Validate checks the config for values the session cannot run with.
func (c *AppConfig) Validate() error {
	if len(c.TeamAllocation) == 0 {
		return fmt.Errorf("team_allocation must name at least one team")
	}
	for i, n := range c.TeamAllocation {
		if n <= 0 {
			return fmt.Errorf("team_allocation[%d] must be positive, got %d", i, n)
		}
	}
	if c.PortsToUse <= 0 {
		return fmt.Errorf("ports_to_use must be positive, got %d", c.PortsToUse)
	}
	if c.NameMaxLength <= 0 {
		return fmt.Errorf("name_max_length must be positive, got %d", c.NameMaxLength)
	}
	if c.PollInterval <= 0 || c.PollInterval >= 100*time.Millisecond {
		return fmt.Errorf("poll_interval must be between 0 and 100ms, got %s", c.PollInterval)
	}
	if c.RenderInterval <= 0 {
		return fmt.Errorf("render_interval must be positive, got %s", c.RenderInterval)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}
	return nil
}

// CheckNameLength makes sure at least one adjective+noun pair fits in
// name_max_length, otherwise display name derivation would never finish.
func (c *AppConfig) CheckNameLength(w *Wordhash) error {
	if n := w.ShortestName(); c.NameMaxLength < n {
		return fmt.Errorf("name_max_length %d is shorter than the shortest possible name (%d)",
			c.NameMaxLength, n)
	}
	return nil
}

// TotalPlayers is the number of controllers the allocation expects.
func (c *AppConfig) TotalPlayers() int {
	n := 0
	for _, s := range c.TeamAllocation {
		n += s
	}
	return n
}
