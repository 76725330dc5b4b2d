package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadAppConfig_Missing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if cfg.ConfigVersion != latestConfigVersion {
		t.Errorf("ConfigVersion = %d, want %d", cfg.ConfigVersion, latestConfigVersion)
	}
	if cfg.TotalPlayers() != 8 {
		t.Errorf("TotalPlayers() = %d, want 8", cfg.TotalPlayers())
	}
	if cfg.RosterFile != filepath.Join(dir, "teamlock.yml") {
		t.Errorf("RosterFile = %q, want it under %s", cfg.RosterFile, dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadAppConfig_Parse(t *testing.T) {
	dir := t.TempDir()
	content := `config_version: 1
team_allocation: [2, 3]
path_hash_salt: 42
stick_only_players: [SlyOwl]
ports_to_use: 2
roster_file: /var/lib/teamjoy/lock.yml
poll_interval: 10ms
mqtt:
  enabled: true
  broker: tcp://broker:1883
`
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if cfg.TotalPlayers() != 5 || len(cfg.TeamAllocation) != 2 {
		t.Errorf("TeamAllocation = %v", cfg.TeamAllocation)
	}
	if cfg.PathHashSalt != 42 {
		t.Errorf("PathHashSalt = %d, want 42", cfg.PathHashSalt)
	}
	if cfg.TeamHashSalt != 1 {
		t.Errorf("TeamHashSalt = %d, want default 1", cfg.TeamHashSalt)
	}
	if len(cfg.StickOnlyPlayers) != 1 || cfg.StickOnlyPlayers[0] != "SlyOwl" {
		t.Errorf("StickOnlyPlayers = %v", cfg.StickOnlyPlayers)
	}
	if cfg.PortsToUse != 2 {
		t.Errorf("PortsToUse = %d, want 2", cfg.PortsToUse)
	}
	if cfg.RosterFile != "/var/lib/teamjoy/lock.yml" {
		t.Errorf("RosterFile = %q, absolute path was rewritten", cfg.RosterFile)
	}
	if cfg.PollInterval != 10*time.Millisecond {
		t.Errorf("PollInterval = %v, want 10ms", cfg.PollInterval)
	}
	if cfg.RenderInterval != 50*time.Millisecond {
		t.Errorf("RenderInterval = %v, want default 50ms", cfg.RenderInterval)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://broker:1883" || cfg.MQTT.Topic != "teamjoy/feedback" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
}

func TestLoadAppConfig_Unversioned(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("team_allocation: [1]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if cfg.ConfigVersion != 0 {
		t.Errorf("ConfigVersion = %d, want 0 for a file without config_version", cfg.ConfigVersion)
	}
}

func TestLoadAppConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("team_allocation: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(dir); err == nil {
		t.Error("LoadAppConfig() expected parse error, got nil")
	}
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"no teams", func(c *AppConfig) { c.TeamAllocation = nil }, "team_allocation"},
		{"empty team", func(c *AppConfig) { c.TeamAllocation = []int{2, 0} }, "team_allocation[1]"},
		{"ports", func(c *AppConfig) { c.PortsToUse = 0 }, "ports_to_use"},
		{"name length", func(c *AppConfig) { c.NameMaxLength = 0 }, "name_max_length"},
		{"poll too slow", func(c *AppConfig) { c.PollInterval = 100 * time.Millisecond }, "poll_interval"},
		{"render", func(c *AppConfig) { c.RenderInterval = 0 }, "render_interval"},
		{"mqtt broker", func(c *AppConfig) { c.MQTT.Enabled = true; c.MQTT.Broker = "" }, "mqtt.broker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultAppConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAppConfig_CheckNameLength(t *testing.T) {
	wh := testWordhash(t)
	cfg := defaultAppConfig()

	cfg.NameMaxLength = wh.ShortestName()
	if err := cfg.CheckNameLength(wh); err != nil {
		t.Errorf("CheckNameLength() at the shortest name: %v", err)
	}
	cfg.NameMaxLength = wh.ShortestName() - 1
	if err := cfg.CheckNameLength(wh); err == nil {
		t.Error("CheckNameLength() expected error below the shortest name")
	}
}

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()
	if err := initConfig(dir); err != nil {
		t.Fatalf("initConfig() error = %v", err)
	}
	for _, f := range []string{"config.yml", "words/adjectives.txt", "words/nouns.txt", "words/teams.txt"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Errorf("%s not created: %v", f, err)
		}
	}

	// Existing files are left alone.
	custom := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(custom, []byte("team_allocation: [1]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := initConfig(dir); err != nil {
		t.Fatalf("initConfig() second run error = %v", err)
	}
	data, _ := os.ReadFile(custom)
	if string(data) != "team_allocation: [1]\n" {
		t.Error("initConfig() overwrote an existing file")
	}

	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if cfg.TotalPlayers() != 1 {
		t.Errorf("TotalPlayers() = %d, want 1", cfg.TotalPlayers())
	}
}

func TestDefaultConfigFileParses(t *testing.T) {
	dir := t.TempDir()
	if err := initConfig(dir); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped config.yml does not validate: %v", err)
	}
	if cfg.ConfigVersion != latestConfigVersion {
		t.Errorf("shipped config.yml has version %d, want %d", cfg.ConfigVersion, latestConfigVersion)
	}
}

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	builtin, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}
	if err := initConfig(dir); err != nil {
		t.Fatal(err)
	}
	shipped, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig() error = %v", err)
	}

	// An empty YAML list decodes to an empty slice rather than nil.
	for _, c := range []*AppConfig{builtin, shipped} {
		if len(c.StickOnlyPlayers) == 0 {
			c.StickOnlyPlayers = nil
		}
	}
	if !reflect.DeepEqual(builtin, shipped) {
		t.Errorf("built-in defaults differ from config.yml:\n%+v\n%+v", builtin, shipped)
	}
}
