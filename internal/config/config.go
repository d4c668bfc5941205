// Package config loads the server's yaml configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/neu-cs4530/team-project-6l/internal/protocol"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	// Spawn is where newly joined players are placed.
	Spawn Spawn `yaml:"spawn"`

	// SessionQueue is the per-session outbound buffer; when it fills, the
	// oldest queued event is dropped rather than blocking the town loop.
	SessionQueue int `yaml:"session_queue"`
	InboxSize    int `yaml:"inbox_size"`

	// DataDir holds per-town event journals. Empty disables journaling.
	DataDir string `yaml:"data_dir"`

	// ProfilesDB is the sqlite user directory consulted at join time.
	// Empty runs the server with a permissive in-memory resolver.
	ProfilesDB string `yaml:"profiles_db"`

	// DemoTownID, when set, creates a fixed public town at startup.
	DemoTownID   string `yaml:"demo_town_id"`
	DemoTownName string `yaml:"demo_town_name"`

	// LogFile enables rotating file logging; empty logs to stdout.
	LogFile string `yaml:"log_file"`
}

type Spawn struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation string  `yaml:"rotation"`
}

func Defaults() Config {
	return Config{
		ListenAddr:   ":8081",
		Spawn:        Spawn{X: 0, Y: 0, Rotation: protocol.DirFront},
		SessionQueue: 32,
		InboxSize:    256,
		DemoTownName: "Demo Town",
	}
}

// Load reads path over Defaults. An empty path returns Defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if !protocol.IsDirection(c.Spawn.Rotation) {
		return fmt.Errorf("spawn.rotation must be one of front, back, left, right")
	}
	if c.SessionQueue < 1 {
		return fmt.Errorf("session_queue must be positive")
	}
	if c.InboxSize < 1 {
		return fmt.Errorf("inbox_size must be positive")
	}
	return nil
}

// SpawnLocation converts the configured spawn into a wire location.
func (c Config) SpawnLocation() protocol.Location {
	return protocol.Location{X: c.Spawn.X, Y: c.Spawn.Y, Rotation: c.Spawn.Rotation}
}
