package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	raw := []byte(`
listen_addr: ":9090"
spawn:
  x: 12
  y: 34
  rotation: back
session_queue: 8
demo_town_id: demo
`)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.SessionQueue != 8 || cfg.DemoTownID != "demo" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.InboxSize != Defaults().InboxSize {
		t.Fatalf("unset fields should keep defaults, got %d", cfg.InboxSize)
	}

	loc := cfg.SpawnLocation()
	if loc.X != 12 || loc.Y != 34 || loc.Rotation != "back" {
		t.Fatalf("bad spawn location: %+v", loc)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		raw  string
	}{
		{"bad rotation", "spawn:\n  rotation: sideways\n"},
		{"zero queue", "session_queue: 0\n"},
		{"empty addr", `listen_addr: ""` + "\n"},
	}
	for _, tc := range cases {
		path := filepath.Join(dir, tc.name+".yaml")
		if err := os.WriteFile(path, []byte(tc.raw), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
