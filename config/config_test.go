package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aerialviews007/riglet/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	def := config.DefaultConfig()
	if cfg.Audio != def.Audio {
		t.Fatalf("Audio = %+v, want defaults %+v", cfg.Audio, def.Audio)
	}
	if cfg.Clock.ClocksPerPulse != 12 {
		t.Fatalf("ClocksPerPulse = %d, want 12", cfg.Clock.ClocksPerPulse)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"audio": {"gain": 0.5}, "clock": {"clocksPerPulse": 24}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Audio.Gain != 0.5 {
		t.Fatalf("Gain = %v, want 0.5", cfg.Audio.Gain)
	}
	if cfg.Clock.ClocksPerPulse != 24 {
		t.Fatalf("ClocksPerPulse = %d, want 24", cfg.Clock.ClocksPerPulse)
	}
	// untouched fields keep their defaults
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.OpenRetries != 20 {
		t.Fatalf("defaults lost: %+v", cfg.Audio)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Fatal("Load accepted truncated JSON")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")

	cfg := config.DefaultConfig()
	cfg.Audio.Device = "hw:0,0"
	cfg.Clock.ScanSeconds = 2.5
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Audio.Device != "hw:0,0" || got.Clock.ScanSeconds != 2.5 {
		t.Fatalf("round trip lost values: %+v", got)
	}
}
