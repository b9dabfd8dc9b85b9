package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AudioConfig controls the pulse output device and waveform.
type AudioConfig struct {
	Device       string  `json:"device,omitempty"`       // device identifier, e.g. "default" or "hw:0,0"
	SampleRate   int     `json:"sampleRate,omitempty"`   // output sample rate in Hz
	PulseMS      float64 `json:"pulseMs,omitempty"`      // pulse length; 2.0-3.0 ms works well for Pocket Operators
	Gain         float64 `json:"gain,omitempty"`         // 0.0-1.0; POs often prefer hot pulses
	LeftOnly     bool    `json:"leftOnly"`               // PO listens on L = tip
	PeriodFrames int     `json:"periodFrames,omitempty"` // device write period size in frames
	OpenRetries  int     `json:"openRetries,omitempty"`  // device open attempts before giving up
	OpenDelayMS  int     `json:"openDelayMs,omitempty"`  // delay between open attempts
}

// ClockConfig controls clock-to-pulse reduction and source discovery.
type ClockConfig struct {
	ClocksPerPulse int      `json:"clocksPerPulse,omitempty"` // MIDI clock = 24 ppqn -> 12 = 1/8th; PO default
	IgnorePorts    []string `json:"ignorePorts,omitempty"`    // case-insensitive patterns, never offered as sources
	ScanSeconds    float64  `json:"scanSeconds,omitempty"`    // rescan inputs every N seconds
}

// Config is the main configuration structure for the riglet daemons.
type Config struct {
	Audio AudioConfig `json:"audio,omitempty"`
	Clock ClockConfig `json:"clock,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			Device:       "default",
			SampleRate:   44100,
			PulseMS:      3.0,
			Gain:         1.0,
			LeftOnly:     true,
			PeriodFrames: 256,
			OpenRetries:  20,
			OpenDelayMS:  500,
		},
		Clock: ClockConfig{
			ClocksPerPulse: 12,
			IgnorePorts:    []string{"Through", "Virtual", "System", "RtMidi", "Announce"},
			ScanSeconds:    1.0,
		},
	}
}

// OpenDelay returns the delay between device open attempts.
func (a AudioConfig) OpenDelay() time.Duration {
	return time.Duration(a.OpenDelayMS) * time.Millisecond
}

// ScanInterval returns the input rescan interval.
func (c ClockConfig) ScanInterval() time.Duration {
	return time.Duration(c.ScanSeconds * float64(time.Second))
}

// ConfigPath returns the default path to config.json.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "riglet", "config.json"), nil
}

// Load reads the config from path, or the default location when path is
// empty. A missing file is not an error; defaults are returned. Fields left
// out of the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
