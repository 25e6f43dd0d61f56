// Package config loads the player configuration from an optional YAML
// file, falling back to defaults when none exists.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the audio graph and the UI.
type Config struct {
	// SampleRate is the output and capture sample rate in Hz.
	SampleRate int `yaml:"sample_rate"`

	// FFTSize is the analyser window size; must be a power of two.
	FFTSize int `yaml:"fft_size"`

	// MicFrames is the capture callback frame count.
	MicFrames int `yaml:"mic_frames"`

	// Renderer selects the startup visualization renderer.
	Renderer string `yaml:"renderer"`

	// Gain is the initial gain level in [0,1].
	Gain float64 `yaml:"gain"`

	// LogFile receives structured logs; empty disables logging. The TUI
	// owns the terminal, so logs never go to stderr.
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SampleRate: 44100,
		FFTSize:    2048,
		MicFrames:  1024,
		Renderer:   "bars",
		Gain:       1.0,
	}
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "audioglow", "config.yaml")
}

// Load reads the YAML file at path on top of the defaults. A missing
// file is not an error; unknown fields are.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.FFTSize < 256 || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("fft_size must be a power of two >= 256, got %d", c.FFTSize)
	}
	if c.MicFrames <= 0 {
		return fmt.Errorf("mic_frames must be positive, got %d", c.MicFrames)
	}
	if c.Gain < 0 || c.Gain > 1 {
		return fmt.Errorf("gain must be in [0,1], got %g", c.Gain)
	}
	return nil
}
