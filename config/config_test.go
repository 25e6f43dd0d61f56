package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dwb190565/audioglow/config"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 44100 || cfg.Renderer != "bars" {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := write(t, `
sample_rate: 48000
fft_size: 4096
renderer: waterfall
gain: 0.5
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleRate != 48000 || cfg.FFTSize != 4096 || cfg.Renderer != "waterfall" || cfg.Gain != 0.5 {
		t.Errorf("got %+v", cfg)
	}
	// Untouched fields keep their defaults.
	if cfg.MicFrames != config.Default().MicFrames {
		t.Errorf("mic_frames = %d, want default %d", cfg.MicFrames, config.Default().MicFrames)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	path := write(t, "sample_rte: 48000\n")
	if _, err := config.Load(path); err == nil {
		t.Error("unknown field was accepted")
	}
}

func TestInvalidFFTSizeRejected(t *testing.T) {
	for _, size := range []int{0, 100, 1000} {
		path := write(t, fmt.Sprintf("fft_size: %d\n", size))
		if _, err := config.Load(path); err == nil {
			t.Errorf("fft_size %d was accepted", size)
		}
	}
}

func TestGainOutOfRangeRejected(t *testing.T) {
	path := write(t, "gain: 1.5\n")
	_, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "gain") {
		t.Errorf("gain 1.5 accepted (err=%v)", err)
	}
}
