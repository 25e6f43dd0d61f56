// Package main is the entry point for the audioglow terminal player.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwb190565/audioglow/audio"
	"github.com/dwb190565/audioglow/config"
	"github.com/dwb190565/audioglow/intake"
	"github.com/dwb190565/audioglow/playlist"
	"github.com/dwb190565/audioglow/transport"
	"github.com/dwb190565/audioglow/ui"
)

func configPath() string {
	if p := os.Getenv("AUDIOGLOW_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// newLogger logs to the configured file; the TUI owns the terminal.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, nil)), func() { f.Close() }, nil
}

func run() error {
	// No arguments is fine: the session can start empty and go straight
	// to microphone capture.
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	store := playlist.New()
	graph := audio.NewGraph(audio.Config{
		SampleRate: cfg.SampleRate,
		FFTSize:    cfg.FFTSize,
		MicFrames:  cfg.MicFrames,
		Gain:       cfg.Gain,
	}, logger)
	tr := transport.New(graph, store, logger)
	defer tr.Shutdown()
	tr.SetVolume(cfg.Gain)

	// Appending to the empty playlist auto-starts playback at track 0.
	tr.AddTracks(intake.FromArgs(os.Args[1:]))

	m := ui.NewModel(tr, store, graph.Feed, cfg.Renderer)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
