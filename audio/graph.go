// Package audio owns the session audio graph: one shared analyser feed,
// one gain stage, and at most one connected producer, switchable between
// file playback and microphone capture. Devices are brought up lazily on
// first use and torn down exactly once.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gordonklaus/portaudio"

	"github.com/dwb190565/audioglow/playlist"
)

// Config holds the graph's device parameters.
type Config struct {
	SampleRate int
	FFTSize    int
	MicFrames  int
	Gain       float64
}

// Graph is the session audio graph. All exported methods are safe for
// concurrent use.
type Graph struct {
	mu  sync.Mutex
	cfg Config
	log *slog.Logger

	feed   *Feed
	gain   *gainStreamer
	file   *fileProducer
	mic    *micProducer
	active SourceKind

	speakerUp bool
	paUp      bool
	closed    bool
}

// NewGraph creates a Graph without touching any audio device; the
// speaker and the capture backend come up on first use.
func NewGraph(cfg Config, log *slog.Logger) *Graph {
	g := &Graph{cfg: cfg, log: log, gain: &gainStreamer{}}
	g.gain.set(cfg.Gain)
	return g
}

// Feed returns the shared analyser handle for renderers, or nil before
// any audio session exists. The handle stays valid until Teardown.
func (g *Graph) Feed() *Feed {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.feed
}

// ActiveSource returns which producer is currently connected.
func (g *Graph) ActiveSource() SourceKind {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Graph) ensureFeedLocked() {
	if g.feed == nil {
		g.feed = NewFeed(float64(g.cfg.SampleRate), g.cfg.FFTSize)
	}
}

func (g *Graph) ensureSpeakerLocked() error {
	if g.speakerUp {
		return nil
	}
	sr := beep.SampleRate(g.cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}
	g.speakerUp = true
	g.file = newFileProducer(sr, g.feed, g.gain)
	return nil
}

// BindFile routes the given track into the shared feed, disconnecting
// the microphone if it was active. On decode failure the previous file
// binding is already released and no producer is connected.
func (g *Graph) BindFile(t playlist.Track, onEnded func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrTornDown
	}
	g.releaseMicLocked()
	g.ensureFeedLocked()
	if err := g.ensureSpeakerLocked(); err != nil {
		return err
	}
	g.feed.setProducer(SourceFile)
	if err := g.file.bind(t, onEnded); err != nil {
		g.feed.setProducer(SourceNone)
		g.active = SourceNone
		return err
	}
	g.active = SourceFile
	g.log.Debug("file source bound", "track", t.Title)
	return nil
}

// Restart rewinds the bound track and plays it again in place.
func (g *Graph) Restart(onEnded func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed || g.file == nil {
		return ErrTornDown
	}
	return g.file.restart(onEnded)
}

// Pause pauses file playback without releasing anything.
func (g *Graph) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file != nil {
		g.file.pause()
	}
}

// Unload releases the file binding's byte-handle entirely and leaves the
// graph with no connected producer (unless the mic is active).
func (g *Graph) Unload() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file != nil {
		g.file.unload()
	}
	if g.active == SourceFile {
		g.active = SourceNone
		g.feed.setProducer(SourceNone)
	}
}

// BindMic opens a fresh capture stream and makes it the connected
// producer. On failure the prior state is left untouched.
func (g *Graph) BindMic() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrTornDown
	}
	g.ensureFeedLocked()
	if !g.paUp {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("%w: %v", ErrMicAccess, err)
		}
		g.paUp = true
	}
	mic, err := newMicProducer(g.feed, float64(g.cfg.SampleRate), g.cfg.MicFrames)
	if err != nil {
		return err
	}
	// Capture is open; now it is safe to displace the previous producer.
	g.releaseMicLocked()
	g.mic = mic
	g.active = SourceMic
	g.feed.setProducer(SourceMic)
	g.log.Debug("mic source bound")
	return nil
}

// ReleaseMic stops the capture stream and, if a file binding still
// exists, reconnects it to the feed so playback can resume seamlessly.
func (g *Graph) ReleaseMic() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.releaseMicLocked()
	if g.file != nil && g.file.bound() {
		g.active = SourceFile
		g.feed.setProducer(SourceFile)
	} else if g.feed != nil {
		g.active = SourceNone
		g.feed.setProducer(SourceNone)
	}
}

func (g *Graph) releaseMicLocked() {
	if g.mic == nil {
		return
	}
	g.mic.close()
	g.mic = nil
	if g.active == SourceMic {
		g.active = SourceNone
	}
	g.log.Debug("mic source released")
}

// SetGain sets the shared gain stage, clamped to [0,1].
func (g *Graph) SetGain(level float64) {
	g.gain.set(level)
}

// Seek moves file playback to an absolute position.
func (g *Graph) Seek(to time.Duration) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file == nil {
		return nil
	}
	return g.file.seek(to)
}

// Position returns the current file playback position.
func (g *Graph) Position() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file == nil {
		return 0
	}
	return g.file.position()
}

// Duration returns the bound track's total duration.
func (g *Graph) Duration() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file == nil {
		return 0
	}
	return g.file.duration()
}

// Teardown stops any open capture, releases the file binding and closes
// the audio devices. Safe to call more than once and safe to call even
// if the graph was never initialized.
func (g *Graph) Teardown() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	g.closed = true
	g.releaseMicLocked()
	if g.file != nil {
		g.file.unload()
		g.file = nil
	}
	if g.speakerUp {
		speaker.Close()
		g.speakerUp = false
	}
	if g.paUp {
		portaudio.Terminate()
		g.paUp = false
	}
	if g.feed != nil {
		g.feed.setProducer(SourceNone)
		g.feed = nil
	}
	g.active = SourceNone
	g.log.Debug("audio graph torn down")
}
