package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/dwb190565/audioglow/playlist"
)

const toneSamples = 1024

// writeWAV generates a short wav file so decode has real bytes to chew.
func writeWAV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	tone := beep.Take(toneSamples, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = 0.25
			samples[i][1] = 0.25
		}
		return len(samples), true
	}))
	if err := wav.Encode(f, tone, format); err != nil {
		t.Fatal(err)
	}
	return path
}

// queuedProducer swaps the speaker for a capture so tests can pull the
// queued sequences themselves, standing in for the output device.
type queuedProducer struct {
	*fileProducer
	queued []beep.Streamer
}

func newQueuedProducer() *queuedProducer {
	gain := &gainStreamer{}
	gain.set(1)
	q := &queuedProducer{}
	q.fileProducer = newFileProducer(44100, NewFeed(44100, 512), gain)
	q.fileProducer.queue = func(s beep.Streamer) { q.queued = append(q.queued, s) }
	return q
}

// drainSeq streams the sequence to exhaustion, firing its end callback.
func drainSeq(t *testing.T, s beep.Streamer) {
	t.Helper()
	buf := make([][2]float64, 256)
	for range 64 {
		if n, ok := s.Stream(buf); !ok && n == 0 {
			return
		}
	}
	t.Fatal("streamer did not drain")
}

func waitEnded(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("end continuation never fired")
	}
}

func TestRebindAfterNaturalEndPlaysFromStart(t *testing.T) {
	p := newQueuedProducer()
	track := playlist.Track{ID: "a", Path: writeWAV(t), Title: "a"}

	first := make(chan struct{})
	if err := p.bind(track, func() { close(first) }); err != nil {
		t.Fatal(err)
	}
	if len(p.queued) != 1 {
		t.Fatalf("queued sequences = %d, want 1", len(p.queued))
	}
	drainSeq(t, p.queued[0])
	waitEnded(t, first)

	// Wrapping a one-track playlist re-binds the same id. The ended
	// sequence is already out of the mixer, so the binding must rewind
	// and queue again rather than merely unpause.
	second := make(chan struct{})
	if err := p.bind(track, func() { close(second) }); err != nil {
		t.Fatal(err)
	}
	if len(p.queued) != 2 {
		t.Fatalf("queued sequences = %d, want 2 (ended track must queue again)", len(p.queued))
	}
	if pos := p.stream.Position(); pos != 0 {
		t.Errorf("position after re-bind = %d, want 0", pos)
	}
	drainSeq(t, p.queued[1])
	waitEnded(t, second)
}

func TestRebindPausedTrackResumesInPlace(t *testing.T) {
	p := newQueuedProducer()
	track := playlist.Track{ID: "a", Path: writeWAV(t), Title: "a"}
	if err := p.bind(track, nil); err != nil {
		t.Fatal(err)
	}

	buf := make([][2]float64, 256)
	p.queued[0].Stream(buf)
	p.pause()
	pos := p.position()
	if pos == 0 {
		t.Fatal("expected partial progress before pause")
	}

	if err := p.bind(track, nil); err != nil {
		t.Fatal(err)
	}
	if len(p.queued) != 1 {
		t.Fatalf("queued sequences = %d, want 1 (paused re-bind must not queue anew)", len(p.queued))
	}
	if p.ctrl.Paused {
		t.Error("ctrl still paused after re-bind")
	}
	if got := p.position(); got != pos {
		t.Errorf("position after re-bind = %v, want %v", got, pos)
	}
}

func TestBindNewTrackReleasesPreviousHandle(t *testing.T) {
	p := newQueuedProducer()
	a := playlist.Track{ID: "a", Path: writeWAV(t), Title: "a"}
	b := playlist.Track{ID: "b", Path: writeWAV(t), Title: "b"}

	if err := p.bind(a, nil); err != nil {
		t.Fatal(err)
	}
	old := p.file
	if err := p.bind(b, nil); err != nil {
		t.Fatal(err)
	}

	if _, err := old.Read(make([]byte, 1)); err == nil {
		t.Error("previous track's file still open after replacement")
	}
	if p.trackID != "b" {
		t.Errorf("trackID = %q, want %q", p.trackID, "b")
	}
}

func TestUnloadReleasesOnceAndIsIdempotent(t *testing.T) {
	p := newQueuedProducer()
	track := playlist.Track{ID: "a", Path: writeWAV(t), Title: "a"}
	if err := p.bind(track, nil); err != nil {
		t.Fatal(err)
	}
	handle := p.file

	p.unload()
	if p.bound() {
		t.Fatal("still bound after unload")
	}
	if _, err := handle.Read(make([]byte, 1)); err == nil {
		t.Error("byte-handle still open after unload")
	}

	p.unload()
	if p.position() != 0 || p.duration() != 0 {
		t.Error("unbound producer reports non-zero position or duration")
	}
}

func TestBindUnsupportedFileFailsWithDecodeError(t *testing.T) {
	p := newQueuedProducer()
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := p.bind(playlist.Track{ID: "a", Path: path, Title: "a"}, nil)
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("bind error = %v, want ErrDecode", err)
	}
	if p.bound() {
		t.Error("producer bound after decode failure")
	}
}
