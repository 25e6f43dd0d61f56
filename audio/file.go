package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/dwb190565/audioglow/playlist"
)

// fileProducer is the file-playback half of the session graph:
//
//	[Decode] -> [Resample] -> [Gain] -> [Feed tap] -> [Ctrl] -> [Speaker]
//
// It is created once per session and reused across tracks; binding a new
// track swaps the decoded stream, never the producer itself. The open
// file plus decoder form the track's byte-handle and are released exactly
// once, when replaced or unloaded.
type fileProducer struct {
	sr   beep.SampleRate
	feed *Feed
	gain *gainStreamer

	trackID string
	file    *os.File
	stream  beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl

	// onEnded is the continuation for the current bind. Rebinding the
	// same paused track swaps it in place, so a resumed track's natural
	// end reports against the newest request. Guarded by the speaker
	// lock once playing.
	onEnded func()

	// drained marks a binding whose stream hit EOF and whose queued
	// sequence the end callback already removed from the mixer.
	// Resuming such a binding must rewind and queue again; unpausing
	// alone plays nothing. Guarded by the speaker lock once playing.
	drained bool

	// queue submits a streamer to the speaker. Tests substitute a
	// capture to drive the pipeline without an output device.
	queue func(s beep.Streamer)
}

func newFileProducer(sr beep.SampleRate, feed *Feed, gain *gainStreamer) *fileProducer {
	return &fileProducer{
		sr:    sr,
		feed:  feed,
		gain:  gain,
		queue: func(s beep.Streamer) { speaker.Play(s) },
	}
}

// decode opens path and picks a decoder by extension.
func decode(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		stream, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, nil, beep.Format{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return f, stream, format, nil
}

// bind makes the producer play the given track. If the track is already
// bound and merely paused it resumes in place, keeping position and
// skipping the re-decode; a track that already played out is rewound
// and queued again instead. onEnded fires once when the track drains
// naturally; it is invoked off the speaker goroutine.
func (p *fileProducer) bind(t playlist.Track, onEnded func()) error {
	if p.trackID == t.ID && p.stream != nil {
		speaker.Lock()
		drained := p.drained
		p.drained = false
		p.onEnded = onEnded
		p.ctrl.Paused = false
		var err error
		if drained {
			err = p.stream.Seek(0)
		}
		speaker.Unlock()
		if err == nil {
			if drained {
				p.play()
			}
			return nil
		}
		// The rewind failed; fall through to a full reload.
	}

	p.unload()

	f, stream, format, err := decode(t.Path)
	if err != nil {
		return err
	}
	p.file = f
	p.stream = stream
	p.format = format
	p.trackID = t.ID

	var s beep.Streamer = stream
	if format.SampleRate != p.sr {
		s = beep.Resample(4, format.SampleRate, p.sr, s)
	}
	s = p.gain.wrap(s)
	s = &feedStreamer{s: s, feed: p.feed, kind: SourceFile}
	p.ctrl = &beep.Ctrl{Streamer: s}
	p.onEnded = onEnded
	p.drained = false

	p.play()
	return nil
}

// play queues the control streamer on the speaker with an end callback.
// beep invokes the callback while holding the speaker lock, so it is
// re-dispatched on a fresh goroutine.
func (p *fileProducer) play() {
	p.queue(beep.Seq(p.ctrl, beep.Callback(func() {
		p.drained = true
		if done := p.onEnded; done != nil {
			go done()
		}
	})))
}

// restart rewinds the bound track to zero and queues it again. Used for
// single-track looping after a natural end.
func (p *fileProducer) restart(onEnded func()) error {
	if p.stream == nil {
		return fmt.Errorf("%w: no track bound", ErrPlayback)
	}
	speaker.Lock()
	err := p.stream.Seek(0)
	p.ctrl.Paused = false
	p.onEnded = onEnded
	p.drained = false
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}
	p.play()
	return nil
}

func (p *fileProducer) pause() {
	speaker.Lock()
	if p.ctrl != nil {
		p.ctrl.Paused = true
	}
	speaker.Unlock()
}

// unload stops playback and releases the byte-handle. Safe to call when
// nothing is bound.
func (p *fileProducer) unload() {
	speaker.Clear()
	if p.stream != nil {
		p.stream.Close()
		p.stream = nil
	}
	if p.file != nil {
		p.file.Close()
		p.file = nil
	}
	p.ctrl = nil
	p.onEnded = nil
	p.drained = false
	p.trackID = ""
}

func (p *fileProducer) bound() bool { return p.stream != nil }

// seek moves to an absolute position, clamped to the track bounds.
func (p *fileProducer) seek(to time.Duration) error {
	speaker.Lock()
	defer speaker.Unlock()
	if p.stream == nil {
		return nil
	}
	n := p.format.SampleRate.N(to)
	if n < 0 {
		n = 0
	}
	if n >= p.stream.Len() {
		n = p.stream.Len() - 1
	}
	return p.stream.Seek(n)
}

func (p *fileProducer) position() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	if p.stream == nil {
		return 0
	}
	return p.format.SampleRate.D(p.stream.Position())
}

func (p *fileProducer) duration() time.Duration {
	speaker.Lock()
	defer speaker.Unlock()
	if p.stream == nil {
		return 0
	}
	return p.format.SampleRate.D(p.stream.Len())
}

// feedStreamer passes audio through while pushing a mono mix into the
// shared feed. The feed's producer gate decides whether the push lands.
type feedStreamer struct {
	s    beep.Streamer
	feed *Feed
	kind SourceKind
	mono []float64
}

func (t *feedStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	if cap(t.mono) < n {
		t.mono = make([]float64, n)
	}
	mono := t.mono[:n]
	for i := range n {
		mono[i] = (samples[i][0] + samples[i][1]) / 2
	}
	t.feed.push(t.kind, mono)
	return n, ok
}

func (t *feedStreamer) Err() error { return t.s.Err() }

// gainStreamer is the graph's single gain stage: a linear multiplier in
// [0,1] shared by every pipeline the session builds.
type gainStreamer struct {
	mu    sync.Mutex
	level float64
}

func (g *gainStreamer) set(level float64) {
	g.mu.Lock()
	g.level = max(0, min(level, 1))
	g.mu.Unlock()
}

func (g *gainStreamer) get() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.level
}

func (g *gainStreamer) wrap(s beep.Streamer) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		lvl := g.get()
		for i := range n {
			samples[i][0] *= lvl
			samples[i][1] *= lvl
		}
		return n, ok
	})
}
