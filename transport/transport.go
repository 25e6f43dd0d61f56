// Package transport implements the playback state machine: it drives the
// session audio graph and reads and writes the playlist store, turning
// user commands and end-of-track events into source bindings.
package transport

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dwb190565/audioglow/audio"
	"github.com/dwb190565/audioglow/playlist"
)

// State is the playback state of the file source.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Source is the audio-graph surface the transport drives. *audio.Graph
// implements it; tests substitute a fake.
type Source interface {
	BindFile(t playlist.Track, onEnded func()) error
	Restart(onEnded func()) error
	Pause()
	Unload()
	BindMic() error
	ReleaseMic()
	SetGain(level float64)
	Seek(to time.Duration) error
	Position() time.Duration
	Duration() time.Duration
	Teardown()
}

// Status is the read-only derived state exposed to the UI.
type Status struct {
	State        State
	MicActive    bool
	Track        playlist.Track
	HasTrack     bool
	Index        int
	Position     time.Duration
	Duration     time.Duration
	LoopTrack    bool
	LoopPlaylist bool
	Shuffled     bool
	Gain         float64
}

// Transport is the playback controller. All exported methods are safe
// for concurrent use; overlapping play requests resolve last-wins via a
// monotonic request token.
type Transport struct {
	mu    sync.Mutex
	src   Source
	store *playlist.Store
	log   *slog.Logger

	state     State
	mic       bool
	loopTrack bool
	loopList  bool
	gain      float64

	// req invalidates the continuations of every bind issued before the
	// latest state change: an end-of-track callback carrying a stale
	// token finds an already-changed world and must no-op.
	req uint64
}

// New creates a Transport over the given source and store.
func New(src Source, store *playlist.Store, log *slog.Logger) *Transport {
	return &Transport{src: src, store: store, log: log, gain: 1}
}

func (t *Transport) nextReqLocked() uint64 {
	t.req++
	return t.req
}

// endedFunc builds the natural-end continuation for the bind identified
// by token. The audio graph invokes it off its own goroutines.
func (t *Transport) endedFunc(token uint64) func() {
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if token != t.req {
			// Superseded: a newer request owns the state machine.
			return
		}
		t.advanceLocked()
	}
}

// PlayTrackAt starts playback of the track at index in the active order.
// Out-of-range indices stop the transport and clear the current pointer.
func (t *Transport) PlayTrackAt(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playTrackLocked(index)
}

func (t *Transport) playTrackLocked(index int) {
	token := t.nextReqLocked()
	tr, ok := t.store.TrackAt(index)
	if !ok {
		t.src.Pause()
		t.store.SetCurrent(-1)
		t.state = Stopped
		return
	}
	if t.mic {
		t.src.ReleaseMic()
		t.mic = false
	}
	// The pointer moves even when the bind fails, so the UI reflects
	// the selection.
	t.store.SetCurrent(index)

	err := t.src.BindFile(tr, t.endedFunc(token))
	switch {
	case err == nil:
		t.state = Playing
	case errors.Is(err, audio.ErrSuperseded):
		// A newer request already owns the state machine.
	case errors.Is(err, audio.ErrPlayback):
		t.state = Paused
		t.log.Warn("playback did not start", "track", tr.Title, "err", err)
	default:
		t.state = Stopped
		t.log.Warn("track skipped", "track", tr.Title, "err", err)
	}
}

// advanceLocked reacts to a natural end of the bound track. Unlike an
// explicit Next, single-track loop repeats the track in place here.
func (t *Transport) advanceLocked() {
	if t.loopTrack {
		token := t.nextReqLocked()
		if err := t.src.Restart(t.endedFunc(token)); err != nil {
			t.state = Stopped
			t.log.Warn("loop restart failed", "err", err)
		}
		return
	}
	t.stepForwardLocked()
}

// stepForwardLocked moves to the following track, wrapping only when
// playlist-loop is on and stopping otherwise.
func (t *Transport) stepForwardLocked() {
	cur := t.store.CurrentIndex()
	if cur < 0 {
		t.state = Stopped
		return
	}
	next := cur + 1
	if next >= t.store.Len() {
		if !t.loopList {
			t.nextReqLocked()
			t.src.Pause()
			t.store.SetCurrent(-1)
			t.state = Stopped
			return
		}
		next = 0
	}
	t.playTrackLocked(next)
}

// Next skips forward, honoring the same boundary policy as a natural
// end: wrap only when playlist-loop is on, otherwise stop.
func (t *Transport) Next() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mic || t.store.CurrentIndex() < 0 {
		return
	}
	t.stepForwardLocked()
}

// Prev skips backward. More than three seconds into a track it restarts
// the track instead; at index zero it always wraps to the last track.
func (t *Transport) Prev() {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.store.CurrentIndex()
	if t.mic || cur < 0 {
		return
	}
	if t.state == Playing && t.src.Position() > 3*time.Second {
		if err := t.src.Seek(0); err != nil {
			t.log.Warn("seek failed", "err", err)
		}
		return
	}
	prev := cur - 1
	if prev < 0 {
		prev = t.store.Len() - 1
	}
	t.playTrackLocked(prev)
}

// PlayPause toggles between playing and paused. In mic mode it is a
// no-op; the microphone has no pause concept.
func (t *Transport) PlayPause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mic {
		return
	}
	cur := t.store.CurrentIndex()
	if cur < 0 {
		return
	}
	switch t.state {
	case Playing:
		t.src.Pause()
		t.state = Paused
	default:
		// Re-binding the same paused track resumes in place.
		t.playTrackLocked(cur)
	}
}

// AddTracks appends tracks to the playlist. If the microphone is active
// it is released first, and if the playlist was empty playback starts
// automatically at index zero.
func (t *Transport) AddTracks(tracks []playlist.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(tracks) == 0 {
		return
	}
	if t.mic {
		t.src.ReleaseMic()
		t.mic = false
		t.state = Stopped
	}
	wasEmpty := t.store.Append(tracks...)
	t.log.Info("tracks added", "count", len(tracks), "total", t.store.Len())
	if wasEmpty {
		t.playTrackLocked(0)
	}
}

// RemoveTrack removes a track by id. Removing the currently playing
// track plays whatever lands at the same numeric index, wraps to zero
// when playlist-loop is on, and otherwise stops and fully releases the
// removed track's source.
func (t *Transport) RemoveTrack(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	res := t.store.Remove(id)
	if !res.Removed {
		return
	}
	if !res.WasCurrent {
		// The store already re-resolved the current pointer; playback
		// is untouched.
		return
	}
	next := res.Index
	if next >= t.store.Len() {
		if t.loopList && t.store.Len() > 0 {
			next = 0
		} else {
			next = -1
		}
	}
	if next < 0 {
		t.nextReqLocked()
		t.src.Unload()
		t.state = Stopped
		return
	}
	t.playTrackLocked(next)
}

// Clear empties the playlist and releases the file source.
func (t *Transport) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextReqLocked()
	t.store.Clear()
	t.src.Unload()
	t.state = Stopped
}

// ToggleShuffle flips the shuffled view. When the current track cannot
// be resolved in the new order, in-flight playback keeps running; only
// future navigation loses its anchor.
func (t *Transport) ToggleShuffle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.ToggleShuffle()
	if t.store.CurrentIndex() < 0 && t.state == Playing {
		t.log.Warn("current track unresolved after shuffle; playback continues")
	}
}

// Reorder replaces the active order, preserving the current track.
func (t *Transport) Reorder(tracks []playlist.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.Reorder(tracks)
}

// ToggleLoopTrack flips single-track looping.
func (t *Transport) ToggleLoopTrack() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loopTrack = !t.loopTrack
}

// ToggleLoopPlaylist flips whole-playlist looping.
func (t *Transport) ToggleLoopPlaylist() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loopList = !t.loopList
}

// ToggleMic switches microphone capture on or off. Turning it on pauses
// any file playback first; if capture cannot be opened the failure is
// reported and nothing else changes. Turning it off reconnects a still-
// existing file binding, left paused for the user to resume.
func (t *Transport) ToggleMic() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mic {
		t.src.ReleaseMic()
		t.mic = false
		if t.store.CurrentIndex() >= 0 {
			t.state = Paused
		} else {
			t.state = Stopped
		}
		return nil
	}
	if t.state == Playing {
		t.src.Pause()
		t.state = Paused
	}
	if err := t.src.BindMic(); err != nil {
		t.log.Warn("microphone unavailable", "err", err)
		return err
	}
	t.nextReqLocked()
	t.mic = true
	return nil
}

// Seek moves file playback to an absolute position.
func (t *Transport) Seek(to time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mic || t.store.CurrentIndex() < 0 {
		return
	}
	if err := t.src.Seek(to); err != nil {
		t.log.Warn("seek failed", "err", err)
	}
}

// SetVolume sets the shared gain, clamped to [0,1].
func (t *Transport) SetVolume(level float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gain = max(0, min(level, 1))
	t.src.SetGain(t.gain)
}

// Volume returns the current gain level.
func (t *Transport) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gain
}

// Status returns a snapshot of the derived playback state.
func (t *Transport) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := Status{
		State:        t.state,
		MicActive:    t.mic,
		Index:        t.store.CurrentIndex(),
		LoopTrack:    t.loopTrack,
		LoopPlaylist: t.loopList,
		Shuffled:     t.store.Shuffled(),
		Gain:         t.gain,
	}
	if tr, ok := t.store.Current(); ok {
		st.Track = tr
		st.HasTrack = true
		st.Position = t.src.Position()
		st.Duration = t.src.Duration()
	}
	return st
}

// Shutdown tears down the audio graph. The transport is unusable after.
func (t *Transport) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextReqLocked()
	t.state = Stopped
	t.mic = false
	t.src.Teardown()
}
