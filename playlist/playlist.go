// Package playlist manages an ordered track list with a derived shuffled
// view. The store is playback-policy-free: it tracks which entry is
// current and keeps that pointer consistent across mutation, but never
// decides what plays next.
package playlist

import (
	"math/rand"
	"sync"
)

// Track represents a single audio file queued for playback. The ID is
// minted on intake and never changes; it is how the current track keeps
// its identity across shuffle, reorder and removal.
type Track struct {
	ID     string
	Path   string
	Title  string
	Artist string
}

// DisplayName returns a formatted display string for the track.
func (t Track) DisplayName() string {
	if t.Artist != "" {
		return t.Artist + " - " + t.Title
	}
	return t.Title
}

// RemoveResult reports what a Remove call did, so the caller can decide
// how playback should react.
type RemoveResult struct {
	Removed    bool
	WasCurrent bool
	// Index the track occupied in the active order before removal.
	// -1 when the track was absent from the active order.
	Index int
}

// Store holds the playlist in insertion order plus an optional shuffled
// view. While shuffle is on, the shuffled view is the active order; it
// always contains exactly the tracks of the insertion order.
// All exported methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	order    []Track
	shuffled []Track
	shuffle  bool
	current  int // index into the active order, -1 when none
}

// New creates an empty Store.
func New() *Store {
	return &Store{current: -1}
}

// Append adds tracks to the insertion order. While shuffle is on, a
// freshly shuffled copy of just the new tracks is appended to the
// shuffled view, so entries already on screen keep their places.
// It reports whether the store went from empty to non-empty.
func (s *Store) Append(tracks ...Track) (wasEmpty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(tracks) == 0 {
		return false
	}
	wasEmpty = len(s.order) == 0
	s.order = append(s.order, tracks...)
	if s.shuffle {
		fresh := make([]Track, len(tracks))
		copy(fresh, tracks)
		rand.Shuffle(len(fresh), func(i, j int) {
			fresh[i], fresh[j] = fresh[j], fresh[i]
		})
		s.shuffled = append(s.shuffled, fresh...)
	}
	return wasEmpty
}

// Remove deletes the track with the given id from both orders. When the
// removed track was current, the pointer is cleared and the caller owns
// the playback decision; otherwise the pointer follows the still-current
// track to its new position.
func (s *Store) Remove(id string) RemoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := RemoveResult{Index: -1}
	if i := indexOf(s.activeLocked(), id); i >= 0 {
		res.Index = i
		res.WasCurrent = i == s.current
	}

	keep := func(tracks []Track) ([]Track, bool) {
		for i, t := range tracks {
			if t.ID == id {
				return append(tracks[:i], tracks[i+1:]...), true
			}
		}
		return tracks, false
	}

	var removed bool
	s.order, removed = keep(s.order)
	if s.shuffle {
		s.shuffled, _ = keep(s.shuffled)
	}
	res.Removed = removed
	if !removed {
		return res
	}

	if res.WasCurrent {
		s.current = -1
	} else if s.current >= 0 && res.Index >= 0 && res.Index < s.current {
		s.current--
	}
	return res
}

// Reorder replaces the active order wholesale, keeping the current
// track's identity pointed at its new position.
func (s *Store) Reorder(tracks []Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	curID := s.currentIDLocked()
	next := make([]Track, len(tracks))
	copy(next, tracks)
	if s.shuffle {
		s.shuffled = next
	} else {
		s.order = next
	}
	s.current = indexOf(s.activeLocked(), curID)
}

// ToggleShuffle switches between the insertion order and a fresh random
// permutation of it. The current pointer is recomputed by locating the
// current track's id in the newly active order; if it cannot be found
// the pointer is cleared.
func (s *Store) ToggleShuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	curID := s.currentIDLocked()
	s.shuffle = !s.shuffle
	if s.shuffle {
		s.shuffled = make([]Track, len(s.order))
		copy(s.shuffled, s.order)
		rand.Shuffle(len(s.shuffled), func(i, j int) {
			s.shuffled[i], s.shuffled[j] = s.shuffled[j], s.shuffled[i]
		})
	} else {
		s.shuffled = nil
	}
	s.current = indexOf(s.activeLocked(), curID)
}

// Clear empties both orders and clears the current pointer.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.shuffled = nil
	s.current = -1
}

// View returns a copy of the active order for display.
func (s *Store) View() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.activeLocked()
	out := make([]Track, len(active))
	copy(out, active)
	return out
}

// Len returns the number of tracks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// TrackAt returns the track at the given index of the active order.
func (s *Store) TrackAt(i int) (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.activeLocked()
	if i < 0 || i >= len(active) {
		return Track{}, false
	}
	return active[i], true
}

// Current returns the current track, if any.
func (s *Store) Current() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := s.activeLocked()
	if s.current < 0 || s.current >= len(active) {
		return Track{}, false
	}
	return active[s.current], true
}

// CurrentIndex returns the current index into the active order, or -1.
func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrent moves the current pointer. Out-of-range indices clear it.
func (s *Store) SetCurrent(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.activeLocked()) {
		s.current = -1
		return
	}
	s.current = i
}

// IndexOf locates a track id in the active order, or -1.
func (s *Store) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.activeLocked(), id)
}

// Shuffled reports whether the shuffled view is active.
func (s *Store) Shuffled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffle
}

func (s *Store) activeLocked() []Track {
	if s.shuffle {
		return s.shuffled
	}
	return s.order
}

func (s *Store) currentIDLocked() string {
	active := s.activeLocked()
	if s.current < 0 || s.current >= len(active) {
		return ""
	}
	return active[s.current].ID
}

func indexOf(tracks []Track, id string) int {
	if id == "" {
		return -1
	}
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
