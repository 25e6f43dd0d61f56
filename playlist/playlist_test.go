package playlist_test

import (
	"testing"

	"github.com/dwb190565/audioglow/playlist"
)

func mkTracks(ids ...string) []playlist.Track {
	out := make([]playlist.Track, len(ids))
	for i, id := range ids {
		out[i] = playlist.Track{ID: id, Path: id + ".mp3", Title: id}
	}
	return out
}

func ids(tracks []playlist.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestAppendReportsEmptyTransition(t *testing.T) {
	s := playlist.New()
	if !s.Append(mkTracks("a", "b")...) {
		t.Error("first append should report the empty-to-non-empty transition")
	}
	if s.Append(mkTracks("c")...) {
		t.Error("second append should not report a transition")
	}
	if s.Append() {
		t.Error("empty append should not report a transition")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestCurrentFollowsRemovalOfEarlierTrack(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c")...)
	s.SetCurrent(1)

	res := s.Remove("a")
	if !res.Removed || res.WasCurrent {
		t.Fatalf("Remove(a) = %+v, want removed non-current", res)
	}
	if got := s.CurrentIndex(); got != 0 {
		t.Errorf("CurrentIndex = %d, want 0", got)
	}
	if cur, ok := s.Current(); !ok || cur.ID != "b" {
		t.Errorf("Current = %v %v, want track b", cur, ok)
	}
}

func TestRemoveCurrentClearsPointer(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c")...)
	s.SetCurrent(1)

	res := s.Remove("b")
	if !res.Removed || !res.WasCurrent || res.Index != 1 {
		t.Fatalf("Remove(b) = %+v, want removed current at index 1", res)
	}
	if got := s.CurrentIndex(); got != -1 {
		t.Errorf("CurrentIndex = %d, want -1", got)
	}
}

func TestRemoveAbsentID(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a")...)
	if res := s.Remove("zzz"); res.Removed {
		t.Errorf("Remove of absent id reported removal: %+v", res)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestShuffleRoundTrip(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c", "d", "e")...)
	s.SetCurrent(1)

	s.ToggleShuffle()
	if !s.Shuffled() {
		t.Fatal("Shuffled = false after toggle")
	}
	if cur, ok := s.Current(); !ok || cur.ID != "b" {
		t.Errorf("current after shuffle = %v %v, want track b", cur, ok)
	}

	s.ToggleShuffle()
	if s.Shuffled() {
		t.Fatal("Shuffled = true after second toggle")
	}
	got := ids(s.View())
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order after round trip = %v, want %v", got, want)
		}
	}
	if got := s.CurrentIndex(); got != 1 {
		t.Errorf("CurrentIndex = %d, want 1", got)
	}
}

func TestShuffledViewIsSetEqual(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c", "d")...)
	s.ToggleShuffle()

	seen := map[string]bool{}
	for _, id := range ids(s.View()) {
		seen[id] = true
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if !seen[id] {
			t.Errorf("shuffled view missing track %s", id)
		}
	}
	if len(seen) != 4 {
		t.Errorf("shuffled view has %d distinct tracks, want 4", len(seen))
	}
}

func TestAppendWhileShuffledKeepsExistingPlaces(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c")...)
	s.ToggleShuffle()
	before := ids(s.View())

	s.Append(mkTracks("d", "e")...)
	after := ids(s.View())
	if len(after) != 5 {
		t.Fatalf("active order has %d tracks, want 5", len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("existing shuffled order changed at %d: %v -> %v", i, before, after)
		}
	}
	seen := map[string]bool{}
	for _, id := range after {
		seen[id] = true
	}
	if !seen["d"] || !seen["e"] {
		t.Errorf("new tracks missing from shuffled view: %v", after)
	}
}

func TestReorderKeepsCurrentIdentity(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b", "c")...)
	s.SetCurrent(0)

	s.Reorder(mkTracks("c", "b", "a"))
	if got := s.CurrentIndex(); got != 2 {
		t.Errorf("CurrentIndex = %d, want 2", got)
	}
	if cur, ok := s.Current(); !ok || cur.ID != "a" {
		t.Errorf("Current = %v %v, want track a", cur, ok)
	}
}

func TestSetCurrentOutOfRangeClears(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a")...)
	s.SetCurrent(0)
	s.SetCurrent(5)
	if got := s.CurrentIndex(); got != -1 {
		t.Errorf("CurrentIndex = %d, want -1", got)
	}
}

func TestClear(t *testing.T) {
	s := playlist.New()
	s.Append(mkTracks("a", "b")...)
	s.ToggleShuffle()
	s.SetCurrent(0)

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if got := s.CurrentIndex(); got != -1 {
		t.Errorf("CurrentIndex = %d, want -1", got)
	}
	if len(s.View()) != 0 {
		t.Errorf("View not empty after Clear")
	}
}
