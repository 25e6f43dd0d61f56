// Package intake normalizes file lists into playlist tracks: it filters
// out non-audio entries, mints a fresh id per accepted file and derives a
// display title from tags or the filename.
package intake

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
	"github.com/google/uuid"

	"github.com/dwb190565/audioglow/playlist"
)

var audioExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
}

// FromArgs expands shell globs that may not have been expanded by the
// shell and converts the result into tracks.
func FromArgs(args []string) []playlist.Track {
	var paths []string
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			paths = append(paths, arg)
			continue
		}
		paths = append(paths, matches...)
	}
	return Tracks(paths)
}

// Tracks converts paths into tracks, silently dropping entries without a
// supported audio extension rather than erroring the whole batch.
func Tracks(paths []string) []playlist.Track {
	var out []playlist.Track
	for _, p := range paths {
		if !audioExts[strings.ToLower(filepath.Ext(p))] {
			continue
		}
		out = append(out, trackFromPath(p))
	}
	return out
}

func trackFromPath(path string) playlist.Track {
	t := playlist.Track{ID: uuid.NewString(), Path: path}
	t.Title, t.Artist = readTags(path)
	if t.Title == "" {
		t.Title, t.Artist = parseName(path)
	}
	return t
}

// readTags pulls title and artist from embedded metadata; empty results
// on any failure fall through to filename parsing.
func readTags(path string) (title, artist string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()
	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(m.Title()), strings.TrimSpace(m.Artist())
}

// parseName derives title and artist from the filename with its
// extension stripped. "Artist - Title" is split, anything else becomes
// the title as-is.
func parseName(path string) (title, artist string) {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(name, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	return name, ""
}
