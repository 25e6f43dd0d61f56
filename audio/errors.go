package audio

import "errors"

// Failure taxonomy for the session audio graph. Callers branch on these
// with errors.Is; none of them is fatal to the session.
var (
	// ErrDecode means the track's bytes could not be decoded. The track
	// stays in the playlist; playback simply reports not-playing.
	ErrDecode = errors.New("audio: cannot decode track")

	// ErrMicAccess means the capture device could not be opened, either
	// because the platform refused or no input device exists. Prior
	// graph state is left untouched.
	ErrMicAccess = errors.New("audio: microphone unavailable")

	// ErrPlayback means the output device refused to start. The binding
	// survives; the track is loaded but paused.
	ErrPlayback = errors.New("audio: playback could not start")

	// ErrSuperseded means a newer request replaced this one while it was
	// in flight. It is swallowed by the transport, never surfaced.
	ErrSuperseded = errors.New("audio: request superseded")

	// ErrTornDown means the graph was already shut down.
	ErrTornDown = errors.New("audio: session torn down")
)
