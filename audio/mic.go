package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// micProducer captures the default input device and pushes mono samples
// into the shared feed. A fresh capture stream is opened on every bind;
// close releases the device.
//
// Requires the portaudio C library:
//
//	macos:  brew install portaudio
//	debian: sudo apt-get install portaudio19-dev
type micProducer struct {
	stream *portaudio.Stream
	feed   *Feed
	mono   []float64
}

func newMicProducer(feed *Feed, sampleRate float64, frames int) (*micProducer, error) {
	m := &micProducer{feed: feed}
	stream, err := portaudio.OpenDefaultStream(1, 0, sampleRate, frames, m.capture)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMicAccess, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: %v", ErrMicAccess, err)
	}
	m.stream = stream
	return m, nil
}

// capture runs on portaudio's callback thread; it must not block.
func (m *micProducer) capture(in []float32) {
	if cap(m.mono) < len(in) {
		m.mono = make([]float64, len(in))
	}
	mono := m.mono[:len(in)]
	for i, v := range in {
		mono[i] = float64(v)
	}
	m.feed.push(SourceMic, mono)
}

// close stops the capture and releases the device. Idempotent.
func (m *micProducer) close() {
	if m.stream == nil {
		return
	}
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
}
