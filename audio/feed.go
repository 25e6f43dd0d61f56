package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/madelynnblue/go-dsp/fft"
)

// SourceKind identifies which producer is wired into the shared feed.
type SourceKind int

const (
	SourceNone SourceKind = iota
	SourceFile
	SourceMic
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceMic:
		return "mic"
	default:
		return "none"
	}
}

// Feed is the shared analyser: a mono ring buffer fed by exactly one
// producer at a time, exposing windowed FFT magnitudes to any number of
// read-only consumers. Pushes from a producer that is not the active one
// are dropped, which is what makes producer switching race-free: a stale
// pipeline can keep streaming, its samples just go nowhere.
type Feed struct {
	mu       sync.Mutex
	buf      []float64
	pos      int
	producer SourceKind
	sr       float64
	win      []float64 // precomputed Hann window
	scratch  []float64
}

// NewFeed creates a Feed with the given sample rate and FFT size.
// fftSize must be a power of two.
func NewFeed(sampleRate float64, fftSize int) *Feed {
	win := make([]float64, fftSize)
	for i := range win {
		win[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	return &Feed{
		buf:     make([]float64, fftSize),
		sr:      sampleRate,
		win:     win,
		scratch: make([]float64, fftSize),
	}
}

// setProducer switches which source the feed accepts samples from.
func (f *Feed) setProducer(k SourceKind) {
	f.mu.Lock()
	f.producer = k
	if k == SourceNone {
		clear(f.buf)
	}
	f.mu.Unlock()
}

// Producer returns the currently connected source kind.
func (f *Feed) Producer() SourceKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.producer
}

// push appends mono samples from the given producer. Samples from any
// other producer are dropped.
func (f *Feed) push(from SourceKind, samples []float64) {
	f.mu.Lock()
	if from != f.producer {
		f.mu.Unlock()
		return
	}
	for _, s := range samples {
		f.buf[f.pos] = s
		f.pos = (f.pos + 1) % len(f.buf)
	}
	f.mu.Unlock()
}

// Samples returns the last n samples in chronological order.
func (f *Feed) Samples(n int) []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.buf) {
		n = len(f.buf)
	}
	out := make([]float64, n)
	start := (f.pos - n + len(f.buf)) % len(f.buf)
	for i := range n {
		out[i] = f.buf[(start+i)%len(f.buf)]
	}
	return out
}

// Spectrum computes windowed FFT magnitudes over the current buffer and
// returns the first half of the spectrum (fftSize/2 bins). Consumers
// poll at their own cadence; each call reflects whatever audio has been
// pushed so far.
func (f *Feed) Spectrum() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Unroll the ring into scratch so bin phases line up with time.
	n := len(f.buf)
	for i := range n {
		f.scratch[i] = f.buf[(f.pos+i)%n] * f.win[i]
	}

	spectrum := fft.FFTReal(f.scratch)
	out := make([]float64, n/2)
	for i := range out {
		out[i] = cmplx.Abs(spectrum[i])
	}
	return out
}

// SampleRate returns the feed's sample rate.
func (f *Feed) SampleRate() float64 { return f.sr }

// Size returns the FFT size.
func (f *Feed) Size() int { return len(f.buf) }

// BinHz returns the frequency width of one spectrum bin.
func (f *Feed) BinHz() float64 { return f.sr / float64(len(f.buf)) }
