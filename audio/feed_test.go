package audio

import (
	"math"
	"testing"
)

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestFeedDropsInactiveProducer(t *testing.T) {
	f := NewFeed(44100, 1024)
	f.setProducer(SourceMic)

	f.push(SourceFile, sine(440, 44100, 1024))
	for i, s := range f.Samples(1024) {
		if s != 0 {
			t.Fatalf("sample %d = %g, want 0 (file push must be dropped while mic owns the feed)", i, s)
		}
	}

	f.push(SourceMic, sine(440, 44100, 1024))
	var nonzero bool
	for _, s := range f.Samples(1024) {
		if s != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("mic push was dropped while mic owns the feed")
	}
}

func TestFeedSpectrumPeaksAtInputFrequency(t *testing.T) {
	const (
		sr   = 44100.0
		size = 2048
		freq = 1000.0
	)
	f := NewFeed(sr, size)
	f.setProducer(SourceFile)
	f.push(SourceFile, sine(freq, sr, size))

	spectrum := f.Spectrum()
	peak := 0
	for i, m := range spectrum {
		if m > spectrum[peak] {
			peak = i
		}
	}

	wantBin := freq / f.BinHz()
	if math.Abs(float64(peak)-wantBin) > 2 {
		t.Errorf("peak at bin %d (%.0f Hz), want near bin %.1f (%.0f Hz)",
			peak, float64(peak)*f.BinHz(), wantBin, freq)
	}
}

func TestFeedSamplesChronological(t *testing.T) {
	f := NewFeed(44100, 256)
	f.setProducer(SourceFile)

	// Push more than the ring holds; the last 256 values must survive
	// in order.
	in := make([]float64, 300)
	for i := range in {
		in[i] = float64(i)
	}
	f.push(SourceFile, in)

	got := f.Samples(256)
	for i, s := range got {
		want := float64(300 - 256 + i)
		if s != want {
			t.Fatalf("Samples[%d] = %g, want %g", i, s, want)
		}
	}
}

func TestFeedClearsWhenDisconnected(t *testing.T) {
	f := NewFeed(44100, 512)
	f.setProducer(SourceFile)
	f.push(SourceFile, sine(440, 44100, 512))

	f.setProducer(SourceNone)
	for i, s := range f.Samples(512) {
		if s != 0 {
			t.Fatalf("sample %d = %g after disconnect, want 0", i, s)
		}
	}
}

func TestSourceKindString(t *testing.T) {
	cases := map[SourceKind]string{
		SourceNone: "none",
		SourceFile: "file",
		SourceMic:  "mic",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
