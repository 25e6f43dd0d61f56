package ui

import (
	"math"
	"strings"

	"github.com/dwb190565/audioglow/audio"
)

// Renderer turns analyser output into a block of terminal text. Renderers
// poll the shared feed read-only at the UI tick and never feed state back
// into the core; they are freely interchangeable at runtime.
type Renderer interface {
	Name() string
	Render(feed *audio.Feed, width int) string
}

// Renderers returns all available renderers, startup-selectable by name.
func Renderers() []Renderer {
	return []Renderer{
		newBarsRenderer(),
		newWaterfallRenderer(),
		newWaveRenderer(),
	}
}

// Unicode block elements for bar height (9 levels including space).
var barBlocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Frequency edges for the spectrum bands (Hz).
var bandEdges = [11]float64{20, 100, 200, 400, 800, 1600, 3200, 6400, 12800, 16000, 20000}

const numBands = len(bandEdges) - 1

// bandAnalyzer folds the feed's spectrum into a handful of normalized
// band levels with fast-attack slow-decay smoothing.
type bandAnalyzer struct {
	prev [numBands]float64
}

func (a *bandAnalyzer) levels(feed *audio.Feed) [numBands]float64 {
	var bands [numBands]float64
	if feed == nil {
		// Decay toward silence while no audio session exists.
		for b := range bands {
			bands[b] = a.prev[b] * 0.8
			a.prev[b] = bands[b]
		}
		return bands
	}

	spectrum := feed.Spectrum()
	binHz := feed.BinHz()

	for b := range bands {
		lo := max(int(bandEdges[b]/binHz), 1)
		hi := min(int(bandEdges[b+1]/binHz), len(spectrum)-1)

		var sum float64
		count := 0
		for i := lo; i <= hi; i++ {
			sum += spectrum[i]
			count++
		}
		if count > 0 {
			sum /= float64(count)
		}

		// dB-like scale normalized to 0-1.
		if sum > 0 {
			bands[b] = (20*math.Log10(sum) + 10) / 50
		}
		bands[b] = max(0, min(1, bands[b]))

		// Fast attack, slow decay.
		if bands[b] > a.prev[b] {
			bands[b] = bands[b]*0.6 + a.prev[b]*0.4
		} else {
			bands[b] = bands[b]*0.25 + a.prev[b]*0.75
		}
		a.prev[b] = bands[b]
	}
	return bands
}

func levelStyle(level float64) func(...string) string {
	switch {
	case level > 0.75:
		return specHighStyle.Render
	case level > 0.45:
		return specMidStyle.Render
	default:
		return specLowStyle.Render
	}
}

// barsRenderer draws one line of spectrum bars sized to the given width.
type barsRenderer struct {
	an bandAnalyzer
}

func newBarsRenderer() *barsRenderer { return &barsRenderer{} }

func (r *barsRenderer) Name() string { return "bars" }

func (r *barsRenderer) Render(feed *audio.Feed, width int) string {
	bands := r.an.levels(feed)
	if width < numBands {
		return ""
	}
	bw := (width - (numBands - 1)) / numBands
	if bw < 1 {
		bw = 1
	}

	var sb strings.Builder
	for i, level := range bands {
		idx := int(level * float64(len(barBlocks)-1))
		idx = max(0, min(idx, len(barBlocks)-1))
		sb.WriteString(levelStyle(level)(strings.Repeat(barBlocks[idx], bw)))
		if i < numBands-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// waterfallRenderer scrolls a short history of band levels downward,
// newest row on top.
type waterfallRenderer struct {
	an      bandAnalyzer
	history [][numBands]float64
	rows    int
}

var waterfallShades = []string{" ", "░", "▒", "▓", "█"}

func newWaterfallRenderer() *waterfallRenderer {
	return &waterfallRenderer{rows: 6}
}

func (r *waterfallRenderer) Name() string { return "waterfall" }

func (r *waterfallRenderer) Render(feed *audio.Feed, width int) string {
	r.history = append([][numBands]float64{r.an.levels(feed)}, r.history...)
	if len(r.history) > r.rows {
		r.history = r.history[:r.rows]
	}

	bw := width / numBands
	if bw < 1 {
		bw = 1
	}

	lines := make([]string, 0, r.rows)
	for row := range r.rows {
		var sb strings.Builder
		if row < len(r.history) {
			for _, level := range r.history[row] {
				idx := int(level * float64(len(waterfallShades)-1))
				idx = max(0, min(idx, len(waterfallShades)-1))
				sb.WriteString(levelStyle(level)(strings.Repeat(waterfallShades[idx], bw)))
			}
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

// waveRenderer draws a raw waveform oscilloscope.
type waveRenderer struct {
	rows int
}

func newWaveRenderer() *waveRenderer { return &waveRenderer{rows: 5} }

func (r *waveRenderer) Name() string { return "wave" }

func (r *waveRenderer) Render(feed *audio.Feed, width int) string {
	grid := make([][]rune, r.rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if feed != nil {
		samples := feed.Samples(width)
		mid := float64(r.rows-1) / 2
		for col, s := range samples {
			if col >= width {
				break
			}
			row := int(math.Round(mid - s*mid))
			row = max(0, min(row, r.rows-1))
			grid[row][col] = '█'
		}
	}

	lines := make([]string, r.rows)
	for i, row := range grid {
		lines[i] = specLowStyle.Render(string(row))
	}
	return strings.Join(lines, "\n")
}
