package ui

import "github.com/charmbracelet/lipgloss"

// Standard ANSI terminal colors (0-15) so the UI adapts to the user's
// terminal theme.
var (
	colorBorder  = lipgloss.ANSIColor(8)  // bright black (dark gray)
	colorTitle   = lipgloss.ANSIColor(13) // bright magenta
	colorText    = lipgloss.ANSIColor(7)  // white (light gray)
	colorDim     = lipgloss.ANSIColor(8)  // bright black (dark gray)
	colorAccent  = lipgloss.ANSIColor(11) // bright yellow
	colorPlaying = lipgloss.ANSIColor(10) // bright green
	colorMic     = lipgloss.ANSIColor(9)  // bright red
	colorSeekBar = lipgloss.ANSIColor(11) // bright yellow
	colorVolume  = lipgloss.ANSIColor(2)  // green

	// Spectrum gradient: green -> yellow -> red
	spectrumLow  = lipgloss.ANSIColor(10)
	spectrumMid  = lipgloss.ANSIColor(11)
	spectrumHigh = lipgloss.ANSIColor(9)
)

var (
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2).
			Width(70)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	trackStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	timeStyle = lipgloss.NewStyle().
			Foreground(colorText)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorPlaying).
			Bold(true)

	micStyle = lipgloss.NewStyle().
			Foreground(colorMic).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	playlistActiveStyle = lipgloss.NewStyle().
				Foreground(colorPlaying).
				Bold(true)

	playlistItemStyle = lipgloss.NewStyle().
				Foreground(colorText)

	playlistSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.ANSIColor(9))

	seekFillStyle = lipgloss.NewStyle().Foreground(colorSeekBar)
	seekDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	volBarStyle   = lipgloss.NewStyle().Foreground(colorVolume)
	activeToggle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	specLowStyle  = lipgloss.NewStyle().Foreground(spectrumLow)
	specMidStyle  = lipgloss.NewStyle().Foreground(spectrumMid)
	specHighStyle = lipgloss.NewStyle().Foreground(spectrumHigh)
)
