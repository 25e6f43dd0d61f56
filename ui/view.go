package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dwb190565/audioglow/transport"
)

// usable inner width: 70 frame - 2 border - 4 padding
const panelWidth = 64

// View renders the full TUI frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.transport.Status()

	sections := []string{
		m.renderTitle(),
		m.renderTrackInfo(st),
		m.renderTimeStatus(st),
		"",
		m.renderVisualization(),
		m.renderSeekBar(st),
		"",
		m.renderVolume(st),
		"",
		m.renderPlaylistHeader(st),
		m.renderPlaylist(st),
		"",
		m.renderHelp(),
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("ERR: %s", m.err)))
	}

	return frameStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderTitle() string {
	return titleStyle.Render("A U D I O G L O W")
}

func (m Model) renderTrackInfo(st transport.Status) string {
	if st.MicActive {
		return micStyle.Render("● LIVE INPUT")
	}
	name := ""
	if st.HasTrack {
		name = st.Track.DisplayName()
	}
	if name == "" {
		name = "No track loaded"
	}

	prefix := "♫ "
	maxW := panelWidth - len([]rune(prefix))
	runes := []rune(name)
	if len(runes) <= maxW {
		return trackStyle.Render(prefix + name)
	}

	// Cyclic scrolling for long titles.
	sep := []rune("  ♫  ")
	cycle := append(runes, sep...)
	off := (m.titleOff / 4) % len(cycle)
	window := make([]rune, 0, maxW)
	for i := range maxW {
		window = append(window, cycle[(off+i)%len(cycle)])
	}
	return trackStyle.Render(prefix + string(window))
}

func formatTime(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (m Model) renderTimeStatus(st transport.Status) string {
	if st.MicActive {
		return micStyle.Render("MIC") + dimStyle.Render(" capturing default input device")
	}
	status := strings.ToUpper(st.State.String())
	style := statusStyle
	if st.State != transport.Playing {
		style = dimStyle
	}
	return timeStyle.Render(formatTime(st.Position)+" / "+formatTime(st.Duration)) +
		"  " + style.Render(status)
}

func (m Model) renderVisualization() string {
	r := m.renderers[m.rIdx]
	out := r.Render(m.feed(), panelWidth)
	label := dimStyle.Render(fmt.Sprintf("── %s ──", r.Name()))
	return label + "\n" + out
}

func (m Model) renderSeekBar(st transport.Status) string {
	barW := panelWidth - 2
	frac := 0.0
	if st.Duration > 0 {
		frac = max(0, min(1, float64(st.Position)/float64(st.Duration)))
	}
	filled := int(frac * float64(barW))
	return seekFillStyle.Render(strings.Repeat("━", filled)) +
		seekFillStyle.Render("●") +
		seekDimStyle.Render(strings.Repeat("─", max(0, barW-filled)))
}

func (m Model) renderVolume(st transport.Status) string {
	barW := 22
	filled := int(st.Gain * float64(barW))
	filled = max(0, min(filled, barW))
	bar := volBarStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barW-filled))
	return labelStyle.Render("VOL ") + bar + dimStyle.Render(fmt.Sprintf(" %3.0f%%", st.Gain*100))
}

func (m Model) renderPlaylistHeader(st transport.Status) string {
	toggle := func(on bool, label string) string {
		if on {
			return activeToggle.Render(label)
		}
		return dimStyle.Render(label)
	}
	return dimStyle.Render("── Playlist ── ") +
		toggle(st.Shuffled, "[Shuffle]") + " " +
		toggle(st.LoopTrack, "[Loop Song]") + " " +
		toggle(st.LoopPlaylist, "[Loop All]") + " " +
		dimStyle.Render("──")
}

func (m Model) renderPlaylist(st transport.Status) string {
	tracks := m.store.View()
	if len(tracks) == 0 {
		return dimStyle.Render("  Drop audio files on the command line to begin")
	}

	visible := min(m.visible, len(tracks))
	scroll := m.scroll
	if scroll+visible > len(tracks) {
		scroll = len(tracks) - visible
	}
	scroll = max(0, scroll)

	lines := make([]string, 0, visible)
	for i := scroll; i < scroll+visible && i < len(tracks); i++ {
		prefix := "  "
		style := playlistItemStyle

		if i == st.Index && st.State == transport.Playing && !st.MicActive {
			prefix = "▶ "
			style = playlistActiveStyle
		}
		if i == m.cursor {
			style = playlistSelectedStyle
		}

		name := tracks[i].DisplayName()
		maxW := panelWidth - 6
		runes := []rune(name)
		if len(runes) > maxW {
			name = string(runes[:maxW-1]) + "…"
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s%d. %s", prefix, i+1, name)))
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	return helpStyle.Render("[Spc]Play [b n]Trk [←→]Seek [+-]Vol [s]Shuf [r R]Loop [m]Mic [v]Vis [x]Del [q]Quit")
}
