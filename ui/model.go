// Package ui implements the Bubbletea TUI for the audioglow player.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dwb190565/audioglow/audio"
	"github.com/dwb190565/audioglow/playlist"
	"github.com/dwb190565/audioglow/transport"
)

type tickMsg time.Time

const seekStep = 5 * time.Second

// Model is the Bubbletea model wiring the transport, the playlist view
// and the active renderer together.
type Model struct {
	transport *transport.Transport
	store     *playlist.Store
	feed      func() *audio.Feed

	renderers []Renderer
	rIdx      int

	cursor   int // selected playlist item
	scroll   int // scroll offset for playlist view
	visible  int // max visible playlist items
	titleOff int // scroll offset for long track titles
	err      error
	quitting bool
	width    int
	height   int
}

// NewModel creates a Model. feed hands out the shared analyser and may
// return nil until an audio session exists. renderer picks the startup
// renderer by name.
func NewModel(tr *transport.Transport, store *playlist.Store, feed func() *audio.Feed, renderer string) Model {
	m := Model{
		transport: tr,
		store:     store,
		feed:      feed,
		renderers: Renderers(),
		visible:   5,
	}
	for i, r := range m.renderers {
		if r.Name() == renderer {
			m.rIdx = i
			break
		}
	}
	return m
}

// Init starts the tick timer and requests the terminal size.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages: key presses, ticks, and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.titleOff++
		if n := len(m.store.View()); m.cursor >= n && n > 0 {
			m.cursor = n - 1
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true

	case " ":
		m.transport.PlayPause()

	case "n", ">":
		m.transport.Next()

	case "b", "<":
		m.transport.Prev()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}

	case "down", "j":
		if m.cursor < len(m.store.View())-1 {
			m.cursor++
			m.adjustScroll()
		}

	case "enter":
		if m.cursor < len(m.store.View()) {
			m.titleOff = 0
			m.transport.PlayTrackAt(m.cursor)
		}

	case "x":
		tracks := m.store.View()
		if m.cursor < len(tracks) {
			m.transport.RemoveTrack(tracks[m.cursor].ID)
		}

	case "c":
		m.transport.Clear()
		m.cursor = 0
		m.scroll = 0

	case "s":
		m.transport.ToggleShuffle()

	case "r":
		m.transport.ToggleLoopTrack()

	case "R":
		m.transport.ToggleLoopPlaylist()

	case "m":
		if err := m.transport.ToggleMic(); err != nil {
			m.err = err
		} else {
			m.err = nil
		}

	case "v":
		m.rIdx = (m.rIdx + 1) % len(m.renderers)

	case "left":
		st := m.transport.Status()
		m.transport.Seek(st.Position - seekStep)

	case "right":
		st := m.transport.Status()
		m.transport.Seek(st.Position + seekStep)

	case "+", "=":
		m.transport.SetVolume(m.transport.Volume() + 0.05)

	case "-":
		m.transport.SetVolume(m.transport.Volume() - 0.05)
	}
}

// adjustScroll keeps the cursor visible in the playlist view.
func (m *Model) adjustScroll() {
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+m.visible {
		m.scroll = m.cursor - m.visible + 1
	}
}
