package widget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/loganravin4/lokedex/internal/services"
	"github.com/loganravin4/lokedex/internal/shared"
)

const fetchTimeout = 10 * time.Second

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Italic(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

// keyMap defines the key bindings for the widget.
type keyMap struct {
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type nowPlayingMsg struct {
	track   *services.Track
	initial bool
	err     error
}

type statsMsg struct {
	stats *services.Stats
	err   error
}

// pollTickMsg fires an armed poll timer. seq identifies the timer generation;
// ticks from a cancelled generation are dropped.
type pollTickMsg struct {
	seq int
}

// Model is the terminal now-playing widget.
//
// It mirrors the site widget's behavior: one initial fetch of now-playing and
// stats, then adaptive re-polling planned by [Plan], suspended entirely while
// the terminal is unfocused.
type Model struct {
	api *services.APIService

	track *services.Track
	stats *services.Stats

	state   State
	seq     int
	visible bool

	loadingTrack bool
	loadingStats bool

	spinner spinner.Model
	keys    keyMap
	width   int
}

// New creates a widget model fetching from the given deployment client.
func New(api *services.APIService) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	return Model{
		api:          api,
		state:        Idle,
		visible:      true,
		loadingTrack: true,
		loadingStats: true,
		spinner:      sp,
		keys:         newKeyMap(),
	}
}

// Init fetches now-playing and stats once, independently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchNowPlaying(true), m.fetchStats())
}

// Update handles messages and re-plans the poll timer whenever the governing
// condition (track identity, playing state, visibility) changes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.refresh):
			return m, m.fetchNowPlaying(false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.FocusMsg:
		m.visible = true
		// Resumption explicitly triggers a new poll.
		return m, m.fetchNowPlaying(false)

	case tea.BlurMsg:
		m.visible = false
		return m.rearm(), nil

	case nowPlayingMsg:
		m.loadingTrack = false
		switch {
		case msg.err != nil && msg.initial:
			// Treated as "no data" for this branch.
			m.track = nil
		case msg.err != nil:
			// Transient fetch failure mid-poll: keep the current display,
			// the next scheduled poll resolves it.
		case msg.initial:
			m.track = msg.track
		default:
			m.track = Apply(m.track, msg.track)
		}
		return m.rearmWithTimer()

	case statsMsg:
		m.loadingStats = false
		if msg.err == nil {
			m.stats = msg.stats
		}

	case pollTickMsg:
		if msg.seq != m.seq || !m.visible {
			return m, nil
		}
		return m, m.fetchNowPlaying(false)

	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// rearm cancels any armed timer and records the planned state.
func (m Model) rearm() Model {
	m.seq++
	m.state, _ = Plan(m.track, m.visible)
	return m
}

// rearmWithTimer cancels any armed timer and arms the planned one.
func (m Model) rearmWithTimer() (Model, tea.Cmd) {
	m.seq++
	var delay time.Duration
	m.state, delay = Plan(m.track, m.visible)

	if m.state == Idle {
		return m, nil
	}

	seq := m.seq
	return m, tea.Tick(delay, func(time.Time) tea.Msg {
		return pollTickMsg{seq: seq}
	})
}

func (m Model) loading() bool {
	return m.loadingTrack || m.loadingStats
}

func (m Model) fetchNowPlaying(initial bool) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		track, err := api.NowPlaying(ctx)
		return nowPlayingMsg{track: track, initial: initial, err: err}
	}
}

func (m Model) fetchStats() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		stats, err := api.Stats(ctx)
		return statsMsg{stats: stats, err: err}
	}
}

// View renders the now-playing card, or listening stats when nothing is playing.
func (m Model) View() string {
	var b strings.Builder

	if m.loading() {
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading Spotify data...")
		return boxStyle.Render(b.String())
	}

	if m.track != nil && m.track.IsPlaying {
		b.WriteString(accentStyle.Render("● NOW PLAYING"))
		b.WriteString("\n\n")
		b.WriteString(titleStyle.Render(m.track.Name))
		b.WriteString("\n")
		b.WriteString(m.track.Artist)
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(m.track.Album))
		if year := releaseYear(m.track.ReleaseDate); year != "" {
			b.WriteString(dimStyle.Render(" (" + year + ")"))
		}
		if m.track.DurationMs > 0 {
			b.WriteString("\n\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("%s / %s",
				shared.FormatDuration(m.track.ProgressMs),
				shared.FormatDuration(m.track.DurationMs))))
		}
	} else {
		b.WriteString(accentStyle.Render("♪ Spotify listening stats"))
		b.WriteString("\n")

		if m.stats == nil {
			b.WriteString(dimStyle.Render("\nNo data available"))
		} else {
			if len(m.stats.TopArtists) > 0 {
				b.WriteString("\nTop artist: ")
				b.WriteString(titleStyle.Render(m.stats.TopArtists[0].Name))
				b.WriteString("\n")
			}
			if len(m.stats.RecentTracks) > 0 {
				b.WriteString("\nRecently played:\n")
				for i, track := range m.stats.RecentTracks {
					if i >= 3 {
						break
					}
					b.WriteString(accentStyle.Render("▶ "))
					b.WriteString(fmt.Sprintf("%s - %s\n", track.Name, track.Artist))
				}
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("r refresh • q quit"))

	return boxStyle.Render(b.String())
}

// releaseYear extracts the year from a Spotify release date (YYYY or YYYY-MM-DD).
func releaseYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// Run starts the widget program with focus reporting enabled so the poller
// can suspend while the terminal is not visible.
func Run(api *services.APIService) error {
	_, err := tea.NewProgram(New(api), tea.WithReportFocus()).Run()
	return err
}
