package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/player"
	"github.com/desertthunder/groove/internal/services"
)

// pane identifies one of the browsable track lists.
type pane int

const (
	CatalogPane pane = iota
	RecentPane
	FavoritesPane
	paneCount
)

func (p pane) String() string {
	switch p {
	case CatalogPane:
		return "Catalog"
	case RecentPane:
		return "Recently Played"
	case FavoritesPane:
		return "Favorites"
	default:
		return "?"
	}
}

// Activity is the slice of the activity synchronizer the TUI reads and writes.
type Activity interface {
	GetRecentlyPlayed(ctx context.Context) []models.Track
	GetFavorites(ctx context.Context) []models.Track
	ToggleFavorite(ctx context.Context, track models.Track) bool
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	player   *player.Player
	catalog  services.Catalog
	activity Activity

	lists  [paneCount]list.Model
	active pane
	now    player.Snapshot
	status string
	err    error

	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, p *player.Player, catalog services.Catalog, activity Activity) *Model {
	m := &Model{
		ctx:      ctx,
		player:   p,
		catalog:  catalog,
		activity: activity,
		now:      p.State(),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	for i := range m.lists {
		m.lists[i] = newTrackList(pane(i).String())
	}
	return m
}

// Init loads every pane and starts listening for player updates.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.load(CatalogPane),
		m.load(RecentPane),
		m.load(FavoritesPane),
		m.waitForUpdate(),
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for i := range m.lists {
			m.lists[i].SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		if m.lists[m.active].FilterState() == list.Filtering {
			break
		}
		return m.handleKeys(msg)

	case tracksLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		cmd := m.lists[msg.pane].SetItems(trackItems(msg.tracks))
		return m, cmd

	case playerUpdateMsg:
		m.now = player.Snapshot(msg)
		return m, m.waitForUpdate()

	case playerClosedMsg:
		return m, nil

	case favoriteToggledMsg:
		if msg.favorite {
			m.status = fmt.Sprintf("♥ %s added to favorites", msg.track.Title)
		} else {
			m.status = fmt.Sprintf("%s is not a favorite", msg.track.Title)
		}
		return m, m.load(FavoritesPane)
	}

	var cmd tea.Cmd
	m.lists[m.active], cmd = m.lists[m.active].Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		m.active = (m.active + 1) % paneCount
		return m, nil
	case key.Matches(msg, m.keys.play):
		if track, ok := m.selected(); ok {
			return m, m.play(track)
		}
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		return m, m.control(m.player.TogglePlay)
	case key.Matches(msg, m.keys.next):
		return m, m.control(m.player.Next)
	case key.Matches(msg, m.keys.previous):
		return m, m.control(m.player.Previous)
	case key.Matches(msg, m.keys.favorite):
		track, ok := m.selected()
		if !ok && m.now.Current != nil {
			track, ok = *m.now.Current, true
		}
		if ok {
			return m, m.toggleFavorite(track)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.lists[m.active], cmd = m.lists[m.active].Update(msg)
	return m, cmd
}

func (m *Model) selected() (models.Track, bool) {
	item, ok := m.lists[m.active].SelectedItem().(trackItem)
	if !ok {
		return models.Track{}, false
	}
	return item.track, true
}

func (m *Model) load(p pane) tea.Cmd {
	return func() tea.Msg {
		switch p {
		case CatalogPane:
			tracks, err := m.catalog.ListTracks(m.ctx, "")
			return tracksLoadedMsg{pane: p, tracks: tracks, err: err}
		case RecentPane:
			return tracksLoadedMsg{pane: p, tracks: m.activity.GetRecentlyPlayed(m.ctx)}
		default:
			return tracksLoadedMsg{pane: p, tracks: m.activity.GetFavorites(m.ctx)}
		}
	}
}

// play starts track and then refreshes the history pane, which the play was just recorded into.
func (m *Model) play(track models.Track) tea.Cmd {
	return func() tea.Msg {
		m.player.PlayTrack(m.ctx, track)
		return m.load(RecentPane)()
	}
}

func (m *Model) control(fn func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return nil
	}
}

func (m *Model) toggleFavorite(track models.Track) tea.Cmd {
	return func() tea.Msg {
		return favoriteToggledMsg{track: track, favorite: m.activity.ToggleFavorite(m.ctx, track)}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.player.Updates()
	return func() tea.Msg {
		select {
		case s, ok := <-updates:
			if !ok {
				return playerClosedMsg{}
			}
			return playerUpdateMsg(s)
		case <-m.ctx.Done():
			return playerClosedMsg{}
		}
	}
}

// View renders the tab bar, the active list, the now-playing pane and help.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("groove"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.lists[m.active].View())
	b.WriteString("\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(styles.ok.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

func (m *Model) renderTabs() string {
	tabs := make([]string, paneCount)
	for i := range paneCount {
		if i == m.active {
			tabs[i] = styles.activeTab.Render(i.String())
		} else {
			tabs[i] = styles.tab.Render(i.String())
		}
	}
	return strings.Join(tabs, " ")
}

func (m *Model) renderNowPlaying() string {
	if m.now.Current == nil {
		return styles.pane.Render(styles.help.Render("Nothing playing"))
	}

	state := styles.warn.Render("❚❚ Paused")
	if m.now.Playing {
		state = styles.ok.Render("▶ Playing")
	}

	t := m.now.Current
	body := fmt.Sprintf("%s\n%s - %s\n%d/%d in queue", state, t.Artist, t.Title, m.now.Position+1, len(m.now.Queue))
	return styles.pane.Render(body)
}
