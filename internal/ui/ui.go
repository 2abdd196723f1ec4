package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	SongView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	lib      *tasks.Library
	view     ViewState
	width    int
	height   int
	pageSize int

	input   textinput.Model
	results list.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	query   string
	page    int
	current models.SearchPage
	ratings map[string]int
	loading bool
	stale   bool
	err     error

	selected models.SongSummary
	song     *models.SongDetail
	favorite bool
	busy     bool
	notice   string
	songErr  error
}

// NewModel creates a new TUI model reading through lib.
func NewModel(ctx context.Context, lib *tasks.Library) *Model {
	input := textinput.New()
	input.Placeholder = "Search songs, artists, albums"
	input.Prompt = "🔍 "
	input.CharLimit = 120
	input.Focus()

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.Title = "Songs"
	results.SetShowStatusBar(false)
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		ctx:      ctx,
		lib:      lib,
		view:     SearchView,
		pageSize: tasks.DefaultPageSize,
		input:    input,
		results:  results,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		page:     1,
		current:  models.EmptySearchPage(1, tasks.DefaultPageSize),
		ratings:  map[string]int{},
	}
}

// Init starts the cursor blinking in the search box.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-8, 10)
		m.results.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case SongView:
			return m.handleSongKeys(msg)
		}

	case spinner.TickMsg:
		if !m.loading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchFetched:
		data := msg.data.(searchFetched)
		if data.query != m.query || data.page != m.page {
			return m, nil
		}

		m.loading = false
		m.err = data.err
		m.stale = data.result.Fetching
		if data.result.HasData || data.result.Status == query.StatusDisabled {
			m.current = data.result.Data
			m.setItems()
		}

		var cmds []tea.Cmd
		if data.err == nil && len(m.current.Items) > 0 {
			cmds = append(cmds, m.fetchRatings(data.query, data.page, m.current))
		}
		if data.result.Fetching {
			cmds = append(cmds, m.awaitRevalidation(data.query, data.page))
		}
		return m, tea.Batch(cmds...)

	case MsgRatingsFetched:
		data := msg.data.(ratingsFetched)
		if data.query != m.query || data.page != m.page {
			return m, nil
		}
		m.ratings = data.ratings
		m.setItems()
		return m, nil

	case MsgSongFetched:
		data := msg.data.(songFetched)
		if data.sid != m.selected.SID {
			return m, nil
		}
		m.busy = false
		m.songErr = data.err
		if data.result.HasData {
			song := data.result.Data
			m.song = &song
		}
		m.favorite = data.favorite
		return m, nil

	case MsgRated:
		data := msg.data.(rated)
		m.busy = false
		if data.err != nil {
			m.notice = styles.err.Render(services.Message(data.err))
			return m, nil
		}
		m.ratings[data.sid] = data.value
		m.setItems()
		m.notice = styles.ok.Render(fmt.Sprintf("Rated %s", shared.Stars(data.value)))
		if data.sid == m.selected.SID {
			return m, m.fetchSong(data.sid)
		}
		return m, nil

	case MsgFavoriteToggled:
		data := msg.data.(favoriteToggled)
		m.busy = false
		if data.err != nil {
			m.notice = styles.err.Render(services.Message(data.err))
			return m, nil
		}
		if data.sid == m.selected.SID {
			m.favorite = data.on
		}
		if data.on {
			m.notice = styles.ok.Render("Added to favorites")
		} else {
			m.notice = styles.ok.Render("Removed from favorites")
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case SongView:
		return m.renderSong()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m, m.submit(m.input.Value())
		case "esc":
			if len(m.current.Items) > 0 {
				m.input.Blur()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.next):
		if m.loading || !m.current.HasNext {
			return m, nil
		}
		return m, m.goToPage(m.page + 1)
	case key.Matches(msg, m.keys.prev):
		if m.loading || !m.current.HasPrev() {
			return m, nil
		}
		return m, m.goToPage(m.page - 1)
	case key.Matches(msg, m.keys.retry):
		if m.query == "" {
			return m, nil
		}
		return m, m.startSearch(true)
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(songItem); ok {
			return m, m.openSong(item.song)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleSongKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.song = nil
		m.songErr = nil
		m.notice = ""
		return m, nil
	case key.Matches(msg, m.keys.retry):
		if m.songErr == nil {
			return m, nil
		}
		m.busy = true
		return m, m.fetchSong(m.selected.SID)
	case key.Matches(msg, m.keys.rate):
		value, _ := strconv.Atoi(msg.String())
		m.busy = true
		m.notice = ""
		return m, m.rate(m.selected.SID, value)
	case key.Matches(msg, m.keys.favorite):
		m.busy = true
		m.notice = ""
		return m, m.toggleFavorite(m.selected.SID, !m.favorite)
	}
	return m, nil
}

// submit starts a search for q from its first page. The input keeps focus when q is blank.
func (m *Model) submit(q string) tea.Cmd {
	m.query = strings.TrimSpace(q)
	m.page = 1
	m.ratings = map[string]int{}
	if m.query != "" {
		m.input.Blur()
	}
	return m.startSearch(false)
}

func (m *Model) goToPage(page int) tea.Cmd {
	m.page = page
	m.ratings = map[string]int{}
	return m.startSearch(false)
}

func (m *Model) startSearch(retry bool) tea.Cmd {
	m.loading = true
	m.err = nil
	return tea.Batch(m.spinner.Tick, m.fetchSearch(m.query, m.page, retry))
}

func (m *Model) openSong(song models.SongSummary) tea.Cmd {
	m.view = SongView
	m.selected = song
	m.song = nil
	m.songErr = nil
	m.favorite = false
	m.notice = ""
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.fetchSong(song.SID))
}

func (m *Model) setItems() {
	items := make([]list.Item, len(m.current.Items))
	for i, song := range m.current.Items {
		rating := m.ratings[song.SID]
		if v, ok := m.lib.DisplayRating(song.SID); ok {
			rating = v
		}
		items[i] = songItem{song: song, rating: rating}
	}
	m.results.SetItems(items)
	m.results.ResetSelected()
}

func (m *Model) fetchSearch(q string, page int, retry bool) tea.Cmd {
	lib, ctx, size := m.lib, m.ctx, m.pageSize
	return func() tea.Msg {
		var (
			res query.Result[models.SearchPage]
			err error
		)
		if retry {
			res, err = lib.RetrySearch(ctx, q, page, size)
		} else {
			res, err = lib.SearchSongs(ctx, q, page, size)
		}
		return searchFetchedMsg(q, page, res, err)
	}
}

// awaitRevalidation re-reads a page shown stale once its background refresh lands.
func (m *Model) awaitRevalidation(q string, page int) tea.Cmd {
	lib, ctx, size := m.lib, m.ctx, m.pageSize
	return func() tea.Msg {
		res, err := lib.SettledSearch(ctx, q, page, size)
		return searchFetchedMsg(q, page, res, err)
	}
}

func (m *Model) fetchRatings(q string, page int, results models.SearchPage) tea.Cmd {
	lib, ctx := m.lib, m.ctx
	return func() tea.Msg {
		ratings, err := lib.SearchRatings(ctx, results)
		if err != nil {
			return nil
		}
		return ratingsFetchedMsg(q, page, ratings)
	}
}

func (m *Model) fetchSong(sid string) tea.Cmd {
	lib, ctx := m.lib, m.ctx
	return func() tea.Msg {
		res, err := lib.Song(ctx, sid)
		fav := false
		if err == nil && lib.Session() != nil {
			fav, _ = lib.IsFavorite(ctx, sid)
		}
		return songFetchedMsg(sid, res, fav, err)
	}
}

func (m *Model) rate(sid string, value int) tea.Cmd {
	lib, ctx := m.lib, m.ctx
	return func() tea.Msg {
		_, err := lib.RateSong(ctx, sid, value)
		return ratedMsg(sid, value, err)
	}
}

func (m *Model) toggleFavorite(sid string, on bool) tea.Cmd {
	lib, ctx := m.lib, m.ctx
	return func() tea.Msg {
		var err error
		if on {
			err = lib.Favorite(ctx, sid)
		} else {
			err = lib.Unfavorite(ctx, sid)
		}
		return favoriteToggledMsg(sid, on, err)
	}
}

// status is the line under the search box: progress, the error with a retry hint, or the result count.
func (m *Model) status() string {
	switch {
	case m.loading:
		return fmt.Sprintf("%s Searching...", m.spinner.View())
	case m.err != nil:
		return styles.err.Render(fmt.Sprintf("%s · press r to try again", services.Message(m.err)))
	case m.query == "":
		return styles.help.Render("Type a query and press enter")
	}

	line := fmt.Sprintf("%d results · page %d", m.current.Total, m.current.Page)
	if m.stale {
		line += " · refreshing"
	}
	return line
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Resonate"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n\n")

	if len(m.current.Items) > 0 {
		b.WriteString(m.results.View())
		b.WriteString("\n\n")
	} else if m.query != "" && !m.loading && m.err == nil {
		b.WriteString(styles.warn.Render(fmt.Sprintf("No songs match %q", m.query)))
		b.WriteString("\n\n")
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.quit}
	if !m.input.Focused() {
		helpKeys = []key.Binding{m.keys.enter, m.keys.search, m.keys.next, m.keys.prev, m.keys.retry, m.keys.quit}
	}
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderSong() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.selected.SongName))
	b.WriteString("\n")

	switch {
	case m.songErr != nil:
		b.WriteString(styles.err.Render(services.Message(m.songErr)))
		b.WriteString("\n")
	case m.song == nil:
		b.WriteString(fmt.Sprintf("%s Loading...\n", m.spinner.View()))
	default:
		s := m.song
		fmt.Fprintf(&b, "Artist:   %s\n", optional(s.ArtistName, m.selected.ArtistName))
		fmt.Fprintf(&b, "Album:    %s\n", optional(s.AlbumTitle, m.selected.AlbumName))
		fmt.Fprintf(&b, "Released: %s\n", optional(s.ReleaseDate, "-"))
		if s.Tags != nil && *s.Tags != "" {
			fmt.Fprintf(&b, "Tags:     %s\n", *s.Tags)
		}
		fmt.Fprintf(&b, "Average:  %s (%d ratings)\n", shared.FormatRating(s.AvgRating), s.RatingCount)
	}

	if m.lib.Session() != nil {
		rating := m.ratings[m.selected.SID]
		if v, ok := m.lib.DisplayRating(m.selected.SID); ok {
			rating = v
		}
		fmt.Fprintf(&b, "Yours:    %s\n", styles.rating.Render(shared.Stars(rating)))
		if m.favorite {
			b.WriteString(styles.ok.Render("♥ In your favorites"))
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.notice)
		b.WriteString("\n")
	}

	helpKeys := []key.Binding{m.keys.rate, m.keys.favorite, m.keys.back, m.keys.quit}
	if m.songErr != nil {
		helpKeys = []key.Binding{m.keys.retry, m.keys.back, m.keys.quit}
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(helpKeys))
	return b.String()
}

func optional(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
