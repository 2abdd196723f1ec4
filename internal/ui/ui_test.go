package ui

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	tu "github.com/desertthunder/resonate/internal/testing"
)

func newTestModel(t *testing.T, sess *models.Session) (*Model, *tu.FakeAPI) {
	t.Helper()

	api := tu.NewFakeAPI(t)
	logger := shared.NewLogger(io.Discard)
	store := session.NewStore(tu.NewMemoryStorage(), logger)
	if sess != nil {
		if err := store.Save(sess); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}
	sc, err := session.NewContext(store)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}

	stale := shared.CacheConfig{Search: time.Minute, SongDetail: time.Minute, Rating: time.Minute, Favorites: time.Minute}
	lib := tasks.NewLibrary(services.NewClient(api.Config(), nil, logger), query.NewCache(logger), sc, stale, logger)
	t.Cleanup(lib.Cache().Wait)

	m := NewModel(context.Background(), lib)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, api
}

func searchResults(n int, hasNext bool) map[string]any {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{"sid": "s" + string(rune('1'+i)), "song_name": "Song " + string(rune('A'+i)), "artist_name": "Band"}
	}
	return map[string]any{"results": items, "total": 42, "has_next": hasNext}
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// search submits q and delivers the fetch result to the model.
func search(t *testing.T, m *Model, q string) {
	t.Helper()
	m.input.SetValue(q)
	m.Update(press("enter"))
	if !m.loading {
		t.Fatal("expected loading after submit")
	}
	m.Update(m.fetchSearch(m.query, m.page, false)())
}

func TestSearchView(t *testing.T) {
	t.Run("NewModel", func(t *testing.T) {
		m, _ := newTestModel(t, nil)

		if m.view != SearchView {
			t.Errorf("expected SearchView, got %v", m.view)
		}
		if !m.input.Focused() {
			t.Error("search input should start focused")
		}
		if !strings.Contains(m.View(), "Type a query") {
			t.Errorf("expected hint in view, got %q", m.View())
		}
	})

	t.Run("submit shows results and count", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(3, true))

		search(t, m, "  band ")

		if m.query != "band" {
			t.Errorf("query should be trimmed, got %q", m.query)
		}
		if m.loading || m.err != nil {
			t.Fatalf("unexpected state loading=%v err=%v", m.loading, m.err)
		}
		if got := len(m.results.Items()); got != 3 {
			t.Errorf("expected 3 items, got %d", got)
		}
		if m.input.Focused() {
			t.Error("input should blur after a search")
		}
		view := m.View()
		if !strings.Contains(view, "42 results") || !strings.Contains(view, "Song A") {
			t.Errorf("unexpected view %q", view)
		}
	})

	t.Run("blank submit keeps focus and makes no request", func(t *testing.T) {
		m, api := newTestModel(t, nil)

		search(t, m, "   ")

		if !m.input.Focused() {
			t.Error("input should keep focus")
		}
		if n := len(api.Requests()); n != 0 {
			t.Errorf("expected no requests, got %d", n)
		}
	})

	t.Run("paging", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(2, true))
		search(t, m, "band")

		m.Update(press("n"))
		if m.page != 2 || !m.loading {
			t.Fatalf("expected loading page 2, got page=%d loading=%v", m.page, m.loading)
		}
		m.Update(m.fetchSearch(m.query, 2, false)())

		m.Update(press("p"))
		if m.page != 1 {
			t.Fatalf("expected page 1, got %d", m.page)
		}
		m.Update(m.fetchSearch(m.query, 1, false)())

		if n := api.Count(http.MethodGet, "/api/search"); n != 2 {
			t.Errorf("page 1 should come from cache, got %d requests", n)
		}
	})

	t.Run("prev on first page is ignored", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(2, false))
		search(t, m, "band")

		m.Update(press("p"))
		m.Update(press("n"))
		if m.page != 1 || m.loading {
			t.Errorf("expected no paging, got page=%d loading=%v", m.page, m.loading)
		}
	})

	t.Run("error then retry", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusInternalServerError, map[string]any{"error": "search is down"})
		search(t, m, "band")

		if m.err == nil {
			t.Fatal("expected error")
		}
		if view := m.View(); !strings.Contains(view, "search is down") || !strings.Contains(view, "try again") {
			t.Errorf("expected error with retry hint, got %q", view)
		}

		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(1, false))
		m.Update(press("r"))
		if !m.loading {
			t.Fatal("expected loading after retry")
		}
		m.Update(m.fetchSearch(m.query, m.page, true)())

		if m.err != nil || len(m.results.Items()) != 1 {
			t.Errorf("expected recovery, got err=%v items=%d", m.err, len(m.results.Items()))
		}
	})

	t.Run("out of date responses are dropped", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(2, false))
		search(t, m, "band")

		m.Update(searchFetchedMsg("other", 1, query.Result[models.SearchPage]{}, nil))
		if len(m.results.Items()) != 2 {
			t.Errorf("stale message should not replace results, got %d", len(m.results.Items()))
		}
	})

	t.Run("ratings decorate results when logged in", func(t *testing.T) {
		m, api := newTestModel(t, &models.Session{User: models.AuthUser{UID: "7"}, Token: "tok"})
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(1, false))
		api.JSON(http.MethodGet, "/api/songs/s1/rating", http.StatusOK, map[string]any{
			"rating": map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 4},
		})
		search(t, m, "band")

		m.Update(m.fetchRatings(m.query, m.page, m.current)())

		item := m.results.Items()[0].(songItem)
		if item.rating != 4 || !strings.Contains(item.Description(), "★★★★☆") {
			t.Errorf("expected rating 4, got %+v", item)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, api := newTestModel(t, nil)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(1, false))
		search(t, m, "band")

		_, cmd := m.Update(press("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestSongView(t *testing.T) {
	open := func(t *testing.T, sess *models.Session) (*Model, *tu.FakeAPI) {
		m, api := newTestModel(t, sess)
		api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchResults(1, false))
		api.JSON(http.MethodGet, "/api/songs/s1", http.StatusOK, map[string]any{
			"sid": "s1", "name": "Song A", "avg_rating": 3.5, "rating_count": 2, "artist_name": "Band",
		})
		api.JSON(http.MethodGet, "/api/users/7/favorites", http.StatusOK, map[string]any{"favorites": []any{}})
		search(t, m, "band")

		m.Update(press("enter"))
		if m.view != SongView {
			t.Fatalf("expected SongView, got %v", m.view)
		}
		m.Update(m.fetchSong("s1")())
		return m, api
	}

	t.Run("detail", func(t *testing.T) {
		m, _ := open(t, nil)

		view := m.View()
		if !strings.Contains(view, "3.5 (2 ratings)") || !strings.Contains(view, "Band") {
			t.Errorf("unexpected view %q", view)
		}
		if strings.Contains(view, "Yours:") {
			t.Error("logged-out view should not show own rating")
		}
	})

	t.Run("rate while logged out shows message", func(t *testing.T) {
		m, _ := open(t, nil)

		m.Update(press("4"))
		if !m.busy {
			t.Fatal("expected busy while rating")
		}
		m.Update(m.rate("s1", 4)())

		if m.notice == "" || m.busy {
			t.Errorf("expected notice, got %q busy=%v", m.notice, m.busy)
		}
	})

	t.Run("rate and favorite", func(t *testing.T) {
		m, api := open(t, &models.Session{User: models.AuthUser{UID: "7"}, Token: "tok"})
		api.JSON(http.MethodPost, "/api/songs/s1/rate", http.StatusOK, map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 5})
		api.JSON(http.MethodGet, "/api/songs/s1/rating", http.StatusOK, map[string]any{
			"rating": map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 5},
		})
		api.JSON(http.MethodPost, "/api/favorites", http.StatusOK, map[string]any{"message": "ok"})

		_, cmd := m.Update(m.rate("s1", 5)())
		if cmd == nil {
			t.Fatal("rating should refetch the song")
		}
		if !strings.Contains(m.View(), "★★★★★") {
			t.Errorf("expected five stars, got %q", m.View())
		}

		m.Update(press("f"))
		m.Update(m.toggleFavorite("s1", true)())
		if !m.favorite || !strings.Contains(m.View(), "In your favorites") {
			t.Errorf("expected favorite, got %q", m.View())
		}
	})

	t.Run("back returns to results", func(t *testing.T) {
		m, _ := open(t, nil)

		m.Update(press("esc"))
		if m.view != SearchView || m.song != nil {
			t.Errorf("expected SearchView with cleared song, got view=%v", m.view)
		}
		if len(m.results.Items()) != 1 {
			t.Error("results should survive navigation")
		}
	})
}
