package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/resonate/internal/repositories"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	tu "github.com/desertthunder/resonate/internal/testing"
	"github.com/urfave/cli/v3"
)

type harness struct {
	runner *Runner
	api    *tu.FakeAPI
	out    *bytes.Buffer
}

func newHarness(t *testing.T, storage session.Storage) *harness {
	t.Helper()

	api := tu.NewFakeAPI(t)
	config := shared.DefaultConfig()
	config.API = api.Config()

	out := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Storage: storage,
		Logger:  shared.NewLogger(io.Discard),
		Output:  out,
	})
	t.Cleanup(func() {
		if runner.library != nil {
			runner.library.Cache().Wait()
		}
	})
	return &harness{runner: runner, api: api, out: out}
}

func (h *harness) run(args ...string) error {
	app := &cli.Command{Name: "resonate", Commands: h.runner.register(), Writer: io.Discard}
	return app.Run(context.Background(), append([]string{"resonate"}, args...))
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.api.JSON(http.MethodPost, "/api/auth/login", http.StatusOK, map[string]any{
		"user":  map[string]any{"uid": 7, "username": "ada", "email": "ada@example.com"},
		"token": "tok",
	})
	if err := h.run("auth", "login", "--email", "ada@example.com", "--password", "pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	h.out.Reset()
}

func sqliteStorage(t *testing.T) *repositories.LocalStorage {
	t.Helper()
	db, err := shared.OpenStorage(shared.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "resonate.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewLocalStorage(db)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			storage := tu.NewMemoryStorage()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Storage:    storage,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.api == nil || runner.library == nil {
				t.Error("expected api client and library to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.api.BaseURL() != runner.config.API.BaseURL {
				t.Errorf("expected client to use config base url, got %s", runner.api.BaseURL())
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses the configured timeout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient == nil || runner.httpClient.Timeout != runner.config.API.Timeout {
				t.Error("expected httpClient with the api timeout")
			}
		})

		t.Run("without storage the library is unavailable", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

			_, err := runner.lib()
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		seen := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("duplicate command %q", cmd.Name)
			}
			seen[cmd.Name] = true
		}
		for _, name := range []string{"auth", "search", "songs", "playlists", "snapshot", "tui"} {
			if !seen[name] {
				t.Errorf("expected %q to be registered", name)
			}
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("login persists the session", func(t *testing.T) {
		storage := sqliteStorage(t)
		h := newHarness(t, storage)
		h.login(t)

		if _, err := storage.Get(session.StorageKey); err != nil {
			t.Fatalf("expected persisted session: %v", err)
		}

		// A fresh runner over the same storage is still logged in.
		again := newHarness(t, storage)
		if err := again.run("auth", "status", "--json"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		var status map[string]any
		if err := json.Unmarshal(again.out.Bytes(), &status); err != nil {
			t.Fatalf("status is not JSON: %v", err)
		}
		if status["authenticated"] != true || status["uid"] != "7" {
			t.Errorf("unexpected status %v", status)
		}
	})

	t.Run("failed login shows the server message", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.api.JSON(http.MethodPost, "/api/auth/login", http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})

		err := h.run("auth", "login", "-e", "ada@example.com", "-p", "nope")
		if err == nil || err.Error() != "Invalid credentials" {
			t.Errorf("expected server message, got %v", err)
		}
	})

	t.Run("logout", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)

		if err := h.run("auth", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "Logged out") {
			t.Errorf("unexpected output %q", h.out.String())
		}

		h.out.Reset()
		if err := h.run("auth", "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "Not logged in") {
			t.Errorf("unexpected status %q", h.out.String())
		}
	})

	t.Run("vip", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodPost, "/api/users/7/vip", http.StatusOK, map[string]any{"message": "ok"})

		if err := h.run("auth", "vip"); err != nil {
			t.Fatalf("vip failed: %v", err)
		}
		if !h.runner.library.Session().User.IsVIP {
			t.Error("session should be VIP")
		}
	})
}

func TestSongCommands(t *testing.T) {
	searchBody := map[string]any{
		"results": []map[string]any{
			{"sid": "s1", "song_name": "Believer", "artist_name": "Imagine Dragons", "album_name": "Evolve"},
		},
		"total":    1,
		"has_next": false,
	}

	t.Run("search", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchBody)

		if err := h.run("search", "believer"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		out := h.out.String()
		if !strings.Contains(out, "1 results") || !strings.Contains(out, "Imagine Dragons - Believer [Evolve]") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("search requires a query", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())

		err := h.run("search")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("search with ratings", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodGet, "/api/search", http.StatusOK, searchBody)
		h.api.JSON(http.MethodGet, "/api/songs/s1/rating", http.StatusOK, map[string]any{
			"rating": map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 3},
		})

		if err := h.run("search", "--ratings", "believer"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "★★★☆☆") {
			t.Errorf("expected rating stars, got %q", h.out.String())
		}
	})

	t.Run("rate", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodPost, "/api/songs/s1/rate", http.StatusOK, map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 4})
		h.api.JSON(http.MethodGet, "/api/songs/s1/rating", http.StatusOK, map[string]any{
			"rating": map[string]any{"rid": 1, "uid": 7, "sid": "s1", "rate_value": 4},
		})

		if err := h.run("songs", "rate", "s1", "4"); err != nil {
			t.Fatalf("rate failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "★★★★☆") {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("rate rejects bad values", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)

		if err := h.run("songs", "rate", "s1", "five"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if err := h.run("songs", "rate", "s1", "9"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("favorites requires login", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())

		if err := h.run("favorites"); !tasks.IsNotAuthenticated(err) {
			t.Errorf("expected not authenticated, got %v", err)
		}
	})

	t.Run("favorites as CSV", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodGet, "/api/users/7/favorites", http.StatusOK, map[string]any{
			"favorites": []map[string]any{{"sid": "s1", "song_title": "Believer", "album_title": "Evolve", "artist_names": "Imagine Dragons"}},
		})

		if err := h.run("favorites", "--csv"); err != nil {
			t.Fatalf("favorites failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(h.out.String()), "\n")
		if len(lines) != 2 || !strings.HasPrefix(lines[0], "SID,Title") {
			t.Errorf("unexpected CSV %q", h.out.String())
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())

		if err := h.run("playlists", "show", "abc"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("create", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodPost, "/api/playlists", http.StatusOK, map[string]any{"plstid": 12})

		if err := h.run("playlists", "create", "--name", "Road trip"); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "Created playlist 12") {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("show", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.api.JSON(http.MethodGet, "/api/playlists/3", http.StatusOK, map[string]any{
			"playlist": map[string]any{"plstid": 3, "name": "Mix", "visibility": "private"},
			"songs":    []map[string]any{{"position": 1, "sid": "s1", "song_name": "Believer", "artist_name": "Imagine Dragons"}},
		})

		if err := h.run("playlists", "show", "3"); err != nil {
			t.Fatalf("show failed: %v", err)
		}
		out := h.out.String()
		if !strings.Contains(out, "Mix") || !strings.Contains(out, "1. Imagine Dragons - Believer") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("export", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodGet, "/api/playlists/3", http.StatusOK, map[string]any{
			"playlist": map[string]any{"plstid": 3, "name": "Mix"},
			"songs":    []map[string]any{{"position": 1, "sid": "s1", "song_name": "Believer", "artist_name": "Imagine Dragons"}},
		})
		dir := t.TempDir()

		err := h.run("playlists", "export", "--id", "3", "--format", "markdown", "--output", dir, "--rate", "1000")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(h.out.String(), "Exported: 1/1") {
			t.Errorf("unexpected output %q", h.out.String())
		}
		tu.AssertFileExists(t, filepath.Join(dir, "playlist_3", "README.md"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
	})
}

func TestMiscCommands(t *testing.T) {
	t.Run("snapshot saves a file", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)
		h.api.JSON(http.MethodGet, "/api/users/7", http.StatusOK, map[string]any{"uid": 7, "username": "ada"})
		h.api.JSON(http.MethodGet, "/api/users/7/playlists", http.StatusOK, map[string]any{"playlists": []any{}})
		h.api.JSON(http.MethodGet, "/api/users/7/favorites", http.StatusOK, map[string]any{"favorites": []any{}})
		h.api.JSON(http.MethodGet, "/api/users/7/followed-playlists", http.StatusOK, map[string]any{"playlists": []any{}})
		h.api.JSON(http.MethodGet, "/api/recommendations/7", http.StatusOK, map[string]any{"recommendations": []any{}})
		path := filepath.Join(t.TempDir(), "snapshot.json")

		if err := h.run("snapshot", "--save", path); err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if !strings.Contains(tu.MustReadFile(t, path), `"username": "ada"`) {
			t.Errorf("unexpected snapshot file %q", tu.MustReadFile(t, path))
		}
	})

	t.Run("user update sends only set fields", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)

		var body map[string]any
		h.api.Handle(http.MethodPut, "/api/users/7", func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			tu.WriteJSON(w, http.StatusOK, map[string]any{"uid": 7, "username": "ada", "city": "Paris"})
		})

		if err := h.run("users", "update", "--city", "Paris", "--hobby", "chess", "--hobby", "go"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if len(body) != 2 || body["city"] != "Paris" {
			t.Errorf("unexpected body %v", body)
		}
	})

	t.Run("user update without fields", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.login(t)

		if err := h.run("users", "update"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("api get", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())
		h.api.JSON(http.MethodGet, "/api/weekly-ranking", http.StatusOK, map[string]any{"rankings": []any{}})

		if err := h.run("api", "get", "--json", "/api/weekly-ranking"); err != nil {
			t.Fatalf("api get failed: %v", err)
		}
		if strings.TrimSpace(h.out.String()) != `{"rankings":[]}` {
			t.Errorf("unexpected output %q", h.out.String())
		}
	})

	t.Run("api post rejects invalid JSON", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())

		if err := h.run("api", "post", "--data", "{nope", "/api/favorites"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("storage list and remove", func(t *testing.T) {
		h := newHarness(t, sqliteStorage(t))
		h.login(t)

		if err := h.run("storage", "list"); err != nil {
			t.Fatalf("storage list failed: %v", err)
		}
		if !strings.Contains(h.out.String(), session.StorageKey) {
			t.Errorf("expected session key, got %q", h.out.String())
		}

		if err := h.run("storage", "remove", "missing"); !errors.Is(err, shared.ErrStorageKeyNotFound) {
			t.Errorf("expected ErrStorageKeyNotFound, got %v", err)
		}
		if err := h.run("storage", "remove", session.StorageKey); err != nil {
			t.Errorf("remove failed: %v", err)
		}
	})

	t.Run("storage list needs a listable store", func(t *testing.T) {
		h := newHarness(t, tu.NewMemoryStorage())

		if err := h.run("storage", "list"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
