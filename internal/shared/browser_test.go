package shared

import (
	"os/exec"
	"testing"
)

func TestWebURL(t *testing.T) {
	tc := []struct {
		name     string
		base     string
		segments []string
		want     string
	}{
		{name: "song page", base: "http://localhost:3000", segments: []string{"songs", "abc"}, want: "http://localhost:3000/songs/abc"},
		{name: "trailing slash", base: "http://localhost:3000/", segments: []string{"playlists", "7"}, want: "http://localhost:3000/playlists/7"},
		{name: "escaped id", base: "http://x", segments: []string{"songs", "a b/c"}, want: "http://x/songs/a%20b%2Fc"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := WebURL(tt.base, tt.segments...); got != tt.want {
				t.Errorf("WebURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var started []string
	startCommand = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	t.Run("linux uses xdg-open", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("http://x/songs/1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(started) != 2 || started[0] != "xdg-open" {
			t.Errorf("unexpected command %v", started)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("http://x"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}
