package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	th "github.com/desertthunder/resonate/internal/testing"
)

func testDetail() *models.PlaylistDetail {
	return &models.PlaylistDetail{
		Playlist: models.Playlist{
			PlstID:      12,
			UID:         "7",
			Name:        "Road Trip",
			Description: "Long drives",
			Visibility:  models.VisibilityUnlisted,
			CreatedAt:   "2024-05-01",
		},
		Songs: []models.PlaylistEntry{
			{Position: 1, SID: "s1", SongName: "Believer", ArtistName: "Imagine Dragons", AddedAt: "2024-05-02"},
			{Position: 2, SID: "s2", SongName: "Thunder, Live", ArtistName: "Imagine Dragons"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testDetail())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Position,SID,Title,Artist,Added\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,s1,Believer,Imagine Dragons,2024-05-02") {
			t.Errorf("CSV missing first row, got: %s", output)
		}
		if !strings.Contains(output, `2,s2,"Thunder, Live",Imagine Dragons,`) {
			t.Errorf("CSV should quote fields with commas, got: %s", output)
		}
	})

	t.Run("FavoritesToCSV", func(t *testing.T) {
		data, err := FavoritesToCSV([]models.Favorite{
			{SID: "s1", SongTitle: "Believer", AlbumTitle: "Evolve", ArtistNames: "Imagine Dragons", FavoredAt: "2024-05-02"},
		})
		if err != nil {
			t.Fatalf("FavoritesToCSV failed: %v", err)
		}
		want := "SID,Title,Album,Artists,Favored\ns1,Believer,Evolve,Imagine Dragons,2024-05-02\n"
		if string(data) != want {
			t.Errorf("got %q, want %q", string(data), want)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testDetail())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Road Trip\n",
			"**Description**: Long drives",
			"**Songs**: 2",
			"**Visibility**: Unlisted",
			"**Created**: 2024-05-01",
			"## Songs",
			"1. Imagine Dragons - Believer",
			"2. Imagine Dragons - Thunder, Live",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown without description", func(t *testing.T) {
		detail := testDetail()
		detail.Playlist.Description = ""

		data, _ := ExportToMarkdown(detail)
		if strings.Contains(string(data), "**Description**") {
			t.Errorf("Markdown should omit an empty description")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testDetail())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		want := "Playlist: Road Trip\nDescription: Long drives\nSongs: 2\n\n" +
			"1. Imagine Dragons - Believer\n2. Imagine Dragons - Thunder, Live\n"
		if string(data) != want {
			t.Errorf("got:\n%s\nwant:\n%s", data, want)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testDetail().Playlist)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var got models.Playlist
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if got.PlstID != 12 || got.Name != "Road Trip" {
			t.Errorf("unexpected metadata: %+v", got)
		}
		if strings.Contains(string(data), "Believer") {
			t.Errorf("metadata should not contain songs")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(testDetail(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.SongsFile != "playlist_12_songs.csv" {
				t.Errorf("Expected songs file 'playlist_12_songs.csv', got '%s'", result.SongsFile)
			}
			if result.MetadataFile != "playlist_12_metadata.json" {
				t.Errorf("Expected metadata file 'playlist_12_metadata.json', got '%s'", result.MetadataFile)
			}
			th.AssertFileExists(t, result.SongsFile)
			th.AssertFileExists(t, result.MetadataFile)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")

			result, err := WriteCSVExport(testDetail(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.SongsFile != base+"_songs.csv" {
				t.Errorf("unexpected songs file %s", result.SongsFile)
			}
			if content := th.MustReadFile(t, result.SongsFile); !strings.Contains(content, "Believer") {
				t.Errorf("songs file missing content: %s", content)
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "md")

		file, err := WriteMarkdownExport(testDetail(), dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}
		if file != filepath.Join(dir, "README.md") {
			t.Errorf("unexpected file %s", file)
		}
		if content := th.MustReadFile(t, file); !strings.HasPrefix(content, "# Road Trip") {
			t.Errorf("unexpected markdown: %s", content)
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")

		got, err := WriteTextExport(testDetail(), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteTextExport into missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteTextExport(testDetail(), path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})

	t.Run("WritePlaylist", func(t *testing.T) {
		tests := []struct {
			format string
			files  []string
		}{
			{format: FormatJSON, files: []string{"playlist_12.json"}},
			{format: "", files: []string{"playlist_12.json"}},
			{format: FormatCSV, files: []string{"playlist_12_songs.csv", "playlist_12_metadata.json"}},
			{format: FormatMarkdown, files: []string{filepath.Join("playlist_12", "README.md")}},
			{format: FormatText, files: []string{"playlist_12_songs.txt"}},
		}

		for _, tt := range tests {
			t.Run("format "+tt.format, func(t *testing.T) {
				dir := t.TempDir()

				files, err := WritePlaylist(testDetail(), tt.format, dir)
				if err != nil {
					t.Fatalf("WritePlaylist failed: %v", err)
				}
				if len(files) != len(tt.files) {
					t.Fatalf("expected %d files, got %v", len(tt.files), files)
				}
				for i, want := range tt.files {
					if files[i] != filepath.Join(dir, want) {
						t.Errorf("file %d: expected %s, got %s", i, filepath.Join(dir, want), files[i])
					}
					th.AssertFileExists(t, files[i])
				}
			})
		}

		t.Run("unsupported format", func(t *testing.T) {
			_, err := WritePlaylist(testDetail(), "xml", t.TempDir())
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})
	})
}
