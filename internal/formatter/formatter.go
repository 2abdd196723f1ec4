// package formatter renders playlists and favorites to export formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

// Export formats accepted by the writers.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists every supported export format.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// BaseName is the file stem used for a playlist's export files.
func BaseName(p models.Playlist) string {
	return fmt.Sprintf("playlist_%d", p.PlstID)
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToCSV converts a playlist's songs to CSV with columns: Position, SID, Title, Artist, Added
func ExportToCSV(detail *models.PlaylistDetail) ([]byte, error) {
	rows := make([][]string, 0, len(detail.Songs))
	for _, song := range detail.Songs {
		rows = append(rows, []string{
			strconv.Itoa(song.Position),
			song.SID,
			song.SongName,
			song.ArtistName,
			song.AddedAt,
		})
	}
	return writeCSV([]string{"Position", "SID", "Title", "Artist", "Added"}, rows)
}

// FavoritesToCSV converts favorites to CSV with columns: SID, Title, Album, Artists, Favored
func FavoritesToCSV(favorites []models.Favorite) ([]byte, error) {
	rows := make([][]string, 0, len(favorites))
	for _, f := range favorites {
		rows = append(rows, []string{f.SID, f.SongTitle, f.AlbumTitle, f.ArtistNames, f.FavoredAt})
	}
	return writeCSV([]string{"SID", "Title", "Album", "Artists", "Favored"}, rows)
}

// ExportToMarkdown converts a playlist to Markdown with a header block and a numbered song list
func ExportToMarkdown(detail *models.PlaylistDetail) ([]byte, error) {
	var buf bytes.Buffer
	p := detail.Playlist

	buf.WriteString(fmt.Sprintf("# %s\n\n", p.Name))
	if p.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", p.Description))
	}

	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(detail.Songs)))
	buf.WriteString(fmt.Sprintf("**Visibility**: %s\n", shared.VisibilityString(p.Visibility)))
	if p.CreatedAt != "" {
		buf.WriteString(fmt.Sprintf("**Created**: %s\n", p.CreatedAt))
	}
	buf.WriteString("\n## Songs\n\n")

	for _, song := range detail.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", song.Position, song.ArtistName, song.SongName))
	}
	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text
func ExportToText(detail *models.PlaylistDetail) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", detail.Playlist.Name))
	if detail.Playlist.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", detail.Playlist.Description))
	}
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(detail.Songs)))

	for _, song := range detail.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", song.Position, song.ArtistName, song.SongName))
	}
	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without songs)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	return shared.MarshalJSON(playlist, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV with an accompanying metadata JSON file.
//
// Creates {base}_songs.csv and {base}_metadata.json. base defaults to [BaseName].
func WriteCSVExport(detail *models.PlaylistDetail, base string) (*CSVExportResult, error) {
	if base == "" {
		base = BaseName(detail.Playlist)
	}

	csvData, err := ExportToCSV(detail)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := base + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(detail.Playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{SongsFile: songsFile, MetadataFile: metadataFile}, nil
}

// WriteMarkdownExport exports a playlist to {dir}/README.md, creating dir as needed.
func WriteMarkdownExport(detail *models.PlaylistDetail, dir string) (string, error) {
	if dir == "" {
		dir = BaseName(detail.Playlist)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(detail)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return mdFile, nil
}

// WriteTextExport exports a playlist to plain text. path defaults to {base}_songs.txt.
func WriteTextExport(detail *models.PlaylistDetail, path string) (string, error) {
	if path == "" {
		path = BaseName(detail.Playlist) + "_songs.txt"
	}

	textData, err := ExportToText(detail)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("JSON marshal failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("JSON write failed: %w", err)
	}
	return nil
}

// WritePlaylist exports detail into dir in the given format and returns the files written.
func WritePlaylist(detail *models.PlaylistDetail, format, dir string) ([]string, error) {
	base := filepath.Join(dir, BaseName(detail.Playlist))

	switch format {
	case FormatCSV:
		res, err := WriteCSVExport(detail, base)
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.SongsFile, res.MetadataFile}, nil
	case FormatMarkdown:
		file, err := WriteMarkdownExport(detail, base)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return []string{file}, nil
	case FormatText:
		file, err := WriteTextExport(detail, base+"_songs.txt")
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{file}, nil
	case FormatJSON, "":
		path := base + ".json"
		if err := WriteJSON(detail, path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
}
