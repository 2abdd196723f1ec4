package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
)

var _ list.Item = songItem{}

// songItem wraps [models.SongSummary] to implement [list.Item], with the viewer's rating if any.
type songItem struct {
	song   models.SongSummary
	rating int
}

func (i songItem) FilterValue() string { return i.song.SongName }
func (i songItem) Title() string       { return i.song.SongName }
func (i songItem) Description() string {
	parts := []string{i.song.ArtistName}
	if i.song.AlbumName != "" {
		parts = append(parts, i.song.AlbumName)
	}
	if i.rating > 0 {
		parts = append(parts, shared.Stars(i.rating))
	}
	return strings.Join(parts, " • ")
}
