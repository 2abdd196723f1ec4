package models

import (
	"fmt"
	"strings"
)

// Playlist visibilities accepted by the API.
const (
	VisibilityPublic   = "public"
	VisibilityPrivate  = "private"
	VisibilityUnlisted = "unlisted"
)

// Playlist is a user-owned, ordered list of songs.
type Playlist struct {
	PlstID      int    `json:"plstid"`
	UID         string `json:"uid"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
	CreatedAt   string `json:"created_at"`
}

// PlaylistEntry is a song at a position within a playlist.
type PlaylistEntry struct {
	Position   int    `json:"position"`
	SID        string `json:"sid"`
	SongName   string `json:"song_name"`
	ArtistName string `json:"artist_name"`
	AddedAt    string `json:"added_at,omitempty"`
}

// PlaylistDetail is a playlist with its ordered entries.
type PlaylistDetail struct {
	Playlist Playlist        `json:"playlist"`
	Songs    []PlaylistEntry `json:"songs"`
}

// FollowedPlaylist is a playlist the user follows but does not necessarily own.
type FollowedPlaylist struct {
	Playlist
	FollowedAt string `json:"followed_at"`
}

// NewPlaylist is the input for playlist creation.
type NewPlaylist struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility"`
}

// Validate trims the input, defaults the visibility to public and rejects unusable values.
func (p *NewPlaylist) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Visibility = strings.ToLower(strings.TrimSpace(p.Visibility))

	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch p.Visibility {
	case "":
		p.Visibility = VisibilityPublic
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
	default:
		return fmt.Errorf("visibility must be one of public, private, unlisted")
	}

	return nil
}

// Favorite is a song in the user's favorites.
type Favorite struct {
	SID         string `json:"sid"`
	SongTitle   string `json:"song_title"`
	AlbumTitle  string `json:"album_title"`
	ArtistNames string `json:"artist_names"`
	FavoredAt   string `json:"favored_at"`
}
