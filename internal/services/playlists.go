package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
)

// Playlists lists the playlists uid owns.
func (c *Client) Playlists(ctx context.Context, uid string) ([]models.Playlist, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/users/" + escape(uid) + "/playlists",
		uid:      uid,
		fallback: "Failed to load playlists",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["playlists"], normalizePlaylist), nil
}

// Playlist fetches a playlist with its ordered songs. uid may be empty for public playlists.
func (c *Client) Playlist(ctx context.Context, uid string, plstid int) (models.PlaylistDetail, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/playlists/" + strconv.Itoa(plstid),
		uid:      uid,
		fallback: "Failed to load playlist",
	})
	if err != nil {
		return models.PlaylistDetail{}, err
	}

	detail := models.PlaylistDetail{
		Playlist: normalizePlaylist(asObject(payload["playlist"])),
		Songs:    mapSlice(payload["songs"], normalizePlaylistEntry),
	}
	if detail.Playlist.PlstID == 0 {
		detail.Playlist.PlstID = plstid
	}
	return detail, nil
}

// CreatePlaylist creates a playlist owned by uid and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, uid string, in models.NewPlaylist) (int, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return 0, err
	}
	if err := in.Validate(); err != nil {
		return 0, NewValidationError("%s", capitalize(err.Error()))
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/playlists",
		body:     in,
		uid:      uid,
		fallback: "Failed to create playlist",
	})
	if err != nil {
		return 0, err
	}

	return asIntOr(payload["playlist_id"], 0), nil
}

// DeletePlaylist deletes a playlist owned by uid.
func (c *Client) DeletePlaylist(ctx context.Context, uid string, plstid int) error {
	if err := requireUser(uid, "Login required"); err != nil {
		return err
	}

	_, err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/playlists/" + strconv.Itoa(plstid),
		uid:      uid,
		fallback: "Failed to delete playlist",
	})
	return err
}

// AddSongToPlaylist appends sid to the playlist and returns the position it landed at.
func (c *Client) AddSongToPlaylist(ctx context.Context, uid string, plstid int, sid string) (int, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return 0, err
	}
	if plstid <= 0 {
		return 0, NewValidationError("Select a playlist")
	}
	if strings.TrimSpace(sid) == "" {
		return 0, NewValidationError("Missing song or playlist")
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/playlists/" + strconv.Itoa(plstid) + "/songs",
		body:     map[string]string{"sid": sid},
		uid:      uid,
		fallback: "Failed to add to playlist",
	})
	if err != nil {
		return 0, err
	}

	return asIntOr(payload["position"], 0), nil
}

// FollowedPlaylists lists the playlists uid follows.
func (c *Client) FollowedPlaylists(ctx context.Context, uid string) ([]models.FollowedPlaylist, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/users/" + escape(uid) + "/followed-playlists",
		uid:      uid,
		fallback: "Failed to load followed playlists",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["playlists"], func(m map[string]any) models.FollowedPlaylist {
		return models.FollowedPlaylist{Playlist: normalizePlaylist(m), FollowedAt: asString(m["followed_at"])}
	}), nil
}

// SearchPlaylists finds public playlists by name. uid may be empty.
func (c *Client) SearchPlaylists(ctx context.Context, uid, query string) ([]models.Playlist, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/playlists/search",
		query:    url.Values{"q": {strings.TrimSpace(query)}},
		uid:      uid,
		fallback: "Failed to search playlists",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["playlists"], normalizePlaylist), nil
}

// FollowPlaylist makes uid follow the playlist.
func (c *Client) FollowPlaylist(ctx context.Context, uid string, plstid int) error {
	if err := requireUser(uid, "Log in to follow playlists"); err != nil {
		return err
	}

	_, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/playlists/" + strconv.Itoa(plstid) + "/follow",
		uid:      uid,
		fallback: "Failed to follow playlist",
	})
	return err
}

// UnfollowPlaylist makes uid stop following the playlist.
func (c *Client) UnfollowPlaylist(ctx context.Context, uid string, plstid int) error {
	if err := requireUser(uid, "Log in to unfollow playlists"); err != nil {
		return err
	}

	_, err := c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/playlists/" + strconv.Itoa(plstid) + "/follow",
		uid:      uid,
		fallback: "Failed to unfollow playlist",
	})
	return err
}

func normalizePlaylist(m map[string]any) models.Playlist {
	visibility := strings.ToLower(asString(m["visibility"]))
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	return models.Playlist{
		PlstID:      asIntOr(firstNonNil(m, "plstid", "playlist_id", "id"), 0),
		UID:         asString(m["uid"]),
		Name:        firstString(m, "name", "title"),
		Description: asString(m["description"]),
		Visibility:  visibility,
		CreatedAt:   asString(m["created_at"]),
	}
}

func normalizePlaylistEntry(m map[string]any) models.PlaylistEntry {
	return models.PlaylistEntry{
		Position:   asIntOr(m["position"], 0),
		SID:        asString(m["sid"]),
		SongName:   firstString(m, "song_name", "song_title", "name"),
		ArtistName: firstString(m, "artist_name", "artist_names"),
		AddedAt:    asString(m["added_at"]),
	}
}

func firstNonNil(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
