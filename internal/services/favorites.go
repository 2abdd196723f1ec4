package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
)

// Favorites lists uid's favorite songs, most recent first as the server orders them.
func (c *Client) Favorites(ctx context.Context, uid string) ([]models.Favorite, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/users/" + escape(uid) + "/favorites",
		uid:      uid,
		fallback: "Failed to load favorites",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["favorites"], func(m map[string]any) models.Favorite {
		return models.Favorite{
			SID:         asString(m["sid"]),
			SongTitle:   firstString(m, "song_title", "song_name", "name"),
			AlbumTitle:  firstString(m, "album_title", "album_name"),
			ArtistNames: firstString(m, "artist_names", "artist_name"),
			FavoredAt:   firstString(m, "favored_at", "created_at"),
		}
	}), nil
}

// Favorite adds sid to uid's favorites.
func (c *Client) Favorite(ctx context.Context, uid, sid string) error {
	return c.toggleFavorite(ctx, http.MethodPost, uid, sid, "Failed to favorite song")
}

// Unfavorite removes sid from uid's favorites.
func (c *Client) Unfavorite(ctx context.Context, uid, sid string) error {
	return c.toggleFavorite(ctx, http.MethodDelete, uid, sid, "Failed to remove favorite")
}

func (c *Client) toggleFavorite(ctx context.Context, method, uid, sid, fallback string) error {
	if err := requireUser(uid, "Login required"); err != nil {
		return err
	}
	if strings.TrimSpace(sid) == "" {
		return NewValidationError("Missing song")
	}

	_, err := c.do(ctx, call{
		method:   method,
		path:     "/api/favorites",
		body:     map[string]string{"sid": sid},
		uid:      uid,
		fallback: fallback,
	})
	return err
}
