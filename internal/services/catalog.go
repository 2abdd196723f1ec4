package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/resonate/internal/models"
)

// Recommendations fetches songs suggested for uid.
func (c *Client) Recommendations(ctx context.Context, uid string) ([]models.Recommendation, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/recommendations/" + escape(uid),
		fallback: "Failed to load recommendations",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["recommendations"], func(m map[string]any) models.Recommendation {
		return models.Recommendation{
			SID:                 asString(m["sid"]),
			Name:                firstString(m, "name", "song_name"),
			AvgRating:           asFloatOr(m["avg_rating"], 0),
			MatchedTags:         asIntOr(m["matched_tags"], 0),
			TagMatchScore:       asFloatOr(m["tag_match_score"], 0),
			RecommendationScore: asFloatOr(m["recommendation_score"], 0),
		}
	}), nil
}

// WeeklyRanking fetches the weekly favorites chart.
func (c *Client) WeeklyRanking(ctx context.Context) ([]models.Ranking, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/weekly-ranking",
		fallback: "Failed to load weekly ranking",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["rankings"], func(m map[string]any) models.Ranking {
		return models.Ranking{
			YearWeek:   asIntOr(m["yearweek"], 0),
			SongTitle:  firstString(m, "song_title", "song_name"),
			AlbumTitle: asOptString(m["album_title"]),
			FavCount:   asIntOr(m["fav_count"], 0),
			RankInWeek: asIntOr(m["rank_in_week"], 0),
		}
	}), nil
}

// AverageRatings fetches every song's rating aggregate.
func (c *Client) AverageRatings(ctx context.Context) ([]models.AverageRating, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/ratings/average",
		fallback: "Failed to load song ratings",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["ratings"], func(m map[string]any) models.AverageRating {
		return models.AverageRating{
			SongName:    firstString(m, "song_name", "song_title"),
			ArtistName:  asString(m["artist_name"]),
			AvgRating:   asFloatOr(m["avg_rating"], 0),
			RatingCount: asIntOr(m["rating_count"], 0),
		}
	}), nil
}

// AlbumSongs lists the tracks of an album.
func (c *Client) AlbumSongs(ctx context.Context, albumID string) ([]models.AlbumSong, error) {
	if albumID == "" {
		return nil, NewValidationError("Missing album")
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/albums/" + escape(albumID) + "/songs",
		fallback: "Failed to load album",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["songs"], func(m map[string]any) models.AlbumSong {
		return models.AlbumSong{
			SID:        asString(m["sid"]),
			SongName:   firstString(m, "song_name", "song_title", "name"),
			ArtistName: firstString(m, "artist_name", "artist_names"),
			AlbumTitle: asOptString(firstString(m, "album_title", "album_name")),
			TrackNo:    asOptInt(m["track_no"]),
		}
	}), nil
}

// ArtistSongs lists the tracks credited to an artist.
func (c *Client) ArtistSongs(ctx context.Context, artistID string) ([]models.ArtistSong, error) {
	if artistID == "" {
		return nil, NewValidationError("Missing artist")
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/artist/" + escape(artistID) + "/songs",
		fallback: "Failed to load artist",
	})
	if err != nil {
		return nil, err
	}

	return mapSlice(payload["songs"], func(m map[string]any) models.ArtistSong {
		return models.ArtistSong{
			SID:        asString(m["sid"]),
			SongTitle:  firstString(m, "song_title", "song_name", "name"),
			AlbumTitle: firstString(m, "album_title", "album_name"),
			ArtistName: asString(m["artist_name"]),
		}
	}), nil
}
