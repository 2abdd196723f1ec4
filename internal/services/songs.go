package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/resonate/internal/models"
)

// SearchSongs fetches one page of song search results.
func (c *Client) SearchSongs(ctx context.Context, query string, page, pageSize int) (models.SearchPage, error) {
	query = strings.TrimSpace(query)
	params := url.Values{
		"q":         {query},
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(pageSize)},
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/search",
		query:    params,
		fallback: "Failed to load results",
	})
	if err != nil {
		return models.SearchPage{}, err
	}

	return normalizeSearchPage(payload, query, page, pageSize), nil
}

func normalizeSearchPage(payload map[string]any, query string, page, pageSize int) models.SearchPage {
	items := mapSlice(payload["results"], normalizeSongSummary)

	result := models.SearchPage{
		Query:    query,
		Page:     asIntOr(payload["page"], page),
		PageSize: asIntOr(payload["page_size"], pageSize),
		Total:    asIntOr(payload["total"], len(items)),
		Items:    items,
	}

	if v, ok := payload["has_next"]; ok && v != nil {
		result.HasNext = asBool(v)
	} else {
		result.HasNext = result.Page*result.PageSize < result.Total
	}

	return result
}

func normalizeSongSummary(m map[string]any) models.SongSummary {
	return models.SongSummary{
		SID:         asString(m["sid"]),
		SongName:    firstString(m, "song_name", "name", "title"),
		ArtistName:  asString(m["artist_name"]),
		ArtistID:    firstString(m, "artist_id", "arid"),
		AlbumName:   firstString(m, "album_name", "album_title"),
		ReleaseDate: asString(m["release_date"]),
	}
}

// Song fetches one song with its rating aggregate.
func (c *Client) Song(ctx context.Context, sid string) (models.SongDetail, error) {
	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/songs/" + escape(sid),
		fallback: "Failed to load song details",
	})
	if err != nil {
		return models.SongDetail{}, err
	}

	return normalizeSongDetail(payload, sid), nil
}

func normalizeSongDetail(m map[string]any, sid string) models.SongDetail {
	name := firstString(m, "name", "song_name")
	if name == "" {
		name = "Unknown song"
	}
	if s := asString(m["sid"]); s != "" {
		sid = s
	}

	return models.SongDetail{
		SID:         sid,
		Name:        name,
		ReleaseDate: asOptString(m["release_date"]),
		AlbumTitle:  asOptString(firstString(m, "album_title", "album_name")),
		AlbumID:     asOptString(firstString(m, "alid", "album_id")),
		AvgRating:   asOptFloat(m["avg_rating"]),
		RatingCount: asIntOr(m["rating_count"], 0),
		Tags:        asOptString(m["tags"]),
		ArtistName:  asOptString(m["artist_name"]),
		ArtistIDs:   asOptString(m["artist_ids"]),
	}
}

// RateSong stores uid's rating for sid and returns the rating the server echoes back.
func (c *Client) RateSong(ctx context.Context, uid, sid string, value int) (models.Rating, error) {
	if err := requireUser(uid, "Login required to rate"); err != nil {
		return models.Rating{}, err
	}
	if value < models.MinRating || value > models.MaxRating {
		return models.Rating{}, NewValidationError("Rating must be between %d and %d", models.MinRating, models.MaxRating)
	}

	body := map[string]any{"uid": uidValue(uid), "rate_value": value}
	payload, err := c.do(ctx, call{
		method:   http.MethodPost,
		path:     "/api/songs/" + escape(sid) + "/rate",
		body:     body,
		uid:      uid,
		fallback: "Failed to rate song",
	})
	if err != nil {
		return models.Rating{}, err
	}

	rating := normalizeRating(payload)
	if rating.SID == "" {
		rating.SID = sid
	}
	if rating.UID == "" {
		rating.UID = uid
	}
	if rating.Value == 0 {
		rating.Value = value
	}
	return rating, nil
}

// UserRating fetches uid's own rating for sid. A nil rating means the user has not rated the song.
func (c *Client) UserRating(ctx context.Context, uid, sid string) (*models.Rating, error) {
	if err := requireUser(uid, "Login required"); err != nil {
		return nil, err
	}

	payload, err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/songs/" + escape(sid) + "/rating",
		uid:      uid,
		fallback: "Failed to load your rating",
	})
	if err != nil {
		return nil, err
	}

	raw, ok := payload["rating"].(map[string]any)
	if !ok {
		return nil, nil
	}
	rating := normalizeRating(raw)
	if rating.Value < models.MinRating || rating.Value > models.MaxRating {
		return nil, nil
	}
	return &rating, nil
}

func normalizeRating(m map[string]any) models.Rating {
	return models.Rating{
		RID:     asIntOr(m["rid"], 0),
		UID:     asString(m["uid"]),
		SID:     asString(m["sid"]),
		Value:   asIntOr(m["rate_value"], 0),
		Comment: asOptString(m["comment"]),
	}
}

// uidValue sends numeric uids as JSON numbers, which the API requires in request bodies.
func uidValue(uid string) any {
	if n, err := strconv.Atoi(uid); err == nil {
		return n
	}
	return uid
}
