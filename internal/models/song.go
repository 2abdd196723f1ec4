package models

// SongSummary is a search hit.
type SongSummary struct {
	SID         string `json:"sid"`
	SongName    string `json:"song_name"`
	ArtistName  string `json:"artist_name"`
	ArtistID    string `json:"artist_id"`
	AlbumName   string `json:"album_name"`
	ReleaseDate string `json:"release_date"`
}

// SearchPage is one page of song search results for a (query, page, pageSize) tuple.
type SearchPage struct {
	Query    string        `json:"query"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int           `json:"total"`
	Items    []SongSummary `json:"results"`
	HasNext  bool          `json:"has_next"`
}

// EmptySearchPage is the result of a disabled search (blank query).
func EmptySearchPage(page, pageSize int) SearchPage {
	return SearchPage{Page: page, PageSize: pageSize, Items: []SongSummary{}}
}

// HasPrev reports whether a previous page exists.
func (p SearchPage) HasPrev() bool {
	return p.Page > 1
}

// SongDetail is the full view of a song, including its rating aggregate.
//
// Optional fields are nil when the server omits them.
type SongDetail struct {
	SID         string   `json:"sid"`
	Name        string   `json:"name"`
	ReleaseDate *string  `json:"release_date"`
	AlbumTitle  *string  `json:"album_title"`
	AlbumID     *string  `json:"album_id"`
	AvgRating   *float64 `json:"avg_rating"`
	RatingCount int      `json:"rating_count"`
	Tags        *string  `json:"tags"`
	ArtistName  *string  `json:"artist_name"`
	ArtistIDs   *string  `json:"artist_ids"`
}

// Rating is one user's rating of one song, value 1-5.
type Rating struct {
	RID     int     `json:"rid"`
	UID     string  `json:"uid"`
	SID     string  `json:"sid"`
	Value   int     `json:"rate_value"`
	Comment *string `json:"comment"`
}

// MinRating and MaxRating bound a rating value.
const (
	MinRating = 1
	MaxRating = 5
)

// AlbumSong is a track listed on an album page.
type AlbumSong struct {
	SID        string  `json:"sid"`
	SongName   string  `json:"song_name"`
	ArtistName string  `json:"artist_name"`
	AlbumTitle *string `json:"album_title"`
	TrackNo    *int    `json:"track_no"`
}

// ArtistSong is a track listed on an artist page.
type ArtistSong struct {
	SID        string `json:"sid"`
	SongTitle  string `json:"song_title"`
	AlbumTitle string `json:"album_title"`
	ArtistName string `json:"artist_name"`
}
