package models

// Recommendation is a song suggested for a user from tag overlap with their playlists.
type Recommendation struct {
	SID                 string  `json:"sid"`
	Name                string  `json:"name"`
	AvgRating           float64 `json:"avg_rating"`
	MatchedTags         int     `json:"matched_tags"`
	TagMatchScore       float64 `json:"tag_match_score"`
	RecommendationScore float64 `json:"recommendation_score"`
}

// Ranking is one row of the weekly favorites chart.
type Ranking struct {
	YearWeek   int     `json:"yearweek"`
	SongTitle  string  `json:"song_title"`
	AlbumTitle *string `json:"album_title"`
	FavCount   int     `json:"fav_count"`
	RankInWeek int     `json:"rank_in_week"`
}

// Year and Week split a YYYYWW yearweek value.
func (r Ranking) Year() int { return r.YearWeek / 100 }
func (r Ranking) Week() int { return r.YearWeek % 100 }

// AverageRating is a song's rating aggregate across all users.
type AverageRating struct {
	SongName    string  `json:"song_name"`
	ArtistName  string  `json:"artist_name"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}
