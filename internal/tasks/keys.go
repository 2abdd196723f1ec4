package tasks

import "github.com/desertthunder/resonate/internal/query"

// Cache keys, one constructor per read. The first element names the resource and doubles as the
// prefix that invalidates every entry of that resource.

func SearchKey(q string, page, pageSize int) query.Key {
	return query.Key{"search-songs", q, page, pageSize}
}

func SongKey(sid string) query.Key {
	return query.Key{"song-detail", sid}
}

func UserRatingKey(sid, uid string) query.Key {
	return query.Key{"song-user-rating", sid, uid}
}

func FavoritesKey(uid string) query.Key {
	return query.Key{"favorites", uid}
}

func PlaylistsKey(uid string) query.Key {
	return query.Key{"user-playlists", uid}
}

// PlaylistKey includes the viewer because private playlists render differently per user.
// Invalidate with [PlaylistPrefix] to reach every viewer's copy.
func PlaylistKey(plstid int, uid string) query.Key {
	return query.Key{"playlist", plstid, uid}
}

func PlaylistPrefix(plstid int) query.Key {
	return query.Key{"playlist", plstid}
}

func FollowedKey(uid string) query.Key {
	return query.Key{"followed-playlists", uid}
}

func PlaylistSearchKey(q, uid string) query.Key {
	return query.Key{"playlist-search", q, uid}
}

func ProfileKey(uid string) query.Key {
	return query.Key{"user-profile", uid}
}

func RecommendationsKey(uid string) query.Key {
	return query.Key{"recommendations", uid}
}

func RankingKey() query.Key {
	return query.Key{"weekly-ranking"}
}

func AverageRatingsKey() query.Key {
	return query.Key{"average-ratings"}
}

func AlbumKey(albumID string) query.Key {
	return query.Key{"album-songs", albumID}
}

func ArtistKey(artistID string) query.Key {
	return query.Key{"artist-songs", artistID}
}
