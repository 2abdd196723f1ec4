// Package models defines the entities the Resonate client reads from and writes to the API.
//
// Authoritative storage lives on the server; these types are the normalized client-side shapes
// produced by the services package:
//
//   - [Session] : the persisted identity record (user + token)
//   - [SearchPage], [SongSummary], [SongDetail], [Rating] : catalog reads and the user's own rating
//   - [Playlist], [PlaylistDetail], [PlaylistEntry], [FollowedPlaylist] : ownership and follow relations
//   - [Favorite] : the (user, song) favorite relation
//   - [UserProfile], [ProfileUpdate] : profile reads and partial updates
//   - [Recommendation], [Ranking], [AverageRating], [AlbumSong], [ArtistSong] : read-only charts and listings
package models
