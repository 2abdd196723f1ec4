package services

import (
	"context"

	"github.com/desertthunder/resonate/internal/models"
)

// API is the set of Resonate operations the rest of the app depends on. [Client] implements it.
type API interface {
	SearchSongs(ctx context.Context, query string, page, pageSize int) (models.SearchPage, error)
	Song(ctx context.Context, sid string) (models.SongDetail, error)
	RateSong(ctx context.Context, uid, sid string, value int) (models.Rating, error)
	UserRating(ctx context.Context, uid, sid string) (*models.Rating, error)

	Favorites(ctx context.Context, uid string) ([]models.Favorite, error)
	Favorite(ctx context.Context, uid, sid string) error
	Unfavorite(ctx context.Context, uid, sid string) error

	Playlists(ctx context.Context, uid string) ([]models.Playlist, error)
	Playlist(ctx context.Context, uid string, plstid int) (models.PlaylistDetail, error)
	CreatePlaylist(ctx context.Context, uid string, in models.NewPlaylist) (int, error)
	DeletePlaylist(ctx context.Context, uid string, plstid int) error
	AddSongToPlaylist(ctx context.Context, uid string, plstid int, sid string) (int, error)
	FollowedPlaylists(ctx context.Context, uid string) ([]models.FollowedPlaylist, error)
	SearchPlaylists(ctx context.Context, uid, query string) ([]models.Playlist, error)
	FollowPlaylist(ctx context.Context, uid string, plstid int) error
	UnfollowPlaylist(ctx context.Context, uid string, plstid int) error

	Login(ctx context.Context, creds models.Credentials) (models.Session, error)
	Signup(ctx context.Context, creds models.Credentials) (models.Session, error)
	Profile(ctx context.Context, uid string) (models.UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, update models.ProfileUpdate) (models.UserProfile, error)
	UpgradeVIP(ctx context.Context, uid, token string) error

	Recommendations(ctx context.Context, uid string) ([]models.Recommendation, error)
	WeeklyRanking(ctx context.Context) ([]models.Ranking, error)
	AverageRatings(ctx context.Context) ([]models.AverageRating, error)
	AlbumSongs(ctx context.Context, albumID string) ([]models.AlbumSong, error)
	ArtistSongs(ctx context.Context, artistID string) ([]models.ArtistSong, error)
}

var _ API = (*Client)(nil)
