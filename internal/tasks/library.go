package tasks

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	// ratingLookups bounds the per-song rating requests issued for one search page.
	ratingLookups = 4
)

// Library is the data layer the CLI and TUI consume: every read goes through the cache with its key,
// fresh window and enabled rule, and every write through a [query.Mutation] that knows what to invalidate.
type Library struct {
	api     services.API
	cache   *query.Cache
	session *session.Context
	stale   shared.CacheConfig
	ratings *query.Optimistic[string, int]
	logger  *log.Logger

	Mutations Mutations
}

// NewLibrary wires a [Library]. The session context is read on every call, so logins made elsewhere
// take effect immediately.
func NewLibrary(api services.API, cache *query.Cache, sess *session.Context, stale shared.CacheConfig, logger *log.Logger) *Library {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	l := &Library{
		api:     api,
		cache:   cache,
		session: sess,
		stale:   stale,
		ratings: query.NewOptimistic[string, int](),
		logger:  shared.WithLogger(logger, "component", "library"),
	}
	l.Mutations = l.newMutations()
	return l
}

// Cache exposes the underlying cache for subscribers and manual refetches.
func (l *Library) Cache() *query.Cache {
	return l.cache
}

// Session returns the current session, or nil when logged out.
func (l *Library) Session() *models.Session {
	return l.session.Session()
}

func (l *Library) uid() string {
	return l.session.UserID()
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// SearchSongs reads one page of search results. A blank query is disabled and yields an empty page
// without a request.
func (l *Library) SearchSongs(ctx context.Context, q string, page, pageSize int) (query.Result[models.SearchPage], error) {
	q = strings.TrimSpace(q)
	page, pageSize = normalizePaging(page, pageSize)

	return query.Query(ctx, l.cache, query.Options[models.SearchPage]{
		Key:         SearchKey(q, page, pageSize),
		StaleTime:   l.stale.Search,
		Disabled:    q == "",
		Placeholder: models.EmptySearchPage(page, pageSize),
		Fetch: func(ctx context.Context) (models.SearchPage, error) {
			return l.api.SearchSongs(ctx, q, page, pageSize)
		},
	})
}

// RetrySearch is the "Try again" action for a search page.
func (l *Library) RetrySearch(ctx context.Context, q string, page, pageSize int) (query.Result[models.SearchPage], error) {
	q = strings.TrimSpace(q)
	page, pageSize = normalizePaging(page, pageSize)

	return query.Refetch(ctx, l.cache, query.Options[models.SearchPage]{
		Key:         SearchKey(q, page, pageSize),
		StaleTime:   l.stale.Search,
		Disabled:    q == "",
		Placeholder: models.EmptySearchPage(page, pageSize),
		Fetch: func(ctx context.Context) (models.SearchPage, error) {
			return l.api.SearchSongs(ctx, q, page, pageSize)
		},
	})
}

// SettledSearch waits until no refetch of the search page is in flight and returns what the cache
// holds for it. A failed background refetch is reported only when there is no data to show.
func (l *Library) SettledSearch(ctx context.Context, q string, page, pageSize int) (query.Result[models.SearchPage], error) {
	q = strings.TrimSpace(q)
	page, pageSize = normalizePaging(page, pageSize)
	key := SearchKey(q, page, pageSize)

	select {
	case <-l.cache.Settled(key):
	case <-ctx.Done():
		return query.Peek[models.SearchPage](l.cache, key), ctx.Err()
	}

	res := query.Peek[models.SearchPage](l.cache, key)
	if res.HasData {
		return res, nil
	}
	return res, res.Err
}

// Song reads a song's detail.
func (l *Library) Song(ctx context.Context, sid string) (query.Result[models.SongDetail], error) {
	return query.Query(ctx, l.cache, query.Options[models.SongDetail]{
		Key:       SongKey(sid),
		StaleTime: l.stale.SongDetail,
		Disabled:  sid == "",
		Fetch: func(ctx context.Context) (models.SongDetail, error) {
			return l.api.Song(ctx, sid)
		},
	})
}

func (l *Library) userRatingOptions(sid, uid string) query.Options[*models.Rating] {
	return query.Options[*models.Rating]{
		Key:       UserRatingKey(sid, uid),
		StaleTime: l.stale.Rating,
		Disabled:  sid == "" || uid == "",
		Fetch: func(ctx context.Context) (*models.Rating, error) {
			return l.api.UserRating(ctx, uid, sid)
		},
	}
}

// UserRating reads the current user's own rating for sid. Data is nil when the song is unrated.
func (l *Library) UserRating(ctx context.Context, sid string) (query.Result[*models.Rating], error) {
	return query.Query(ctx, l.cache, l.userRatingOptions(sid, l.uid()))
}

// DisplayRating is the star value to show for sid: the local guess while a rating write is in flight,
// otherwise whatever the cached own-rating read holds. An unrated song reports false.
func (l *Library) DisplayRating(sid string) (int, bool) {
	if v, ok := l.ratings.Value(sid); ok {
		return v, true
	}
	r := query.Peek[*models.Rating](l.cache, UserRatingKey(sid, l.uid()))
	if r.HasData && r.Data != nil {
		return r.Data.Value, true
	}
	return 0, false
}

// SearchRatings looks up the user's own rating for every song on page, concurrently.
//
// A failed lookup counts as unrated. Nothing is recorded if ctx ends before all lookups finish.
func (l *Library) SearchRatings(ctx context.Context, page models.SearchPage) (map[string]int, error) {
	uid := l.uid()
	out := make(map[string]int, len(page.Items))
	if uid == "" || len(page.Items) == 0 {
		return out, nil
	}

	values := make([]int, len(page.Items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ratingLookups)
	for i, song := range page.Items {
		g.Go(func() error {
			res, err := query.Fetch(gctx, l.cache, l.userRatingOptions(song.SID, uid))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				l.logger.Debug("rating lookup failed", "sid", song.SID, "error", err)
				return nil
			}
			if res.Data != nil {
				values[i] = res.Data.Value
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, song := range page.Items {
		out[song.SID] = values[i]
	}
	return out, nil
}

// Favorites reads the current user's favorites.
func (l *Library) Favorites(ctx context.Context) (query.Result[[]models.Favorite], error) {
	uid := l.uid()
	return query.Query(ctx, l.cache, query.Options[[]models.Favorite]{
		Key:         FavoritesKey(uid),
		StaleTime:   l.stale.Favorites,
		Disabled:    uid == "",
		Placeholder: []models.Favorite{},
		Fetch: func(ctx context.Context) ([]models.Favorite, error) {
			return l.api.Favorites(ctx, uid)
		},
	})
}

// IsFavorite reports whether sid is in the current user's favorites.
func (l *Library) IsFavorite(ctx context.Context, sid string) (bool, error) {
	res, err := l.Favorites(ctx)
	if err != nil && !res.HasData {
		return false, err
	}
	for _, f := range res.Data {
		if f.SID == sid {
			return true, nil
		}
	}
	return false, nil
}

// Playlists reads the playlists the current user owns.
func (l *Library) Playlists(ctx context.Context) (query.Result[[]models.Playlist], error) {
	uid := l.uid()
	return query.Query(ctx, l.cache, query.Options[[]models.Playlist]{
		Key:         PlaylistsKey(uid),
		StaleTime:   l.stale.Playlists,
		Disabled:    uid == "",
		Placeholder: []models.Playlist{},
		Fetch: func(ctx context.Context) ([]models.Playlist, error) {
			return l.api.Playlists(ctx, uid)
		},
	})
}

func (l *Library) playlistOptions(plstid int) query.Options[models.PlaylistDetail] {
	uid := l.uid()
	return query.Options[models.PlaylistDetail]{
		Key:       PlaylistKey(plstid, uid),
		StaleTime: l.stale.Playlists,
		Disabled:  plstid <= 0,
		Fetch: func(ctx context.Context) (models.PlaylistDetail, error) {
			return l.api.Playlist(ctx, uid, plstid)
		},
	}
}

// Playlist reads one playlist with its songs.
func (l *Library) Playlist(ctx context.Context, plstid int) (query.Result[models.PlaylistDetail], error) {
	return query.Query(ctx, l.cache, l.playlistOptions(plstid))
}

// Followed reads the playlists the current user follows.
func (l *Library) Followed(ctx context.Context) (query.Result[[]models.FollowedPlaylist], error) {
	uid := l.uid()
	return query.Query(ctx, l.cache, query.Options[[]models.FollowedPlaylist]{
		Key:         FollowedKey(uid),
		StaleTime:   l.stale.Playlists,
		Disabled:    uid == "",
		Placeholder: []models.FollowedPlaylist{},
		Fetch: func(ctx context.Context) ([]models.FollowedPlaylist, error) {
			return l.api.FollowedPlaylists(ctx, uid)
		},
	})
}

// SearchPlaylists finds public playlists by name. A blank query is disabled.
func (l *Library) SearchPlaylists(ctx context.Context, q string) (query.Result[[]models.Playlist], error) {
	q = strings.TrimSpace(q)
	uid := l.uid()
	return query.Query(ctx, l.cache, query.Options[[]models.Playlist]{
		Key:         PlaylistSearchKey(q, uid),
		StaleTime:   l.stale.PlaylistSearch,
		Disabled:    q == "",
		Placeholder: []models.Playlist{},
		Fetch: func(ctx context.Context) ([]models.Playlist, error) {
			return l.api.SearchPlaylists(ctx, uid, q)
		},
	})
}

// Profile reads a user's profile. An empty uid means the current user.
func (l *Library) Profile(ctx context.Context, uid string) (query.Result[models.UserProfile], error) {
	if uid == "" {
		uid = l.uid()
	}
	return query.Query(ctx, l.cache, query.Options[models.UserProfile]{
		Key:       ProfileKey(uid),
		StaleTime: l.stale.Profile,
		Disabled:  uid == "",
		Fetch: func(ctx context.Context) (models.UserProfile, error) {
			return l.api.Profile(ctx, uid)
		},
	})
}

// Recommendations reads songs suggested for the current user.
func (l *Library) Recommendations(ctx context.Context) (query.Result[[]models.Recommendation], error) {
	uid := l.uid()
	return query.Query(ctx, l.cache, query.Options[[]models.Recommendation]{
		Key:         RecommendationsKey(uid),
		StaleTime:   l.stale.Recommendations,
		Disabled:    uid == "",
		Placeholder: []models.Recommendation{},
		Fetch: func(ctx context.Context) ([]models.Recommendation, error) {
			return l.api.Recommendations(ctx, uid)
		},
	})
}

// WeeklyRanking reads the weekly favorites chart.
func (l *Library) WeeklyRanking(ctx context.Context) (query.Result[[]models.Ranking], error) {
	return query.Query(ctx, l.cache, query.Options[[]models.Ranking]{
		Key:       RankingKey(),
		StaleTime: l.stale.Rankings,
		Fetch:     l.api.WeeklyRanking,
	})
}

// AverageRatings reads every song's rating aggregate.
func (l *Library) AverageRatings(ctx context.Context) (query.Result[[]models.AverageRating], error) {
	return query.Query(ctx, l.cache, query.Options[[]models.AverageRating]{
		Key:       AverageRatingsKey(),
		StaleTime: l.stale.Rankings,
		Fetch:     l.api.AverageRatings,
	})
}

// AlbumSongs reads an album's tracks.
func (l *Library) AlbumSongs(ctx context.Context, albumID string) (query.Result[[]models.AlbumSong], error) {
	return query.Query(ctx, l.cache, query.Options[[]models.AlbumSong]{
		Key:         AlbumKey(albumID),
		StaleTime:   l.stale.Albums,
		Disabled:    albumID == "",
		Placeholder: []models.AlbumSong{},
		Fetch: func(ctx context.Context) ([]models.AlbumSong, error) {
			return l.api.AlbumSongs(ctx, albumID)
		},
	})
}

// ArtistSongs reads an artist's tracks.
func (l *Library) ArtistSongs(ctx context.Context, artistID string) (query.Result[[]models.ArtistSong], error) {
	return query.Query(ctx, l.cache, query.Options[[]models.ArtistSong]{
		Key:         ArtistKey(artistID),
		StaleTime:   l.stale.Artists,
		Disabled:    artistID == "",
		Placeholder: []models.ArtistSong{},
		Fetch: func(ctx context.Context) ([]models.ArtistSong, error) {
			return l.api.ArtistSongs(ctx, artistID)
		},
	})
}
