package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"golang.org/x/sync/errgroup"
)

// EndpointResult records a read that failed during a snapshot.
type EndpointResult struct {
	Endpoint string
	Error    error
}

// SnapshotResult is everything the current user can see about themselves, read in one pass.
//
// A failed read leaves its field empty and is listed in Errors; the rest still complete.
type SnapshotResult struct {
	Profile         *models.UserProfile
	Playlists       []models.Playlist
	Favorites       []models.Favorite
	Followed        []models.FollowedPlaylist
	Recommendations []models.Recommendation
	Errors          []EndpointResult
}

// SnapshotData is the JSON form of a [SnapshotResult].
type SnapshotData struct {
	Profile         *models.UserProfile       `json:"profile"`
	Playlists       []models.Playlist         `json:"playlists,omitempty"`
	Favorites       []models.Favorite         `json:"favorites,omitempty"`
	Followed        []models.FollowedPlaylist `json:"followed,omitempty"`
	Recommendations []models.Recommendation   `json:"recommendations,omitempty"`
	Errors          []map[string]string       `json:"errors,omitempty"`
}

// Data converts r for serialization, flattening errors to their messages.
func (r *SnapshotResult) Data() SnapshotData {
	data := SnapshotData{
		Profile:         r.Profile,
		Playlists:       r.Playlists,
		Favorites:       r.Favorites,
		Followed:        r.Followed,
		Recommendations: r.Recommendations,
	}
	for _, e := range r.Errors {
		data.Errors = append(data.Errors, map[string]string{
			"endpoint": e.Endpoint,
			"error":    services.Message(e.Error),
		})
	}
	return data
}

type snapshotOperation struct {
	name    string
	phase   Phase
	message string
	run     func(ctx context.Context) error
}

// Snapshot reads the current user's profile, playlists, favorites, followed playlists and
// recommendations concurrently through the cache.
func (l *Library) Snapshot(ctx context.Context, progress chan<- ProgressUpdate) (*SnapshotResult, error) {
	if !l.session.Authenticated() {
		return nil, fmt.Errorf("%w: log in to take a snapshot", shared.ErrNotAuthenticated)
	}

	result := &SnapshotResult{Errors: []EndpointResult{}}
	ops := []snapshotOperation{
		{name: "profile", phase: FetchProfile, message: "Fetching profile...", run: func(ctx context.Context) error {
			res, err := l.Profile(ctx, "")
			if err == nil {
				result.Profile = &res.Data
			}
			return err
		}},
		{name: "playlists", phase: FetchPlaylists, message: "Fetching playlists...", run: func(ctx context.Context) error {
			res, err := l.Playlists(ctx)
			result.Playlists = res.Data
			return err
		}},
		{name: "favorites", phase: FetchFavorites, message: "Fetching favorites...", run: func(ctx context.Context) error {
			res, err := l.Favorites(ctx)
			result.Favorites = res.Data
			return err
		}},
		{name: "followed", phase: FetchFollowed, message: "Fetching followed playlists...", run: func(ctx context.Context) error {
			res, err := l.Followed(ctx)
			result.Followed = res.Data
			return err
		}},
		{name: "recommendations", phase: FetchRecommendations, message: "Fetching recommendations...", run: func(ctx context.Context) error {
			res, err := l.Recommendations(ctx)
			result.Recommendations = res.Data
			return err
		}},
	}

	var (
		mu   sync.Mutex
		step atomic.Int32
	)
	total := len(ops)

	g, gctx := errgroup.WithContext(ctx)
	for _, op := range ops {
		g.Go(func() error {
			sendProgress(progress, operationUpdate(op, int(step.Add(1)), total))

			if err := op.run(gctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Warn("snapshot read failed", "endpoint", op.name, "error", err)

				mu.Lock()
				result.Errors = append(result.Errors, EndpointResult{Endpoint: op.name, Error: err})
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
