package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
)

// RateInput rates one song as one user.
type RateInput struct {
	UID   string
	SID   string
	Value int
}

// FavoriteInput adds (On) or removes a favorite.
type FavoriteInput struct {
	UID string
	SID string
	On  bool
}

// PlaylistSongInput appends a song to a playlist.
type PlaylistSongInput struct {
	UID    string
	PlstID int
	SID    string
}

// CreatePlaylistInput creates a playlist owned by UID.
type CreatePlaylistInput struct {
	UID      string
	Playlist models.NewPlaylist
}

// PlaylistInput names a playlist acted on by UID.
type PlaylistInput struct {
	UID    string
	PlstID int
}

// FollowInput follows (On) or unfollows a playlist.
type FollowInput struct {
	UID    string
	PlstID int
	On     bool
}

// ProfileInput updates UID's profile.
type ProfileInput struct {
	UID    string
	Update models.ProfileUpdate
}

// VIPInput promotes the session's user.
type VIPInput struct {
	Session models.Session
}

// Mutations are the write operations, exposed so a UI can read Pending and Err per operation.
type Mutations struct {
	Rate           *query.Mutation[RateInput, models.Rating]
	Favorite       *query.Mutation[FavoriteInput, struct{}]
	AddToPlaylist  *query.Mutation[PlaylistSongInput, int]
	CreatePlaylist *query.Mutation[CreatePlaylistInput, int]
	DeletePlaylist *query.Mutation[PlaylistInput, struct{}]
	Follow         *query.Mutation[FollowInput, struct{}]
	UpdateProfile  *query.Mutation[ProfileInput, models.UserProfile]
	UpgradeVIP     *query.Mutation[VIPInput, struct{}]
	Login          *query.Mutation[models.Credentials, models.Session]
	Signup         *query.Mutation[models.Credentials, models.Session]
}

func (l *Library) newMutations() Mutations {
	return Mutations{
		Rate: &query.Mutation[RateInput, models.Rating]{
			Cache: l.cache,
			OnMutate: func(in RateInput) {
				l.ratings.Set(in.SID, in.Value)
			},
			Do: func(ctx context.Context, in RateInput) (models.Rating, error) {
				return l.api.RateSong(ctx, in.UID, in.SID, in.Value)
			},
			Writes: func(in RateInput, out models.Rating) []query.Write {
				return []query.Write{{Key: UserRatingKey(in.SID, in.UID), Data: &out}}
			},
			Invalidates: func(in RateInput, _ models.Rating) []query.Key {
				return []query.Key{SongKey(in.SID), AverageRatingsKey()}
			},
			OnSuccess: l.confirmRating,
			OnError: func(_ context.Context, in RateInput, err error) {
				l.ratings.Discard(in.SID)
				l.logger.Warn("rating failed", "sid", in.SID, "error", err)
			},
		},
		Favorite: &query.Mutation[FavoriteInput, struct{}]{
			Cache: l.cache,
			Do: func(ctx context.Context, in FavoriteInput) (struct{}, error) {
				if in.On {
					return struct{}{}, l.api.Favorite(ctx, in.UID, in.SID)
				}
				return struct{}{}, l.api.Unfavorite(ctx, in.UID, in.SID)
			},
			Invalidates: func(in FavoriteInput, _ struct{}) []query.Key {
				return []query.Key{FavoritesKey(in.UID), SongKey(in.SID), ProfileKey(in.UID)}
			},
		},
		AddToPlaylist: &query.Mutation[PlaylistSongInput, int]{
			Cache: l.cache,
			Do: func(ctx context.Context, in PlaylistSongInput) (int, error) {
				return l.api.AddSongToPlaylist(ctx, in.UID, in.PlstID, in.SID)
			},
			Invalidates: func(in PlaylistSongInput, _ int) []query.Key {
				return []query.Key{PlaylistPrefix(in.PlstID), PlaylistsKey(in.UID)}
			},
		},
		CreatePlaylist: &query.Mutation[CreatePlaylistInput, int]{
			Cache: l.cache,
			Do: func(ctx context.Context, in CreatePlaylistInput) (int, error) {
				return l.api.CreatePlaylist(ctx, in.UID, in.Playlist)
			},
			Invalidates: func(in CreatePlaylistInput, _ int) []query.Key {
				return []query.Key{PlaylistsKey(in.UID), ProfileKey(in.UID), {"playlist-search"}}
			},
		},
		DeletePlaylist: &query.Mutation[PlaylistInput, struct{}]{
			Cache: l.cache,
			Do: func(ctx context.Context, in PlaylistInput) (struct{}, error) {
				return struct{}{}, l.api.DeletePlaylist(ctx, in.UID, in.PlstID)
			},
			Invalidates: func(in PlaylistInput, _ struct{}) []query.Key {
				return []query.Key{
					PlaylistsKey(in.UID),
					PlaylistPrefix(in.PlstID),
					FollowedKey(in.UID),
					ProfileKey(in.UID),
					{"playlist-search"},
				}
			},
		},
		Follow: &query.Mutation[FollowInput, struct{}]{
			Cache: l.cache,
			Do: func(ctx context.Context, in FollowInput) (struct{}, error) {
				if in.On {
					return struct{}{}, l.api.FollowPlaylist(ctx, in.UID, in.PlstID)
				}
				return struct{}{}, l.api.UnfollowPlaylist(ctx, in.UID, in.PlstID)
			},
			Invalidates: func(in FollowInput, _ struct{}) []query.Key {
				return []query.Key{FollowedKey(in.UID), PlaylistPrefix(in.PlstID)}
			},
		},
		UpdateProfile: &query.Mutation[ProfileInput, models.UserProfile]{
			Cache: l.cache,
			Do: func(ctx context.Context, in ProfileInput) (models.UserProfile, error) {
				return l.api.UpdateProfile(ctx, in.UID, in.Update)
			},
			Writes: func(in ProfileInput, out models.UserProfile) []query.Write {
				return []query.Write{{Key: ProfileKey(in.UID), Data: out}}
			},
			OnSuccess: func(_ context.Context, in ProfileInput, out models.UserProfile) {
				l.syncSessionProfile(in.UID, out)
			},
		},
		UpgradeVIP: &query.Mutation[VIPInput, struct{}]{
			Cache: l.cache,
			Do: func(ctx context.Context, in VIPInput) (struct{}, error) {
				return struct{}{}, l.api.UpgradeVIP(ctx, in.Session.User.UID, in.Session.Token)
			},
			Invalidates: func(in VIPInput, _ struct{}) []query.Key {
				return []query.Key{ProfileKey(in.Session.User.UID)}
			},
			OnSuccess: func(_ context.Context, in VIPInput, _ struct{}) {
				if err := l.session.Replace(in.Session.WithVIP()); err != nil {
					l.logger.Error("failed to persist VIP status", "error", err)
				}
			},
		},
		Login: &query.Mutation[models.Credentials, models.Session]{
			Do: func(ctx context.Context, creds models.Credentials) (models.Session, error) {
				sess, err := l.api.Login(ctx, creds)
				if err != nil {
					return models.Session{}, err
				}
				return sess, l.begin(sess)
			},
		},
		Signup: &query.Mutation[models.Credentials, models.Session]{
			Do: func(ctx context.Context, creds models.Credentials) (models.Session, error) {
				sess, err := l.api.Signup(ctx, creds)
				if err != nil {
					return models.Session{}, err
				}
				return sess, l.begin(sess)
			},
		},
	}
}

// confirmRating refetches the own-rating read so the server's value replaces the write echo, then
// drops the guess. A failed refetch leaves the echo in the cache.
func (l *Library) confirmRating(ctx context.Context, in RateInput, _ models.Rating) {
	if _, err := query.Refetch(ctx, l.cache, l.userRatingOptions(in.SID, in.UID)); err != nil {
		l.logger.Debug("rating refetch failed, keeping write echo", "sid", in.SID, "error", err)
	}
	l.ratings.Discard(in.SID)
}

// syncSessionProfile keeps the session's display fields in line with an edited profile.
func (l *Library) syncSessionProfile(uid string, p models.UserProfile) {
	sess := l.session.Session()
	if sess == nil || sess.User.UID != uid {
		return
	}
	next := *sess
	if p.Username != "" {
		next.User.Username = p.Username
	}
	if p.Email != "" {
		next.User.Email = p.Email
	}
	if next.User == sess.User {
		return
	}
	if err := l.session.Replace(next); err != nil {
		l.logger.Error("failed to persist profile change", "error", err)
	}
}

func (l *Library) requireSession(msg string) (models.Session, error) {
	sess := l.session.Session()
	if !sess.Valid() {
		return models.Session{}, fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, services.NewValidationError("%s", msg))
	}
	return *sess, nil
}

// RateSong rates sid for the current user. While the write is in flight [Library.DisplayRating]
// shows value.
func (l *Library) RateSong(ctx context.Context, sid string, value int) (models.Rating, error) {
	sess, err := l.requireSession("Login required to rate")
	if err != nil {
		return models.Rating{}, err
	}
	return l.Mutations.Rate.Mutate(ctx, RateInput{UID: sess.User.UID, SID: sid, Value: value})
}

// Favorite adds sid to the current user's favorites.
func (l *Library) Favorite(ctx context.Context, sid string) error {
	return l.toggleFavorite(ctx, sid, true)
}

// Unfavorite removes sid from the current user's favorites.
func (l *Library) Unfavorite(ctx context.Context, sid string) error {
	return l.toggleFavorite(ctx, sid, false)
}

func (l *Library) toggleFavorite(ctx context.Context, sid string, on bool) error {
	sess, err := l.requireSession("Log in to favorite songs")
	if err != nil {
		return err
	}
	_, err = l.Mutations.Favorite.Mutate(ctx, FavoriteInput{UID: sess.User.UID, SID: sid, On: on})
	return err
}

// AddToPlaylist appends sid to a playlist and returns its position.
func (l *Library) AddToPlaylist(ctx context.Context, plstid int, sid string) (int, error) {
	sess, err := l.requireSession("Log in to add songs to playlists")
	if err != nil {
		return 0, err
	}
	return l.Mutations.AddToPlaylist.Mutate(ctx, PlaylistSongInput{UID: sess.User.UID, PlstID: plstid, SID: sid})
}

// CreatePlaylist creates a playlist and returns its id.
func (l *Library) CreatePlaylist(ctx context.Context, in models.NewPlaylist) (int, error) {
	sess, err := l.requireSession("Log in to create playlists")
	if err != nil {
		return 0, err
	}
	return l.Mutations.CreatePlaylist.Mutate(ctx, CreatePlaylistInput{UID: sess.User.UID, Playlist: in})
}

// DeletePlaylist deletes one of the current user's playlists.
func (l *Library) DeletePlaylist(ctx context.Context, plstid int) error {
	sess, err := l.requireSession("Log in to delete playlists")
	if err != nil {
		return err
	}
	_, err = l.Mutations.DeletePlaylist.Mutate(ctx, PlaylistInput{UID: sess.User.UID, PlstID: plstid})
	return err
}

// Follow follows a playlist.
func (l *Library) Follow(ctx context.Context, plstid int) error {
	return l.toggleFollow(ctx, plstid, true)
}

// Unfollow stops following a playlist.
func (l *Library) Unfollow(ctx context.Context, plstid int) error {
	return l.toggleFollow(ctx, plstid, false)
}

func (l *Library) toggleFollow(ctx context.Context, plstid int, on bool) error {
	sess, err := l.requireSession("Log in to follow playlists")
	if err != nil {
		return err
	}
	_, err = l.Mutations.Follow.Mutate(ctx, FollowInput{UID: sess.User.UID, PlstID: plstid, On: on})
	return err
}

// UpdateProfile edits the current user's profile. The response replaces the cached profile directly.
func (l *Library) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.UserProfile, error) {
	sess, err := l.requireSession("Log in to edit your profile")
	if err != nil {
		return models.UserProfile{}, err
	}
	return l.Mutations.UpdateProfile.Mutate(ctx, ProfileInput{UID: sess.User.UID, Update: update})
}

// UpgradeVIP promotes the current user and marks the session as VIP.
func (l *Library) UpgradeVIP(ctx context.Context) error {
	sess, err := l.requireSession("Log in to upgrade")
	if err != nil {
		return err
	}
	if sess.User.IsVIP {
		return nil
	}
	_, err = l.Mutations.UpgradeVIP.Mutate(ctx, VIPInput{Session: sess})
	return err
}

// Login authenticates, replaces the session and drops every cached read of the previous user.
func (l *Library) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	return l.Mutations.Login.Mutate(ctx, creds)
}

// Signup creates an account and logs in as it.
func (l *Library) Signup(ctx context.Context, creds models.Credentials) (models.Session, error) {
	return l.Mutations.Signup.Mutate(ctx, creds)
}

func (l *Library) begin(sess models.Session) error {
	if err := l.session.Replace(sess); err != nil {
		return err
	}
	l.reset()
	l.logger.Info("logged in", "uid", sess.User.UID)
	return nil
}

// Logout clears the session and every cached read.
func (l *Library) Logout() error {
	err := l.session.Clear()
	l.reset()
	return err
}

func (l *Library) reset() {
	l.cache.Clear()
	l.ratings.Reset()
}

// IsNotAuthenticated reports whether err came from an operation that needs a login.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated)
}
