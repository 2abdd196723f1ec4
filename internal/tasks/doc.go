// Package tasks is the data layer consumed by the CLI and TUI.
//
// # Library
//
// [Library] binds the API client, the query cache and the session together. Each read names its
// cache key (see keys.go), fresh window and enabled rule:
//
//   - Song search is disabled for a blank query and yields an empty page.
//   - Reads scoped to the current user are disabled while logged out.
//   - Reads of a missing id (playlist, album, artist) are disabled.
//
// # Writes
//
// Every write is a [query.Mutation] in [Mutations]. After success the cache is updated in a fixed
// order: direct writes, then invalidation, then reconciliation. The invalidation table:
//
//   - Rate: own rating is written, song detail and average ratings refetch, then the optimistic
//     rating is confirmed from a fresh read of the own rating.
//   - Favorite / unfavorite: favorites, song detail and profile.
//   - Add to playlist: that playlist and the owner's playlists.
//   - Create / delete playlist: the owner's playlists, profile and playlist search
//     (delete also drops the playlist and followed playlists).
//   - Follow / unfollow: followed playlists and that playlist.
//   - Profile update: the profile entry is replaced by the response.
//   - VIP upgrade: the session gains the VIP flag and the profile refetches.
//
// Login, signup and logout replace or clear the session and drop the whole cache.
//
// # Long-running operations
//
// [Library.Snapshot] and [Library.ExportPlaylists] report progress on a channel.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced
// UI rendering. Updates use select with default to prevent blocking.
package tasks
