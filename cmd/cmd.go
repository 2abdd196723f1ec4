// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func withOutputFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, outputFlags()...)
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file, initialize local storage and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, sign up and manage the local session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("RESONATE_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create an account and log in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("RESONATE_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Clear the local session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is logged in",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "vip",
				Usage:  "Upgrade the current account to VIP",
				Action: r.AuthVIP,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search songs by name, artist or album",
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Flags: withOutputFlags(
			&cli.IntFlag{Name: "page", Usage: "Result page, starting at 1", Value: 1},
			&cli.IntFlag{Name: "page-size", Usage: "Results per page", Value: tasks.DefaultPageSize},
			&cli.BoolFlag{Name: "ratings", Usage: "Show your own rating next to each result"},
		),
		Action: r.Search,
	}
}

func songsCommand(r *Runner) *cli.Command {
	sidArg := []cli.Argument{&cli.StringArg{Name: "sid"}}
	return &cli.Command{
		Name:  "songs",
		Usage: "Song details, ratings and favorites",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a song with its rating aggregate",
				Arguments: sidArg,
				Flags:     outputFlags(),
				Action:    r.SongShow,
			},
			{
				Name:      "rate",
				Usage:     "Rate a song from 1 to 5",
				Arguments: []cli.Argument{&cli.StringArg{Name: "sid"}, &cli.StringArg{Name: "value"}},
				Action:    r.SongRate,
			},
			{
				Name:      "favorite",
				Aliases:   []string{"fav"},
				Usage:     "Add a song to your favorites",
				Arguments: sidArg,
				Action:    r.SongFavorite,
			},
			{
				Name:      "unfavorite",
				Aliases:   []string{"unfav"},
				Usage:     "Remove a song from your favorites",
				Arguments: sidArg,
				Action:    r.SongUnfavorite,
			},
			{
				Name:      "open",
				Usage:     "Open the song page in the browser",
				Arguments: sidArg,
				Action:    r.SongOpen,
			},
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "favorites",
		Usage: "List your favorite songs",
		Flags: withOutputFlags(
			&cli.BoolFlag{Name: "csv", Usage: "Output CSV"},
		),
		Action: r.Favorites,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "plstid"}}
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage, follow and export playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the playlists you own",
				Flags:  outputFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its songs",
				Arguments: idArg,
				Flags:     outputFlags(),
				Action:    r.PlaylistShow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Playlist name", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
					&cli.StringFlag{Name: "visibility", Usage: "public, private or unlisted", Value: "public"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist you own",
				Arguments: idArg,
				Action:    r.PlaylistDelete,
			},
			{
				Name:      "add",
				Usage:     "Add a song to a playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "plstid"}, &cli.StringArg{Name: "sid"}},
				Action:    r.PlaylistAdd,
			},
			{
				Name:   "followed",
				Usage:  "List playlists you follow",
				Flags:  outputFlags(),
				Action: r.PlaylistsFollowed,
			},
			{
				Name:      "follow",
				Usage:     "Follow a playlist",
				Arguments: idArg,
				Action:    r.PlaylistFollow,
			},
			{
				Name:      "unfollow",
				Usage:     "Stop following a playlist",
				Arguments: idArg,
				Action:    r.PlaylistUnfollow,
			},
			{
				Name:      "search",
				Usage:     "Search public playlists",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     outputFlags(),
				Action:    r.PlaylistSearch,
			},
			{
				Name:      "open",
				Usage:     "Open the playlist page in the browser",
				Arguments: idArg,
				Action:    r.PlaylistOpen,
			},
			{
				Name:  "export",
				Usage: "Export playlists to files (all owned playlists by default)",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "id", Usage: "Playlist id to export (repeatable)"},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown, txt",
						Value:   formatter.FormatJSON,
					},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent file writers", Value: 5},
					&cli.FloatFlag{Name: "rate", Usage: "Playlist reads per second", Value: 5},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User profiles",
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show a profile (yours by default)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "uid"}},
				Flags:     outputFlags(),
				Action:    r.UserShow,
			},
			{
				Name:  "update",
				Usage: "Update your profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "New username"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "gender", Usage: "Gender"},
					&cli.IntFlag{Name: "age", Usage: "Age"},
					&cli.StringFlag{Name: "street", Usage: "Street"},
					&cli.StringFlag{Name: "city", Usage: "City"},
					&cli.StringFlag{Name: "province", Usage: "Province"},
					&cli.StringFlag{Name: "mbti", Usage: "MBTI type"},
					&cli.StringSliceFlag{Name: "hobby", Usage: "Hobby (repeatable, replaces the list)"},
				},
				Action: r.UserUpdate,
			},
		},
	}
}

func chartsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "charts",
		Usage: "Weekly rankings and rating averages",
		Commands: []*cli.Command{
			{
				Name:   "ranking",
				Usage:  "Most favorited songs per week",
				Flags:  outputFlags(),
				Action: r.ChartsRanking,
			},
			{
				Name:   "ratings",
				Usage:  "Average rating per song",
				Flags:  outputFlags(),
				Action: r.ChartsRatings,
			},
		},
	}
}

func recommendationsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommendations",
		Aliases: []string{"recs"},
		Usage:   "Songs recommended from your playlists' tags",
		Flags:   outputFlags(),
		Action:  r.Recommendations,
	}
}

func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "album",
		Usage:     "List the songs on an album",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     outputFlags(),
		Action:    r.Album,
	}
}

func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "artist",
		Usage:     "List an artist's songs",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     outputFlags(),
		Action:    r.Artist,
	}
}

func snapshotCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Read your profile, playlists, favorites, follows and recommendations in one pass",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
			&cli.StringFlag{Name: "save", Usage: "Also write the snapshot to this file"},
		},
		Action: r.Snapshot,
	}
}

// apiCommand handles raw API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Resonate API",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output compact JSON"},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

func storageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "storage",
		Usage: "Inspect the local key/value storage",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored keys and when they were written",
				Flags:  outputFlags(),
				Action: r.StorageList,
			},
			{
				Name:      "remove",
				Usage:     "Remove a stored key",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Action:    r.StorageRemove,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse and rate songs interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log", Usage: "Log file while the TUI runs", Value: "./tmp/resonate-tui.log"},
		},
		Action: r.TUI,
	}
}
