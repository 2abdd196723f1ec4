package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints the playlists the viewer owns.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}
	if err := requireLogin(lib, "see your playlists"); err != nil {
		return err
	}

	res, err := lib.Playlists(ctx)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader(fmt.Sprintf("Your playlists (%d)", len(res.Data)))
		r.writePlaylists(res.Data)
		return nil
	})
}

func (r *Runner) writePlaylists(playlists []models.Playlist) {
	for _, p := range playlists {
		r.writePlain("%6d  %s (%s)\n", p.PlstID, p.Name, shared.VisibilityString(p.Visibility))
		if p.Description != "" {
			r.writePlain("        %s\n", p.Description)
		}
	}
}

// PlaylistShow prints a playlist with its songs in order.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	plstid, err := playlistIDArg(cmd)
	if err != nil {
		return err
	}

	res, err := lib.Playlist(ctx, plstid)
	if err != nil {
		return err
	}
	detail := res.Data

	return r.render(cmd, detail, func() error {
		p := detail.Playlist
		r.writePlainHeader(p.Name)
		if p.Description != "" {
			r.writePlain("%s\n", p.Description)
		}
		r.writePlain("Visibility: %s · %d songs\n\n", shared.VisibilityString(p.Visibility), len(detail.Songs))
		for _, s := range detail.Songs {
			r.writePlain("%3d. %s - %s  (%s)\n", s.Position, s.ArtistName, s.SongName, s.SID)
		}
		return nil
	})
}

// PlaylistCreate creates a playlist owned by the viewer.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	plstid, err := lib.CreatePlaylist(ctx, models.NewPlaylist{
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
		Visibility:  cmd.String("visibility"),
	})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created playlist %d\n", plstid)
}

// PlaylistDelete deletes one of the viewer's playlists.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	plstid, err := playlistIDArg(cmd)
	if err != nil {
		return err
	}

	if err := lib.DeletePlaylist(ctx, plstid); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted playlist %d\n", plstid)
}

// PlaylistAdd appends a song to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	plstid, err := playlistIDArg(cmd)
	if err != nil {
		return err
	}
	sid, err := requireArg(cmd, "sid")
	if err != nil {
		return err
	}

	position, err := lib.AddToPlaylist(ctx, plstid, sid)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to playlist %d at position %d\n", sid, plstid, position)
}

// PlaylistsFollowed prints the playlists the viewer follows.
func (r *Runner) PlaylistsFollowed(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}
	if err := requireLogin(lib, "see followed playlists"); err != nil {
		return err
	}

	res, err := lib.Followed(ctx)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader(fmt.Sprintf("Followed playlists (%d)", len(res.Data)))
		for _, p := range res.Data {
			r.writePlain("%6d  %s (followed %s)\n", p.PlstID, p.Name, p.FollowedAt)
		}
		return nil
	})
}

// PlaylistFollow follows a playlist.
func (r *Runner) PlaylistFollow(ctx context.Context, cmd *cli.Command) error {
	return r.toggleFollow(ctx, cmd, true)
}

// PlaylistUnfollow stops following a playlist.
func (r *Runner) PlaylistUnfollow(ctx context.Context, cmd *cli.Command) error {
	return r.toggleFollow(ctx, cmd, false)
}

func (r *Runner) toggleFollow(ctx context.Context, cmd *cli.Command, on bool) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	plstid, err := playlistIDArg(cmd)
	if err != nil {
		return err
	}

	if on {
		if err := lib.Follow(ctx, plstid); err != nil {
			return err
		}
		return r.writePlain("✓ Following playlist %d\n", plstid)
	}
	if err := lib.Unfollow(ctx, plstid); err != nil {
		return err
	}
	return r.writePlain("✓ Unfollowed playlist %d\n", plstid)
}

// PlaylistSearch searches playlists visible to the viewer.
func (r *Runner) PlaylistSearch(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	q, err := requireArg(cmd, "query")
	if err != nil {
		return err
	}

	res, err := lib.SearchPlaylists(ctx, q)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader(fmt.Sprintf("%d playlists match %q", len(res.Data), q))
		r.writePlaylists(res.Data)
		return nil
	})
}

// PlaylistOpen opens the playlist page of the web app.
func (r *Runner) PlaylistOpen(ctx context.Context, cmd *cli.Command) error {
	plstid, err := playlistIDArg(cmd)
	if err != nil {
		return err
	}

	target := shared.WebURL(r.config.API.WebURL, "playlists", strconv.Itoa(plstid))
	r.logger.Info("opening browser", "url", target)
	if err := shared.OpenBrowser(target); err != nil {
		r.writePlain("Open %s in your browser\n", target)
		return err
	}
	return nil
}

// PlaylistExport writes playlists to disk, printing progress as it goes.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	var ids []int
	for _, raw := range cmd.StringSlice("id") {
		id, err := parsePlaylistID(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	opts := tasks.ExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  float64(cmd.Float("rate")),
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.FetchPlaylists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.FetchPlaylist:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			case tasks.ExportPlaylist:
				r.writePlain("   [%d/%d] %s\n", update.Step, update.Total, update.Message)
			}
		}
	}()

	result, err := lib.ExportPlaylists(ctx, progress, ids, opts)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Format: %s\n", result.Format)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)

	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d playlists:\n", result.FailedExports)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %s\n", res.PlaylistName, services.Message(res.Error))
			}
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("\nManifest: %s\n", result.ManifestPath)
	}
	return nil
}
