package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search prints one page of song search results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	q, err := requireArg(cmd, "query")
	if err != nil {
		return err
	}

	res, err := lib.SearchSongs(ctx, q, int(cmd.Int("page")), int(cmd.Int("page-size")))
	if err != nil {
		return err
	}
	page := res.Data

	var ratings map[string]int
	if cmd.Bool("ratings") && lib.Session() != nil {
		if ratings, err = lib.SearchRatings(ctx, page); err != nil {
			return err
		}
	}

	return r.render(cmd, page, func() error {
		r.writePlain("%d results for %q (page %d)\n\n", page.Total, page.Query, page.Page)
		for i, song := range page.Items {
			line := fmt.Sprintf("%3d. %s - %s", (page.Page-1)*page.PageSize+i+1, song.ArtistName, song.SongName)
			if song.AlbumName != "" {
				line += fmt.Sprintf(" [%s]", song.AlbumName)
			}
			if v := ratings[song.SID]; v > 0 {
				line += " " + shared.Stars(v)
			}
			r.writePlain("%s  (%s)\n", line, song.SID)
		}
		if page.HasNext {
			r.writePlainln("More results: --page %d", page.Page+1)
		}
		return nil
	})
}

// SongShow prints a song's detail, with the viewer's rating when logged in.
func (r *Runner) SongShow(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sid, err := requireArg(cmd, "sid")
	if err != nil {
		return err
	}

	res, err := lib.Song(ctx, sid)
	if err != nil {
		return err
	}
	song := res.Data

	var own *models.Rating
	if lib.Session() != nil {
		rating, err := lib.UserRating(ctx, sid)
		if err != nil {
			r.logger.Warn("failed to load own rating", "sid", sid, "error", err)
		}
		own = rating.Data
	}

	data := map[string]any{"song": song, "rating": own}
	return r.render(cmd, data, func() error {
		r.writePlainHeader(song.Name)
		r.writePlain("ID:       %s\n", song.SID)
		r.writePlain("Artist:   %s\n", deref(song.ArtistName))
		r.writePlain("Album:    %s\n", deref(song.AlbumTitle))
		r.writePlain("Released: %s\n", deref(song.ReleaseDate))
		if song.Tags != nil {
			r.writePlain("Tags:     %s\n", *song.Tags)
		}
		r.writePlain("Average:  %s (%d ratings)\n", shared.FormatRating(song.AvgRating), song.RatingCount)
		if own != nil {
			r.writePlain("Yours:    %s\n", shared.Stars(own.Value))
		}
		return nil
	})
}

// SongRate rates a song.
func (r *Runner) SongRate(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sid, err := requireArg(cmd, "sid")
	if err != nil {
		return err
	}
	raw, err := requireArg(cmd, "value")
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: rating must be a number from %d to %d", shared.ErrInvalidArgument, models.MinRating, models.MaxRating)
	}

	rating, err := lib.RateSong(ctx, sid, value)
	if err != nil {
		return err
	}
	if v, ok := lib.DisplayRating(sid); ok {
		rating.Value = v
	}
	return r.writePlain("✓ Rated %s %s\n", sid, shared.Stars(rating.Value))
}

// SongFavorite adds a song to the viewer's favorites.
func (r *Runner) SongFavorite(ctx context.Context, cmd *cli.Command) error {
	return r.toggleFavorite(ctx, cmd, true)
}

// SongUnfavorite removes a song from the viewer's favorites.
func (r *Runner) SongUnfavorite(ctx context.Context, cmd *cli.Command) error {
	return r.toggleFavorite(ctx, cmd, false)
}

func (r *Runner) toggleFavorite(ctx context.Context, cmd *cli.Command, on bool) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	sid, err := requireArg(cmd, "sid")
	if err != nil {
		return err
	}

	if on {
		if err := lib.Favorite(ctx, sid); err != nil {
			return err
		}
		return r.writePlain("✓ Added %s to favorites\n", sid)
	}
	if err := lib.Unfavorite(ctx, sid); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s from favorites\n", sid)
}

// SongOpen opens the song page of the web app.
func (r *Runner) SongOpen(ctx context.Context, cmd *cli.Command) error {
	sid, err := requireArg(cmd, "sid")
	if err != nil {
		return err
	}

	target := shared.WebURL(r.config.API.WebURL, "songs", sid)
	r.logger.Info("opening browser", "url", target)
	if err := shared.OpenBrowser(target); err != nil {
		r.writePlain("Open %s in your browser\n", target)
		return err
	}
	return nil
}

// Favorites lists the viewer's favorites as a table, CSV or JSON.
func (r *Runner) Favorites(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}
	if err := requireLogin(lib, "see your favorites"); err != nil {
		return err
	}

	res, err := lib.Favorites(ctx)
	if err != nil {
		return err
	}
	favorites := res.Data

	if cmd.Bool("csv") {
		data, err := formatter.FavoritesToCSV(favorites)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	return r.render(cmd, favorites, func() error {
		r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(favorites)))
		for _, f := range favorites {
			r.writePlain("%s - %s [%s]  (%s)\n", f.ArtistNames, f.SongTitle, f.AlbumTitle, f.SID)
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
