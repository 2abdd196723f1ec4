package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// ChartsRanking prints the weekly favorites chart.
func (r *Runner) ChartsRanking(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	res, err := lib.WeeklyRanking(ctx)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader("Weekly ranking")
		week := -1
		for _, row := range res.Data {
			if row.YearWeek != week {
				week = row.YearWeek
				r.writePlainln("%d, week %d", row.Year(), row.Week())
			}
			r.writePlain("%3d. %s [%s] ♥ %d\n", row.RankInWeek, row.SongTitle, deref(row.AlbumTitle), row.FavCount)
		}
		return nil
	})
}

// ChartsRatings prints the average rating of every rated song.
func (r *Runner) ChartsRatings(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	res, err := lib.AverageRatings(ctx)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader("Average ratings")
		for _, row := range res.Data {
			avg := row.AvgRating
			r.writePlain("%s  %s - %s (%d ratings)\n", shared.FormatRating(&avg), row.ArtistName, row.SongName, row.RatingCount)
		}
		return nil
	})
}

// Recommendations prints songs recommended for the viewer.
func (r *Runner) Recommendations(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}
	if err := requireLogin(lib, "get recommendations"); err != nil {
		return err
	}

	res, err := lib.Recommendations(ctx)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		r.writePlainHeader(fmt.Sprintf("Recommended for you (%d)", len(res.Data)))
		for i, rec := range res.Data {
			r.writePlain("%3d. %s  score %.2f · %d matching tags · avg %.1f  (%s)\n",
				i+1, rec.Name, rec.RecommendationScore, rec.MatchedTags, rec.AvgRating, rec.SID)
		}
		return nil
	})
}

// Album prints the songs on an album.
func (r *Runner) Album(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	res, err := lib.AlbumSongs(ctx, id)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		title := "Album " + id
		if len(res.Data) > 0 && res.Data[0].AlbumTitle != nil {
			title = *res.Data[0].AlbumTitle
		}
		r.writePlainHeader(title)
		for i, s := range res.Data {
			n := i + 1
			if s.TrackNo != nil {
				n = *s.TrackNo
			}
			r.writePlain("%3d. %s - %s  (%s)\n", n, s.ArtistName, s.SongName, s.SID)
		}
		return nil
	})
}

// Artist prints an artist's songs.
func (r *Runner) Artist(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}

	res, err := lib.ArtistSongs(ctx, id)
	if err != nil {
		return err
	}

	return r.render(cmd, res.Data, func() error {
		title := "Artist " + id
		if len(res.Data) > 0 {
			title = res.Data[0].ArtistName
		}
		r.writePlainHeader(title)
		for _, s := range res.Data {
			r.writePlain("%s [%s]  (%s)\n", s.SongTitle, s.AlbumTitle, s.SID)
		}
		return nil
	})
}
