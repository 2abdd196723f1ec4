package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Snapshot reads everything about the viewer in one pass and prints it as JSON.
//
// A failed read is reported inline and in the errors list; the rest of the snapshot is still written.
func (r *Runner) Snapshot(ctx context.Context, cmd *cli.Command) error {
	lib, err := r.lib()
	if err != nil {
		return err
	}

	r.logger.Info("taking snapshot")
	r.writePlain("Reading your library...\n\n")

	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s %s\n", phaseIcon(update.Phase), update.Message)
		}
	}()

	result, err := lib.Snapshot(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		r.writePlain("✗ %s: %s\n", e.Endpoint, services.Message(e.Error))
	}
	r.writePlain("\n✓ Snapshot complete\n\n")

	data := result.Data()
	if path := cmd.String("save"); path != "" {
		if err := formatter.WriteJSON(data, path); err != nil {
			r.logger.Warn("failed to save snapshot", "error", err)
		} else {
			r.logger.Info("snapshot saved", "file", path)
			r.writePlain("✓ Snapshot saved to %s\n\n", path)
		}
	}

	if err := r.writeJSON(data, cmd.Bool("pretty")); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func phaseIcon(p tasks.Phase) string {
	switch p {
	case tasks.FetchProfile:
		return "👤"
	case tasks.FetchPlaylists:
		return "📝"
	case tasks.FetchFavorites:
		return "❤️ "
	case tasks.FetchFollowed:
		return "➕"
	case tasks.FetchRecommendations:
		return "🎵"
	default:
		return "•"
	}
}
