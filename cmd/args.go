package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: <%s> is required", shared.ErrMissingArgument, name)
	}
	return v, nil
}

func parsePlaylistID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: playlist id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func playlistIDArg(cmd *cli.Command) (int, error) {
	raw, err := requireArg(cmd, "plstid")
	if err != nil {
		return 0, err
	}
	return parsePlaylistID(raw)
}

// requireLogin fails reads that are disabled while logged out, instead of printing an empty list.
func requireLogin(lib *tasks.Library, action string) error {
	if lib.Session() == nil {
		return fmt.Errorf("%w: log in to %s", shared.ErrNotAuthenticated, action)
	}
	return nil
}
