package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive song browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.lib(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	// The library and client bind their loggers when built, so rebuild them on the file logger.
	r.api = services.NewClient(r.config.API, r.httpClient, fileLogger)
	lib, err := r.newLibrary(r.storage)
	if err != nil {
		return err
	}
	r.library = lib

	model := ui.NewModel(ctx, lib)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	lib.Cache().Wait()
	return nil
}
