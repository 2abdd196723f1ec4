package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/resonate/internal/repositories"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	if level, err := shared.ParseLogLevel(config.Log.Level); err == nil {
		shared.SetLogLevel(logger, level)
	} else {
		logger.Warn("ignoring log level", "error", err)
	}

	var storage session.Storage
	if db, err := shared.OpenStorage(config.Database); err == nil {
		defer db.Close()
		storage = repositories.NewLocalStorage(db)
	} else {
		logger.Warn("local storage unavailable, sessions will not persist", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Storage:    storage,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "resonate",
		Usage:    "Search, rate and organize music from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		var reqErr *services.RequestError
		switch {
		case tasks.IsNotAuthenticated(err):
			logger.Error(services.Message(err))
			logger.Info("run 'resonate auth login' first")
			os.Exit(1)
		case errors.As(err, &reqErr):
			logger.Error(services.Message(err), "kind", reqErr.Kind.String())
			os.Exit(1)
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
