package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/session"
	"github.com/desertthunder/resonate/internal/shared"
	"github.com/desertthunder/resonate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	storage    session.Storage
	api        *services.Client
	library    *tasks.Library
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	// Storage persists the session. Without it commands that need the library are unavailable.
	Storage    session.Storage
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		storage:    opts.Storage,
		api:        services.NewClient(opts.Config.API, opts.HTTPClient, opts.Logger),
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}

	if opts.Storage != nil {
		lib, err := r.newLibrary(opts.Storage)
		if err != nil {
			r.logger.Warn("session unavailable", "error", err)
		}
		r.library = lib
	}
	return r
}

func (r *Runner) newLibrary(storage session.Storage) (*tasks.Library, error) {
	sc, err := session.NewContext(session.NewStore(storage, r.logger))
	if err != nil {
		return nil, err
	}
	sc.OnChange(func(prev, next *models.Session) {
		switch {
		case next == nil:
			r.logger.Debug("session cleared")
		case prev == nil || prev.User.UID != next.User.UID:
			r.logger.Debug("session started", "uid", next.User.UID)
		default:
			r.logger.Debug("session updated", "uid", next.User.UID, "vip", next.User.IsVIP)
		}
	})

	cache := query.NewCache(r.logger)
	cache.Subscribe(func(ev query.Event) {
		r.logger.Debug("cache", "event", ev.Type.String(), "key", ev.Key.String())
	})

	return tasks.NewLibrary(r.api, cache, sc, r.config.Cache, r.logger), nil
}

// lib returns the library or [shared.ErrServiceUnavailable] when no session storage was configured.
func (r *Runner) lib() (*tasks.Library, error) {
	if r.library == nil {
		return nil, fmt.Errorf("%w: local storage not initialized, run 'resonate setup'", shared.ErrServiceUnavailable)
	}
	return r.library, nil
}

// SetLogger replaces the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, songsCommand, favoritesCommand, playlistsCommand,
		usersCommand, chartsCommand, recommendationsCommand, albumsCommand, artistsCommand,
		snapshotCommand, apiCommand, storageCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// render writes data as JSON when asked, otherwise through plain.
func (r *Runner) render(cmd *cli.Command, data any, plain func() error) error {
	if cmd.Bool("json") {
		return r.writeJSON(data, cmd.Bool("pretty"))
	}
	return plain()
}
