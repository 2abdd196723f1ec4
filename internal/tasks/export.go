package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/resonate/internal/formatter"
	"github.com/desertthunder/resonate/internal/models"
	"github.com/desertthunder/resonate/internal/query"
	"github.com/desertthunder/resonate/internal/services"
	"github.com/desertthunder/resonate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultExportWorkers = 5
	maxExportWorkers     = 10
	defaultExportRate    = 5.0
	manifestName         = "export_manifest.json"
)

// ExportOpts contains configuration for playlist exports.
type ExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: resonate_export_{epoch})
	NumWorkers int     // Concurrent file writers (default: 5, max: 10)
	RateLimit  float64 // Playlist reads per second (default: 5)
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	PlstID       int
	PlaylistName string
	SongCount    int
	Files        []string
	Success      bool
	Error        error
}

// ExportResult summarizes an export run.
type ExportResult struct {
	Format            string
	OutputDirectory   string
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
	ManifestPath      string
}

// Manifest is the JSON written next to the exported files.
type Manifest struct {
	ExportedAt string          `json:"exported_at"`
	Format     string          `json:"format"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Playlists  []ManifestEntry `json:"playlists"`
}

// ManifestEntry is one playlist's line in a [Manifest].
type ManifestEntry struct {
	PlstID    int      `json:"plstid"`
	Name      string   `json:"name"`
	SongCount int      `json:"song_count"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Manifest builds the manifest for r, with file paths relative to the output directory.
func (r *ExportResult) Manifest(at time.Time) Manifest {
	m := Manifest{
		ExportedAt: at.UTC().Format(time.RFC3339),
		Format:     r.Format,
		Total:      r.TotalPlaylists,
		Succeeded:  r.SuccessfulExports,
		Failed:     r.FailedExports,
		Playlists:  make([]ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := ManifestEntry{PlstID: res.PlstID, Name: res.PlaylistName, SongCount: res.SongCount}
		for _, f := range res.Files {
			if rel, err := filepath.Rel(r.OutputDirectory, f); err == nil {
				f = rel
			}
			entry.Files = append(entry.Files, f)
		}
		if res.Error != nil {
			entry.Error = services.Message(res.Error)
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

type playlistExportJob struct {
	detail models.PlaylistDetail
}

// ExportPlaylists writes playlists to disk concurrently with rate-limited reads and progress tracking.
//
// With no ids every playlist the current user owns is exported. Reads go through the cache one at a
// time under the rate limit; a pool of workers writes the files. A playlist that fails to read or
// write is recorded and the rest continue. A manifest summarizing the run is written last.
func (l *Library) ExportPlaylists(ctx context.Context, progress chan<- ProgressUpdate, ids []int, opts ExportOpts) (*ExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if !slices.Contains(formatter.Formats, opts.Format) {
		return nil, fmt.Errorf("%w: format must be one of %v", shared.ErrInvalidFlag, formatter.Formats)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("resonate_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultExportWorkers
	}
	if opts.NumWorkers > maxExportWorkers {
		opts.NumWorkers = maxExportWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultExportRate
	}

	if len(ids) == 0 {
		var err error
		if ids, err = l.ownedPlaylistIDs(ctx, progress); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		TotalPlaylists:  len(ids),
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	total := len(ids)

	jobs := make(chan playlistExportJob, total)
	results := make(chan PlaylistExportResult, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go l.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// The producer reports read failures on results directly, so it counts toward wg as well.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, plstid := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(progress, fetchingPlaylistUpdate(i+1, total, plstid))
			res, err := query.Fetch(ctx, l.cache, l.playlistOptions(plstid))
			switch {
			case res.HasData && err != nil:
				l.logger.Warn("exporting cached playlist after refresh failed", "plstid", plstid, "error", err)
				err = nil
			case !res.HasData && err == nil:
				err = fmt.Errorf("%w: playlist %d", shared.ErrInvalidArgument, plstid)
			}
			if err != nil {
				results <- PlaylistExportResult{
					PlstID:       plstid,
					PlaylistName: fmt.Sprintf("Unknown (%d)", plstid),
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			jobs <- playlistExportJob{detail: res.Data}
			sendProgress(progress, exportingPlaylistUpdate(i+1, total, res.Data.Playlist.Name))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(progress, exportCompletedUpdate(completed, total, res))
		} else {
			result.FailedExports++
			sendProgress(progress, exportFailedUpdate(completed, total, res))
		}
	}

	slices.SortStableFunc(result.Results, func(a, b PlaylistExportResult) int {
		return slices.Index(ids, a.PlstID) - slices.Index(ids, b.PlstID)
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	if err := formatter.WriteJSON(result.Manifest(time.Now()), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	l.logger.Info("export finished", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

func (l *Library) ownedPlaylistIDs(ctx context.Context, progress chan<- ProgressUpdate) ([]int, error) {
	if !l.session.Authenticated() {
		return nil, fmt.Errorf("%w: log in to export your playlists", shared.ErrNotAuthenticated)
	}

	sendProgress(progress, fetchingPlaylistsUpdate())
	res, err := l.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(res.Data))
	for _, p := range res.Data {
		ids = append(ids, p.PlstID)
	}
	return ids, nil
}

// exportWorker writes playlists from the jobs channel until it closes or ctx ends.
func (l *Library) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan playlistExportJob,
	results chan<- PlaylistExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		p := job.detail.Playlist
		res := PlaylistExportResult{
			PlstID:       p.PlstID,
			PlaylistName: p.Name,
			SongCount:    len(job.detail.Songs),
		}

		files, err := formatter.WritePlaylist(&job.detail, opts.Format, opts.OutputDir)
		if err != nil {
			res.Error = err
		} else {
			res.Files = files
			res.Success = true
		}
		results <- res
	}
}
