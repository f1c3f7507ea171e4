package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/formatter"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format
	OutputDir  string // Defaults to groove_export_{epoch}
	NumWorkers int    // Concurrent writers, defaults to 4 and is capped at 10
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string `json:"playlistId"`
	PlaylistName string `json:"playlistName"`
	Tracks       int    `json:"tracks"`
	File         string `json:"file,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Success reports whether the playlist was written.
func (r PlaylistExportResult) Success() bool {
	return r.Error == ""
}

// BulkExportResult summarizes a bulk export. Results are ordered like the input playlists.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"totalPlaylists"`
	SuccessfulExports int                    `json:"successfulExports"`
	FailedExports     int                    `json:"failedExports"`
	Format            formatter.Format       `json:"format"`
	OutputDirectory   string                 `json:"outputDirectory"`
	ManifestPath      string                 `json:"-"`
	ExportedAt        time.Time              `json:"exportedAt"`
	Results           []PlaylistExportResult `json:"results"`
}

type exportJob struct {
	index    int
	playlist models.Playlist
}

// Exporter writes playlists to disk.
type Exporter struct {
	logger *log.Logger
	now    func() time.Time
}

// NewExporter creates an Exporter.
func NewExporter(logger *log.Logger) *Exporter {
	return &Exporter{
		logger: shared.WithLogger(logger, "component", "export"),
		now:    time.Now,
	}
}

// BulkExport writes every playlist to its own file under opts.OutputDir and records a manifest.
//
// Individual failures are reported in the result and do not stop the export. prog may be nil;
// updates are dropped when the receiver is not ready.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, playlists []models.Playlist, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("groove_export_%d", e.now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(playlists)
	result := &BulkExportResult{
		TotalPlaylists:  total,
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		ExportedAt:      e.now(),
		Results:         make([]PlaylistExportResult, total),
	}

	jobs := make(chan exportJob)
	done := make(chan exportJob, total)

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result.Results[job.index] = e.exportOne(job.playlist, opts)
				done <- job
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, p := range playlists {
			e.sendProgress(prog, exportingPlaylistUpdate(i+1, total, p.Name))
			select {
			case jobs <- exportJob{index: i, playlist: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for job := range done {
		completed++
		res := result.Results[job.index]
		if res.Success() {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, total, res.PlaylistName, res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, total, res.PlaylistName, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export cancelled after %d of %d playlists: %w", completed, total, err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, manifestUpdate(manifestPath))

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := formatter.WriteExport(manifestPath, data); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export complete", "dir", opts.OutputDir, "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

func (e *Exporter) exportOne(p models.Playlist, opts BulkExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{
		PlaylistID:   p.ID,
		PlaylistName: p.Name,
		Tracks:       len(p.Tracks),
	}

	data, err := formatter.Playlist(opts.Format, p)
	if err != nil {
		res.Error = fmt.Sprintf("format failed: %v", err)
		return res
	}

	path := filepath.Join(opts.OutputDir, fileName(p)+opts.Format.Extension())
	if err := formatter.WriteExport(path, data); err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = path
	return res
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// fileName derives a stable file name from the playlist's name and id.
func fileName(p models.Playlist) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(p.Name), "-"), "-")
	if slug == "" {
		return p.ID
	}
	return slug + "_" + p.ID
}

// sendProgress sends a progress update without blocking.
func (e *Exporter) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
