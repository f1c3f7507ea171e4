package tasks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/groove/internal/formatter"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	tu "github.com/desertthunder/groove/internal/testing"
	"github.com/goccy/go-json"
)

func samplePlaylists(n int) []models.Playlist {
	playlists := make([]models.Playlist, 0, n)
	for i := range n {
		playlists = append(playlists, models.Playlist{
			ID:   "pl-" + string(rune('a'+i)),
			Name: "Mix " + string(rune('A'+i)),
			Tracks: []models.Track{
				{ID: "trk-1", Title: "Teardrop", Artist: "Massive Attack", Duration: 330},
			},
		})
	}
	return playlists
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()
	exporter := NewExporter(shared.NewLogger(&bytes.Buffer{}))

	t.Run("writes one file per playlist and a manifest", func(t *testing.T) {
		dir := t.TempDir()
		prog := make(chan ProgressUpdate, 64)

		result, err := exporter.BulkExport(ctx, prog, samplePlaylists(5), BulkExportOpts{
			Format:     formatter.FormatCSV,
			OutputDir:  dir,
			NumWorkers: 3,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalPlaylists != 5 || result.SuccessfulExports != 5 || result.FailedExports != 0 {
			t.Errorf("unexpected counts: %+v", result)
		}
		for i, res := range result.Results {
			if want := samplePlaylists(5)[i].ID; res.PlaylistID != want {
				t.Errorf("result %d: expected %s, got %s", i, want, res.PlaylistID)
			}
			if !strings.HasSuffix(res.File, ".csv") {
				t.Errorf("expected csv file, got %q", res.File)
			}
			tu.AssertFileExists(t, res.File)
		}

		tu.AssertFileExists(t, result.ManifestPath)
		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.SuccessfulExports != 5 || len(manifest.Results) != 5 {
			t.Errorf("unexpected manifest: %+v", manifest)
		}

		close(prog)
		var phases []Phase
		for u := range prog {
			phases = append(phases, u.Phase)
		}
		if len(phases) == 0 || phases[len(phases)-1] != WriteManifest {
			t.Errorf("expected manifest update last, got %v", phases)
		}
	})

	t.Run("file names are slugged", func(t *testing.T) {
		dir := t.TempDir()
		playlists := []models.Playlist{
			{ID: "pl-1", Name: "Late Night / Drive!"},
			{ID: "pl-2", Name: "***"},
		}

		result, err := exporter.BulkExport(ctx, nil, playlists, BulkExportOpts{Format: formatter.FormatMarkdown, OutputDir: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := filepath.Base(result.Results[0].File); got != "late-night-drive_pl-1.md" {
			t.Errorf("unexpected file name %q", got)
		}
		if got := filepath.Base(result.Results[1].File); got != "pl-2.md" {
			t.Errorf("unexpected file name %q", got)
		}
	})

	t.Run("write failures are collected", func(t *testing.T) {
		dir := t.TempDir()
		playlists := samplePlaylists(2)

		blocker := filepath.Join(dir, "mix-a_pl-a.json")
		if err := os.Mkdir(blocker, 0755); err != nil {
			t.Fatalf("failed to create blocker: %v", err)
		}

		result, err := exporter.BulkExport(ctx, nil, playlists, BulkExportOpts{Format: formatter.FormatJSON, OutputDir: dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected one success and one failure, got %+v", result)
		}
		if result.Results[0].Success() || result.Results[0].Error == "" {
			t.Errorf("expected first playlist to fail, got %+v", result.Results[0])
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := exporter.BulkExport(cctx, nil, samplePlaylists(3), BulkExportOpts{OutputDir: t.TempDir()})
		if err == nil {
			t.Error("expected cancellation error")
		}
	})

	t.Run("empty input still writes manifest", func(t *testing.T) {
		result, err := exporter.BulkExport(ctx, nil, nil, BulkExportOpts{OutputDir: t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.TotalPlaylists != 0 {
			t.Errorf("expected zero playlists, got %d", result.TotalPlaylists)
		}
		tu.AssertFileExists(t, result.ManifestPath)
	})
}
