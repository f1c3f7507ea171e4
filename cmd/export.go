package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/groove/internal/formatter"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/desertthunder/groove/internal/tasks"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// emit writes rendered export data to --output, or to the runner's output when unset.
func (r *Runner) emit(cmd *cli.Command, data []byte) error {
	path := cmd.String("output")
	if path == "" {
		_, err := r.output.Write(data)
		return err
	}

	if err := formatter.WriteExport(path, data); err != nil {
		return err
	}
	r.logger.Info("export written", "path", path, "bytes", len(data))
	r.writePlain("✓ Exported to %s\n", path)
	return nil
}

func (r *Runner) exportTracks(cmd *cli.Command, title string, tracks []models.Track) error {
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	data, err := formatter.Tracks(f, title, tracks)
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", f, err)
	}
	return r.emit(cmd, data)
}

// ExportHistory exports recently played tracks.
func (r *Runner) ExportHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	return r.exportTracks(cmd, "Recently Played", r.sync.GetRecentlyPlayed(ctx))
}

// ExportFavorites exports favorite tracks.
func (r *Runner) ExportFavorites(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}
	return r.exportTracks(cmd, "Favorites", r.sync.GetFavorites(ctx))
}

// ExportPlaylist exports one playlist.
func (r *Runner) ExportPlaylist(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	playlistID, err := requireArg(cmd, "playlist-id")
	if err != nil {
		return err
	}
	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	id := r.sync.ResolveID(playlistID)
	for _, p := range r.sync.GetPlaylists(ctx) {
		if p.ID != id && p.ID != playlistID {
			continue
		}

		data, err := formatter.Playlist(f, p)
		if err != nil {
			return fmt.Errorf("failed to format %s: %w", f, err)
		}
		return r.emit(cmd, data)
	}
	return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

// ExportAll writes every playlist to its own file, printing progress as files land.
func (r *Runner) ExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	playlists := r.sync.GetPlaylists(ctx)
	prog := make(chan tasks.ProgressUpdate, 2*len(playlists)+1)

	result, err := tasks.NewExporter(r.logger).BulkExport(ctx, prog, playlists, tasks.BulkExportOpts{
		Format:     f,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
	})
	close(prog)
	for u := range prog {
		if u.Phase == tasks.ExportPlaylist {
			r.writePlain("%s\n", u.Message)
		}
	}
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d playlist exports failed, see %s", result.FailedExports, result.ManifestPath)
	}
	return nil
}

// ExportPlays exports the local play log. Requires the sqlite cache backend.
func (r *Runner) ExportPlays(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	if r.playLog == nil {
		return fmt.Errorf("%w: the play log requires the sqlite cache backend", shared.ErrCacheUnavailable)
	}

	f, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{"user_id": r.config.Session.UserID}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	records, err := r.playLog.List(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to list plays: %w", err)
	}

	if f == formatter.FormatJSON {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal plays: %w", err)
		}
		return r.emit(cmd, data)
	}

	tracks := make([]models.Track, 0, len(records))
	for _, rec := range records {
		tracks = append(tracks, models.Track{ID: rec.TrackID, Title: rec.Title, Artist: rec.Artist})
	}
	return r.exportTracks(cmd, "Play Log", tracks)
}
