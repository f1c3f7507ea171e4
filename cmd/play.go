package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/player"
	"github.com/desertthunder/groove/internal/repositories"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/desertthunder/groove/internal/ui"
	"github.com/urfave/cli/v3"
)

// genreCatalog pins catalog listings to a single genre.
type genreCatalog struct {
	services.Catalog
	genre string
}

func (c genreCatalog) ListTracks(ctx context.Context, genreID string) ([]models.Track, error) {
	if genreID == "" {
		genreID = c.genre
	}
	return c.Catalog.ListTracks(ctx, genreID)
}

// Play launches the interactive player, or plays a single track with --track.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.String("track")
	interactive := trackID == ""

	// Redirect logs to file to avoid interfering with TUI rendering
	if interactive {
		fileLogger, closeLog, err := shared.NewFileLogger(r.config.Player.LogFile)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
		r.closers = append(r.closers, closeLog)
	}

	if err := r.init(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, ended, err := r.newPlayer(cmd.String("engine"))
	if err != nil {
		return err
	}
	if ended != nil {
		go p.Run(ctx, ended)
	}

	if !interactive {
		track, err := r.findTrack(ctx, trackID)
		if err != nil {
			return err
		}
		p.PlayTrack(ctx, track)
		r.writePlain("▶ %s - %s (%s)\n", track.Title, track.Artist, shared.FormatDuration(track.Duration))
		if ended != nil {
			r.writePlain("Press Ctrl+C to stop\n")
			<-ctx.Done()
		}
		return nil
	}

	var catalog services.Catalog = r.remote
	if genre := cmd.String("genre"); genre != "" {
		catalog = genreCatalog{Catalog: r.remote, genre: genre}
	}

	model := ui.NewModel(ctx, p, catalog, r.sync)
	program := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// newPlayer builds a player on the configured engine. ended is nil for engines without end-of-track notifications.
func (r *Runner) newPlayer(engine string) (*player.Player, <-chan struct{}, error) {
	if engine == "" {
		engine = r.config.Player.Engine
	}

	recorders := player.MultiRecorder{r.sync}
	if r.playLog != nil {
		recorders = append(recorders, repositories.NewPlayLogRecorder(r.playLog, r.config.Session.UserID, r.logger))
	}

	switch strings.ToLower(engine) {
	case "browser":
		e := player.NewBrowserEngine(r.config.Player.MediaURL, r.logger)
		return player.New(e, recorders, r.logger), e.Ended(), nil
	case "log", "":
		return player.New(player.NewLogEngine(r.logger), recorders, r.logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown player engine %q", shared.ErrInvalidConfig, engine)
	}
}

// findTrack looks trackID up in the catalog.
func (r *Runner) findTrack(ctx context.Context, trackID string) (models.Track, error) {
	if trackID == "" {
		return models.Track{}, fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	tracks, err := r.remote.ListTracks(ctx, "")
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to list catalog: %w", err)
	}

	if i := models.IndexOfTrack(tracks, trackID); i >= 0 {
		return tracks[i], nil
	}
	return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
}
