package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
)

//go:embed catalog.json
var sampleCatalog []byte

// recentLimit caps the number of history rounds kept per user.
const recentLimit = 50

// Server is an in-memory implementation of the remote data service.
//
// Library families are kept per user; posts and follow edges are global.
type Server struct {
	mu      sync.Mutex
	catalog []models.Track
	users   map[string]*library
	posts   []models.SocialPost
	follows []models.Follow

	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

type library struct {
	recent    []models.RecentlyPlayedEntry
	favorites []models.Track
	playlists []models.Playlist
	tags      []models.Tag
	genres    []models.Genre
	layout    models.HomeLayout
}

// New creates a Server seeded with catalog.
func New(catalog []models.Track, logger *log.Logger) *Server {
	return &Server{
		catalog: catalog,
		users:   make(map[string]*library),
		logger:  shared.WithLogger(logger, "component", "server"),
		now:     time.Now,
		newID:   shared.GenerateID,
	}
}

// LoadCatalog reads a track catalog from path, falling back to the embedded sample when path is empty.
// The file may hold a bare array or an object wrapping one.
func LoadCatalog(path string) ([]models.Track, error) {
	data := sampleCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		data = b
	}

	tracks, err := services.DecodeTracks(data)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog: %v", shared.ErrInvalidInput, err)
	}
	for _, t := range tracks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%w: catalog: %v", shared.ErrInvalidInput, err)
		}
	}
	return tracks, nil
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "tracks", len(s.catalog))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// lib returns userID's library, creating it on first use. Callers hold s.mu.
func (s *Server) lib(userID string) *library {
	l, ok := s.users[userID]
	if !ok {
		l = &library{layout: models.HomeLayout{GenreIDs: []string{}}}
		s.users[userID] = l
	}
	return l
}
