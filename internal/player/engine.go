package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
)

// Engine plays externally hosted media on behalf of the [Player].
type Engine interface {
	Load(ctx context.Context, track models.Track) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
}

// LogEngine only logs the instructions it receives.
type LogEngine struct {
	logger *log.Logger
}

func NewLogEngine(logger *log.Logger) *LogEngine {
	return &LogEngine{logger: shared.WithLogger(logger, "component", "engine")}
}

func (e *LogEngine) Load(ctx context.Context, track models.Track) error {
	e.logger.Info("load", "track", track.ID, "title", track.Title, "media", track.MediaRef)
	return nil
}

func (e *LogEngine) Play(ctx context.Context) error {
	e.logger.Info("play")
	return nil
}

func (e *LogEngine) Pause(ctx context.Context) error {
	e.logger.Info("pause")
	return nil
}

// BrowserEngine opens each track's media page in the system browser and signals the end of the
// track from a timer over its duration.
//
// The browser itself cannot be paused; Pause only suspends the timer.
type BrowserEngine struct {
	mu        sync.Mutex
	mediaURL  string
	open      func(url string) error
	logger    *log.Logger
	ended     chan struct{}
	track     *models.Track
	opened    bool
	remaining time.Duration
	timer     *time.Timer
	startedAt time.Time
	gen       uint64
}

// NewBrowserEngine creates an engine that opens mediaURL+MediaRef.
func NewBrowserEngine(mediaURL string, logger *log.Logger) *BrowserEngine {
	return &BrowserEngine{
		mediaURL: mediaURL,
		open:     shared.OpenBrowser,
		logger:   shared.WithLogger(logger, "component", "engine"),
		ended:    make(chan struct{}, 1),
	}
}

// Ended fires once each time a track's duration elapses while playing.
func (e *BrowserEngine) Ended() <-chan struct{} {
	return e.ended
}

func (e *BrowserEngine) Load(ctx context.Context, track models.Track) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stop()
	e.track = &track
	e.opened = false
	e.remaining = time.Duration(track.Duration) * time.Second
	return nil
}

func (e *BrowserEngine) Play(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.track == nil || e.timer != nil {
		return nil
	}

	if !e.opened {
		if err := e.open(e.mediaURL + e.track.MediaRef); err != nil {
			return err
		}
		e.opened = true
	}

	if e.remaining <= 0 {
		return nil
	}

	e.startedAt = time.Now()
	gen := e.gen
	e.timer = time.AfterFunc(e.remaining, func() { e.fire(gen) })
	return nil
}

func (e *BrowserEngine) Pause(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.timer != nil {
		e.remaining -= time.Since(e.startedAt)
		e.stop()
	}
	return nil
}

// stop cancels the running timer. Caller holds e.mu.
func (e *BrowserEngine) stop() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *BrowserEngine) fire(gen uint64) {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.remaining = 0
	e.mu.Unlock()

	select {
	case e.ended <- struct{}{}:
	default:
	}
}
