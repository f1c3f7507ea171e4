package player

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
)

// NoPosition is the cursor value of an empty queue.
const NoPosition = -1

// Recorder is notified every time a track starts playing.
type Recorder interface {
	RecordPlay(ctx context.Context, track models.Track)
}

// Snapshot is a copy of the player state.
type Snapshot struct {
	Queue    []models.Track
	Position int
	Current  *models.Track
	Playing  bool
}

// Player owns the playback queue, the cursor into it and the play/pause flag.
//
// It is the single shared handle passed to every component that starts or controls playback.
// Operations apply in call order.
type Player struct {
	mu       sync.Mutex
	queue    []models.Track
	position int
	current  *models.Track
	playing  bool

	engine   Engine
	recorder Recorder
	logger   *log.Logger
	updates  chan Snapshot
}

// New creates a Player driving engine. recorder may be nil.
func New(engine Engine, recorder Recorder, logger *log.Logger) *Player {
	if engine == nil {
		engine = NewLogEngine(logger)
	}

	return &Player{
		position: NoPosition,
		engine:   engine,
		recorder: recorder,
		logger:   shared.WithLogger(logger, "component", "player"),
		updates:  make(chan Snapshot, 16),
	}
}

// Updates delivers a snapshot after every state change. Snapshots are dropped when the consumer lags.
func (p *Player) Updates() <-chan Snapshot {
	return p.updates
}

// State returns a copy of the current state.
func (p *Player) State() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Player) snapshot() Snapshot {
	s := Snapshot{
		Queue:    slices.Clone(p.queue),
		Position: p.position,
		Playing:  p.playing,
	}
	if p.current != nil {
		c := *p.current
		s.Current = &c
	}
	return s
}

func (p *Player) publish() {
	select {
	case p.updates <- p.snapshot():
	default:
	}
}

// PlayTrack makes track current and starts it.
//
// A track already in the queue is not appended again; the cursor jumps to its slot. Every call is
// recorded as a play, including repeats.
func (p *Player) PlayTrack(ctx context.Context, track models.Track) {
	p.mu.Lock()
	if i := models.IndexOfTrack(p.queue, track.ID); i >= 0 {
		p.position = i
	} else {
		p.queue = append(p.queue, track)
		p.position = len(p.queue) - 1
	}
	p.current = &track
	p.playing = true
	p.start(ctx, track)
	p.publish()
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.RecordPlay(ctx, track)
	}
}

// Pause stops playback without touching the queue.
func (p *Player) Pause(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false
	if err := p.engine.Pause(ctx); err != nil {
		p.logger.Warn("engine pause failed", "error", err)
	}
	p.publish()
}

// TogglePlay flips the play/pause flag. Without a current track the flag flips and nothing else happens.
func (p *Player) TogglePlay(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = !p.playing
	if p.current != nil {
		var err error
		if p.playing {
			err = p.engine.Play(ctx)
		} else {
			err = p.engine.Pause(ctx)
		}
		if err != nil {
			p.logger.Warn("engine toggle failed", "playing", p.playing, "error", err)
		}
	}
	p.publish()
}

// Next advances to the following queued track. At the end of the queue it does nothing.
func (p *Player) Next(ctx context.Context) {
	p.step(ctx, 1)
}

// Previous moves back to the preceding queued track. At the start of the queue it does nothing.
func (p *Player) Previous(ctx context.Context) {
	p.step(ctx, -1)
}

func (p *Player) step(ctx context.Context, delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 || p.position == NoPosition {
		return
	}
	next := p.position + delta
	if next < 0 || next >= len(p.queue) {
		return
	}

	p.position = next
	track := p.queue[next]
	p.current = &track
	p.playing = true
	p.start(ctx, track)
	p.publish()
}

// start loads and plays track on the engine. Caller holds p.mu.
func (p *Player) start(ctx context.Context, track models.Track) {
	if err := p.engine.Load(ctx, track); err != nil {
		p.logger.Warn("engine load failed", "track", track.ID, "error", err)
		return
	}
	if err := p.engine.Play(ctx); err != nil {
		p.logger.Warn("engine play failed", "track", track.ID, "error", err)
	}
}

// Run advances the queue every time ended fires, until ctx is done or ended is closed.
func (p *Player) Run(ctx context.Context, ended <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ended:
			if !ok {
				return
			}
			p.logger.Debug("track ended")
			p.Next(ctx)
		}
	}
}
