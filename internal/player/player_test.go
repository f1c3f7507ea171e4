package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/groove/internal/models"
)

type fakeEngine struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (e *fakeEngine) record(call string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, call)
	if call == e.failOn {
		return errors.New("engine failure")
	}
	return nil
}

func (e *fakeEngine) Load(ctx context.Context, track models.Track) error {
	return e.record("load:" + track.ID)
}
func (e *fakeEngine) Play(ctx context.Context) error  { return e.record("play") }
func (e *fakeEngine) Pause(ctx context.Context) error { return e.record("pause") }

func (e *fakeEngine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

type fakeRecorder struct {
	mu    sync.Mutex
	plays []string
}

func (r *fakeRecorder) RecordPlay(ctx context.Context, track models.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, track.ID)
}

func (r *fakeRecorder) Plays() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.plays...)
}

func track(n int) models.Track {
	return models.Track{ID: fmt.Sprintf("t%d", n), Title: fmt.Sprintf("Track %d", n), MediaRef: fmt.Sprintf("m%d", n)}
}

func setupPlayer() (*Player, *fakeEngine, *fakeRecorder) {
	engine := &fakeEngine{}
	recorder := &fakeRecorder{}
	return New(engine, recorder, nil), engine, recorder
}

func queueIDs(s Snapshot) string {
	ids := make([]string, len(s.Queue))
	for i, t := range s.Queue {
		ids[i] = t.ID
	}
	return fmt.Sprint(ids)
}

func TestPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("New Player Is Empty", func(t *testing.T) {
		p, _, _ := setupPlayer()
		s := p.State()
		if len(s.Queue) != 0 || s.Position != NoPosition || s.Current != nil || s.Playing {
			t.Errorf("unexpected initial state %+v", s)
		}
	})

	t.Run("PlayTrack", func(t *testing.T) {
		t.Run("Append Is Idempotent", func(t *testing.T) {
			p, engine, recorder := setupPlayer()

			p.PlayTrack(ctx, track(1))
			first := p.State()
			p.PlayTrack(ctx, track(1))
			second := p.State()

			for _, s := range []Snapshot{first, second} {
				if len(s.Queue) != 1 || s.Position != 0 {
					t.Errorf("expected single queued track at 0, got %s at %d", queueIDs(s), s.Position)
				}
				if s.Current == nil || s.Current.ID != "t1" || !s.Playing {
					t.Errorf("expected t1 playing, got %+v", s)
				}
			}

			if plays := recorder.Plays(); len(plays) != 2 {
				t.Errorf("expected every play to be recorded, got %v", plays)
			}
			if calls := engine.Calls(); fmt.Sprint(calls) != "[load:t1 play load:t1 play]" {
				t.Errorf("unexpected engine calls %v", calls)
			}
		})

		t.Run("Existing Track Moves Cursor", func(t *testing.T) {
			p, _, _ := setupPlayer()
			p.PlayTrack(ctx, track(1))
			p.PlayTrack(ctx, track(2))
			p.PlayTrack(ctx, track(1))

			s := p.State()
			if queueIDs(s) != "[t1 t2]" || s.Position != 0 || s.Current.ID != "t1" {
				t.Errorf("expected cursor back on t1, got %s at %d", queueIDs(s), s.Position)
			}
		})

		t.Run("Nil Recorder", func(t *testing.T) {
			p := New(&fakeEngine{}, nil, nil)
			p.PlayTrack(ctx, track(1))
			if p.State().Current == nil {
				t.Error("expected current track")
			}
		})
	})

	t.Run("Navigation", func(t *testing.T) {
		t.Run("Next And Previous", func(t *testing.T) {
			p, _, recorder := setupPlayer()
			for i := 1; i <= 3; i++ {
				p.PlayTrack(ctx, track(i))
			}

			p.Previous(ctx)
			if s := p.State(); s.Position != 1 || s.Current.ID != "t2" || !s.Playing {
				t.Errorf("expected t2 at 1, got %+v", s)
			}

			p.Pause(ctx)
			p.Next(ctx)
			if s := p.State(); s.Position != 2 || s.Current.ID != "t3" || !s.Playing {
				t.Errorf("expected t3 playing at 2, got %+v", s)
			}

			if plays := recorder.Plays(); len(plays) != 3 {
				t.Errorf("expected navigation not to record plays, got %v", plays)
			}
		})

		t.Run("Boundaries Are No-Ops", func(t *testing.T) {
			p, _, _ := setupPlayer()
			p.PlayTrack(ctx, track(1))
			p.PlayTrack(ctx, track(2))

			before := p.State()
			p.Next(ctx)
			if after := p.State(); queueIDs(after) != queueIDs(before) || after.Position != before.Position || after.Current.ID != before.Current.ID {
				t.Errorf("expected next at end to be a no-op, got %+v", after)
			}

			p.Previous(ctx)
			before = p.State()
			p.Previous(ctx)
			if after := p.State(); after.Position != 0 || after.Current.ID != before.Current.ID || queueIDs(after) != queueIDs(before) {
				t.Errorf("expected previous at start to be a no-op, got %+v", after)
			}
		})

		t.Run("Empty Queue", func(t *testing.T) {
			p, engine, _ := setupPlayer()
			p.Next(ctx)
			p.Previous(ctx)

			if s := p.State(); s.Position != NoPosition || s.Current != nil {
				t.Errorf("expected untouched state, got %+v", s)
			}
			if len(engine.Calls()) != 0 {
				t.Errorf("expected no engine calls, got %v", engine.Calls())
			}
		})
	})

	t.Run("TogglePlay", func(t *testing.T) {
		t.Run("Without Track Flips Inert Flag", func(t *testing.T) {
			p, engine, _ := setupPlayer()
			p.TogglePlay(ctx)

			if s := p.State(); !s.Playing || s.Current != nil {
				t.Errorf("expected inert playing flag, got %+v", s)
			}
			if len(engine.Calls()) != 0 {
				t.Errorf("expected no engine calls, got %v", engine.Calls())
			}
		})

		t.Run("With Track", func(t *testing.T) {
			p, engine, _ := setupPlayer()
			p.PlayTrack(ctx, track(1))
			p.TogglePlay(ctx)
			p.TogglePlay(ctx)

			if !p.State().Playing {
				t.Error("expected playing after two toggles")
			}
			if calls := engine.Calls(); fmt.Sprint(calls[2:]) != "[pause play]" {
				t.Errorf("unexpected engine calls %v", calls)
			}
		})
	})

	t.Run("Engine Errors Are Swallowed", func(t *testing.T) {
		engine := &fakeEngine{failOn: "load:t1"}
		p := New(engine, nil, nil)
		p.PlayTrack(ctx, track(1))

		if s := p.State(); s.Current == nil || !s.Playing {
			t.Errorf("expected state to advance despite engine failure, got %+v", s)
		}
	})

	t.Run("Updates", func(t *testing.T) {
		p, _, _ := setupPlayer()
		p.PlayTrack(ctx, track(1))

		select {
		case s := <-p.Updates():
			if s.Current == nil || s.Current.ID != "t1" {
				t.Errorf("unexpected snapshot %+v", s)
			}
		default:
			t.Fatal("expected a snapshot")
		}

		for range 100 {
			p.TogglePlay(ctx)
		}
	})

	t.Run("Snapshot Is A Copy", func(t *testing.T) {
		p, _, _ := setupPlayer()
		p.PlayTrack(ctx, track(1))

		s := p.State()
		s.Queue[0].Title = "changed"
		s.Current.Title = "changed"

		if got := p.State(); got.Queue[0].Title != "Track 1" || got.Current.Title != "Track 1" {
			t.Errorf("expected internal state to be untouched, got %+v", got)
		}
	})

	t.Run("Run", func(t *testing.T) {
		p, _, _ := setupPlayer()
		p.PlayTrack(ctx, track(1))
		p.PlayTrack(ctx, track(2))
		p.Previous(ctx)

		runCtx, cancel := context.WithCancel(ctx)
		ended := make(chan struct{})
		done := make(chan struct{})
		go func() {
			p.Run(runCtx, ended)
			close(done)
		}()

		ended <- struct{}{}
		cancel()
		<-done

		if s := p.State(); s.Current.ID != "t2" {
			t.Errorf("expected ended event to advance to t2, got %s", s.Current.ID)
		}
	})

	t.Run("Run Stops On Closed Channel", func(t *testing.T) {
		p, _, _ := setupPlayer()
		ended := make(chan struct{})
		close(ended)

		done := make(chan struct{})
		go func() {
			p.Run(ctx, ended)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("expected Run to return")
		}
	})
}

func TestMultiRecorder(t *testing.T) {
	a, b := &fakeRecorder{}, &fakeRecorder{}
	MultiRecorder{a, nil, b}.RecordPlay(context.Background(), track(1))

	if len(a.Plays()) != 1 || len(b.Plays()) != 1 {
		t.Errorf("expected both recorders to see the play, got %v %v", a.Plays(), b.Plays())
	}
}
