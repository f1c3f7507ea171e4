package player

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBrowserEngine(t *testing.T) {
	ctx := context.Background()

	setup := func() (*BrowserEngine, *[]string) {
		var opened []string
		e := NewBrowserEngine("https://media.example/watch?v=", nil)
		e.open = func(url string) error {
			opened = append(opened, url)
			return nil
		}
		return e, &opened
	}

	t.Run("Opens Media URL Once Per Load", func(t *testing.T) {
		e, opened := setup()
		e.Load(ctx, track(1))
		e.Play(ctx)
		e.Pause(ctx)
		e.Play(ctx)

		if len(*opened) != 1 || (*opened)[0] != "https://media.example/watch?v=m1" {
			t.Errorf("unexpected opened urls %v", *opened)
		}
	})

	t.Run("Play Without Track", func(t *testing.T) {
		e, opened := setup()
		if err := e.Play(ctx); err != nil || len(*opened) != 0 {
			t.Errorf("expected no-op, got err=%v opened=%v", err, *opened)
		}
	})

	t.Run("Open Failure", func(t *testing.T) {
		e, _ := setup()
		e.open = func(string) error { return errors.New("no browser") }
		e.Load(ctx, track(1))

		if err := e.Play(ctx); err == nil {
			t.Error("expected open error")
		}
	})

	t.Run("Ended Fires After Duration", func(t *testing.T) {
		e, _ := setup()
		e.Load(ctx, track(1))
		e.remaining = 10 * time.Millisecond
		e.Play(ctx)

		select {
		case <-e.Ended():
		case <-time.After(time.Second):
			t.Fatal("expected ended signal")
		}
	})

	t.Run("Pause Suspends Timer", func(t *testing.T) {
		e, _ := setup()
		e.Load(ctx, track(1))
		e.remaining = 50 * time.Millisecond
		e.Play(ctx)
		e.Pause(ctx)

		select {
		case <-e.Ended():
			t.Fatal("expected no ended signal while paused")
		case <-time.After(100 * time.Millisecond):
		}

		e.Play(ctx)
		select {
		case <-e.Ended():
		case <-time.After(time.Second):
			t.Fatal("expected ended signal after resume")
		}
	})

	t.Run("Load Cancels Pending Timer", func(t *testing.T) {
		e, _ := setup()
		e.Load(ctx, track(1))
		e.remaining = 20 * time.Millisecond
		e.Play(ctx)
		e.Load(ctx, track(2))

		select {
		case <-e.Ended():
			t.Fatal("expected previous track's timer to be cancelled")
		case <-time.After(60 * time.Millisecond):
		}
	})
}

func TestLogEngine(t *testing.T) {
	e := NewLogEngine(nil)
	ctx := context.Background()
	if e.Load(ctx, track(1)) != nil || e.Play(ctx) != nil || e.Pause(ctx) != nil {
		t.Error("expected log engine to never fail")
	}
}
