package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestService(t *testing.T, handler http.HandlerFunc, token string) *HTTPService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewHTTPService(HTTPOptions{
		BaseURL: server.URL + "/api",
		Token:   token,
		Breaker: shared.BreakerConfig{MaxRequests: 1, TimeoutSeconds: 60, FailureThreshold: 2},
	})
}

func TestHTTPService(t *testing.T) {
	t.Run("Bearer Token", func(t *testing.T) {
		var auth atomic.Value
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			auth.Store(r.Header.Get("Authorization"))
			w.Write([]byte(`[]`))
		}, "user-1")

		if _, err := srv.ListTracks(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := auth.Load().(string); got != "Bearer user-1" {
			t.Errorf("expected bearer header, got %q", got)
		}

		srv.SetToken("")
		if _, err := srv.ListTracks(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := auth.Load().(string); got != "" {
			t.Errorf("expected no authorization header, got %q", got)
		}
	})

	t.Run("ListTracks With Genre", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/tracks" || r.URL.Query().Get("genre") != "g 1" {
				t.Errorf("unexpected request %s", r.URL.String())
			}
			w.Write([]byte(`{"tracks":[{"id":"t1","mediaRef":"abc"}]}`))
		}, "")

		tracks, err := srv.ListTracks(context.Background(), "g 1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tracks) != 1 || tracks[0].MediaRef != "abc" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("Not Found", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"playlist not found"}`))
		}, "u1")

		err := srv.DeletePlaylist(context.Background(), "missing")
		if !errors.Is(err, shared.ErrNotFound) || !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected not found api error, got %v", err)
		}
		if !strings.Contains(err.Error(), "playlist not found") {
			t.Errorf("expected server message in error, got %v", err)
		}
	})

	t.Run("Unsuccessful Envelope", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"message":"nope"}`))
		}, "u1")

		err := srv.AddRecentlyPlayed(context.Background(), models.RecentlyPlayedEntry{})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected api error, got %v", err)
		}
	})

	t.Run("ToggleFavorite", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Track models.Track `json:"track"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode body: %v", err)
			}
			if body.Track.ID != "t1" {
				t.Errorf("expected track t1, got %q", body.Track.ID)
			}
			w.Write([]byte(`{"success":true,"isFavorite":true}`))
		}, "u1")

		fav, err := srv.ToggleFavorite(context.Background(), models.Track{ID: "t1", MediaRef: "x"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !fav {
			t.Error("expected favorite to be true")
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/playlists" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"success":true,"playlist":{"id":"pl-1","name":"Road trip"}}`))
		}, "u1")

		p, err := srv.CreatePlaylist(context.Background(), models.Playlist{Name: "Road trip"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ID != "pl-1" {
			t.Errorf("expected server id, got %s", p.ID)
		}
	})

	t.Run("Social", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/api/social/feed":
				if r.URL.Query().Get("filter") != "trending" {
					t.Errorf("expected trending filter, got %q", r.URL.RawQuery)
				}
				w.Write([]byte(`{"posts":[{"id":"p1","authorId":"u2","visibility":"public"}]}`))
			case strings.HasSuffix(r.URL.Path, "/like"):
				w.Write([]byte(`{"success":true,"liked":true}`))
			case strings.HasSuffix(r.URL.Path, "/replies"):
				w.Write([]byte(`{"success":true,"reply":{"id":"r1","content":"same"}}`))
			case r.URL.Path == "/api/social/follows/u%202" || r.URL.Path == "/api/social/follows/u 2":
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				w.Write([]byte(`{"success":true}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
				w.WriteHeader(http.StatusNotFound)
			}
		}, "u1")

		ctx := context.Background()
		posts, err := srv.GetFeed(ctx, models.FeedTrending)
		if err != nil || len(posts) != 1 {
			t.Fatalf("unexpected feed %v %v", posts, err)
		}

		liked, err := srv.LikePost(ctx, "p1")
		if err != nil || !liked {
			t.Errorf("expected liked, got %v %v", liked, err)
		}

		reply, err := srv.AddReply(ctx, "p1", "c1", "same")
		if err != nil || reply.ID != "r1" {
			t.Errorf("unexpected reply %+v %v", reply, err)
		}

		if err := srv.Unfollow(ctx, "u 2"); err != nil {
			t.Errorf("unexpected unfollow error: %v", err)
		}
	})

	t.Run("Circuit Breaker", func(t *testing.T) {
		t.Run("Opens On Server Errors", func(t *testing.T) {
			var calls atomic.Int32
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}, "u1")

			ctx := context.Background()
			for range 2 {
				if _, err := srv.GetFavorites(ctx); err == nil {
					t.Fatal("expected error")
				}
			}

			if srv.BreakerState() != gobreaker.StateOpen {
				t.Fatalf("expected open breaker, got %s", srv.BreakerState())
			}

			_, err := srv.GetFavorites(ctx)
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected service unavailable, got %v", err)
			}
			if calls.Load() != 2 {
				t.Errorf("expected open breaker to skip the server, got %d calls", calls.Load())
			}
		})

		t.Run("Ignores Client Errors", func(t *testing.T) {
			srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}, "u1")

			for range 5 {
				srv.GetTags(context.Background())
			}
			if srv.BreakerState() != gobreaker.StateClosed {
				t.Errorf("expected closed breaker, got %s", srv.BreakerState())
			}
		})
	})
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := shared.DefaultConfig()
	cfg.Session.Token = "tok"

	opts := OptionsFromConfig(cfg, nil)
	if opts.Token != "tok" || opts.BaseURL != cfg.Remote.BaseURL {
		t.Errorf("unexpected options %+v", opts)
	}
	if opts.Timeout != cfg.Remote.Timeout() {
		t.Errorf("expected timeout %v, got %v", cfg.Remote.Timeout(), opts.Timeout)
	}
}
