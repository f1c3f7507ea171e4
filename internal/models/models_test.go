package models

import (
	"testing"
	"time"
)

func TestTempID(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	id := NewTempID(now)

	if id != "temp-1700000000123" {
		t.Errorf("expected temp-1700000000123, got %s", id)
	}
	if !IsTempID(id) {
		t.Error("expected generated id to be temporary")
	}
	if IsTempID("5b1c9d0e") {
		t.Error("expected server id to not be temporary")
	}
}

func TestTrack(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		if err := (Track{ID: "t1", MediaRef: "abc"}).Validate(); err != nil {
			t.Errorf("expected valid track, got %v", err)
		}
		if err := (Track{MediaRef: "abc"}).Validate(); err == nil {
			t.Error("expected error for missing id")
		}
		if err := (Track{ID: "t1"}).Validate(); err == nil {
			t.Error("expected error for missing media reference")
		}
	})

	t.Run("IndexOfTrack", func(t *testing.T) {
		tracks := []Track{{ID: "a"}, {ID: "b"}}
		if got := IndexOfTrack(tracks, "b"); got != 1 {
			t.Errorf("expected 1, got %d", got)
		}
		if got := IndexOfTrack(tracks, "z"); got != -1 {
			t.Errorf("expected -1, got %d", got)
		}
	})
}

func TestSocialPost(t *testing.T) {
	t.Run("EngagementScore", func(t *testing.T) {
		post := SocialPost{
			Likes:      []string{"u1", "u2"},
			Comments:   []Comment{{ID: "c1"}},
			ShareCount: 3,
		}
		if got := post.EngagementScore(); got != 6 {
			t.Errorf("expected score 6, got %d", got)
		}
	})

	t.Run("ToggleLike", func(t *testing.T) {
		post := SocialPost{}

		if !post.ToggleLike("u1") {
			t.Error("expected first toggle to like")
		}
		if !post.LikedBy("u1") {
			t.Error("expected post to be liked by u1")
		}
		if post.ToggleLike("u1") {
			t.Error("expected second toggle to unlike")
		}
		if len(post.Likes) != 0 {
			t.Errorf("expected no likes, got %v", post.Likes)
		}
	})
}

func TestParsers(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    FeedFilter
		wantErr bool
	}{
		{name: "empty defaults to all", input: "", want: FeedAll},
		{name: "following", input: "following", want: FeedFollowing},
		{name: "trending", input: "trending", want: FeedTrending},
		{name: "unknown", input: "hot", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFeedFilter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFeedFilter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFeedFilter() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("ParseVisibility", func(t *testing.T) {
		if v, err := ParseVisibility(""); err != nil || v != VisibilityPublic {
			t.Errorf("expected public default, got %v (%v)", v, err)
		}
		if _, err := ParseVisibility("secret"); err == nil {
			t.Error("expected error for unknown visibility")
		}
	})
}
