package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	th "github.com/desertthunder/groove/internal/testing"
	"github.com/goccy/go-json"
)

func sampleTracks() []models.Track {
	return []models.Track{
		{ID: "track1", Title: "Song One", Artist: "Artist One", MediaRef: "vid1", Duration: 180, Year: 1999, Genre: "rock"},
		{ID: "track2", Title: "Song, Two", Artist: "Artist Two", MediaRef: "vid2", Duration: 240},
	}
}

func TestExporters(t *testing.T) {
	t.Run("TracksToCSV", func(t *testing.T) {
		data, err := TracksToCSV(sampleTracks())
		if err != nil {
			t.Fatalf("TracksToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Artist,Duration,Year,Genre,MediaRef\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1,Song One,Artist One,180,1999,rock,vid1") {
			t.Errorf("CSV missing track1 row, got: %s", output)
		}
		if !strings.Contains(output, `track2,"Song, Two",Artist Two,240,,,vid2`) {
			t.Errorf("CSV did not quote track2 title, got: %s", output)
		}
	})

	t.Run("TracksToCSV Empty", func(t *testing.T) {
		data, err := TracksToCSV(nil)
		if err != nil {
			t.Fatalf("TracksToCSV failed: %v", err)
		}
		if strings.Count(string(data), "\n") != 1 {
			t.Errorf("expected only a header row, got: %q", data)
		}
	})

	t.Run("TracksToMarkdown", func(t *testing.T) {
		data, err := TracksToMarkdown("Recently Played", sampleTracks())
		if err != nil {
			t.Fatalf("TracksToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Recently Played") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Tracks**: 2") {
			t.Errorf("Markdown missing track count")
		}
		if !strings.Contains(output, "1. Artist One - Song One (1999) [3:00]") {
			t.Errorf("Markdown missing track1, got: %s", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song, Two [4:00]") {
			t.Errorf("Markdown missing track2 (no year), got: %s", output)
		}
	})

	t.Run("PlaylistToMarkdown", func(t *testing.T) {
		playlist := models.Playlist{ID: "pl1", Name: "Test Playlist", Description: "A test playlist", Public: true, Tracks: sampleTracks()}

		data, err := PlaylistToMarkdown(playlist)
		if err != nil {
			t.Fatalf("PlaylistToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"**Description**: A test playlist",
			"**Tracks**: 2",
			"**Visibility**: Public",
			"## Tracks",
			"1. Artist One - Song One (1999) [3:00]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("PlaylistToMarkdown Without Description", func(t *testing.T) {
		data, _ := PlaylistToMarkdown(models.Playlist{Name: "Quiet"})
		if strings.Contains(string(data), "**Description**") {
			t.Errorf("expected no description line, got: %s", data)
		}
		if !strings.Contains(string(data), "**Visibility**: Private") {
			t.Errorf("expected private visibility, got: %s", data)
		}
	})

	t.Run("TracksToText", func(t *testing.T) {
		data, err := TracksToText("Favorites", sampleTracks())
		if err != nil {
			t.Fatalf("TracksToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Favorites\nTracks: 2\n\n") {
			t.Errorf("Text missing heading, got: %s", output)
		}
		if !strings.Contains(output, "1. Artist One - Song One\n2. Artist Two - Song, Two\n") {
			t.Errorf("Text missing tracks, got: %s", output)
		}
	})

	t.Run("Playlist JSON", func(t *testing.T) {
		playlist := models.Playlist{ID: "pl1", Name: "Test Playlist", Tracks: sampleTracks()}
		data, err := Playlist(FormatJSON, playlist)
		if err != nil {
			t.Fatalf("Playlist failed: %v", err)
		}

		var decoded models.Playlist
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.ID != "pl1" || len(decoded.Tracks) != 2 {
			t.Errorf("unexpected playlist: %+v", decoded)
		}
	})

	t.Run("Playlist Text", func(t *testing.T) {
		data, err := Playlist(FormatText, models.Playlist{Name: "Mix", Tracks: sampleTracks()})
		if err != nil {
			t.Fatalf("Playlist failed: %v", err)
		}
		if !strings.HasPrefix(string(data), "Playlist: Mix\n") {
			t.Errorf("unexpected text: %s", data)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"csv", FormatCSV, ".csv"},
		{"md", FormatMarkdown, ".md"},
		{"markdown", FormatMarkdown, ".md"},
		{"", FormatText, ".txt"},
		{"txt", FormatText, ".txt"},
		{"json", FormatJSON, ".json"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want || got.Extension() != tt.ext {
				t.Errorf("expected %s (%s), got %s (%s)", tt.want, tt.ext, got, got.Extension())
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	t.Run("Creates Parent Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "exports", "nested", "history.csv")
		if err := WriteExport(path, []byte("ID\n")); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, path)
		if got := th.MustReadFile(t, path); got != "ID\n" {
			t.Errorf("unexpected content %q", got)
		}
	})

	t.Run("Relative Path", func(t *testing.T) {
		original := th.MustGetwd(t)
		th.MustChdir(t, t.TempDir())
		defer th.MustChdir(t, original)

		if err := WriteExport("favorites.txt", []byte("x")); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		th.AssertFileExists(t, "favorites.txt")
	})
}
