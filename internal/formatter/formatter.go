// package formatter renders track lists and playlists as CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// ParseFormat converts s into a [Format]. "md" and "txt" are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Tracks renders tracks under title in format f.
func Tracks(f Format, title string, tracks []models.Track) ([]byte, error) {
	switch f {
	case FormatCSV:
		return TracksToCSV(tracks)
	case FormatMarkdown:
		return TracksToMarkdown(title, tracks)
	case FormatJSON:
		return json.MarshalIndent(map[string]any{"title": title, "tracks": tracks}, "", "  ")
	default:
		return TracksToText(title, tracks)
	}
}

// TracksToCSV converts tracks to CSV with columns: ID, Title, Artist, Duration, Year, Genre, MediaRef
func TracksToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Duration", "Year", "Genre", "MediaRef"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			strconv.Itoa(track.Duration),
			optionalInt(track.Year),
			track.Genre,
			track.MediaRef,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToMarkdown renders a titled, numbered Markdown list of tracks.
func TracksToMarkdown(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))
	writeMarkdownTracks(&buf, tracks)

	return buf.Bytes(), nil
}

// PlaylistToMarkdown renders a playlist with its description and visibility.
func PlaylistToMarkdown(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", playlist.Name)
	if playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", playlist.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(playlist.Tracks))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", shared.VisibilityString(playlist.Public))

	buf.WriteString("## Tracks\n\n")
	writeMarkdownTracks(&buf, playlist.Tracks)

	return buf.Bytes(), nil
}

func writeMarkdownTracks(buf *bytes.Buffer, tracks []models.Track) {
	for i, track := range tracks {
		yearPart := ""
		if track.Year > 0 {
			yearPart = fmt.Sprintf(" (%d)", track.Year)
		}
		fmt.Fprintf(buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, yearPart, shared.FormatDuration(track.Duration))
	}
}

// TracksToText renders a titled plain text list of tracks.
func TracksToText(title string, tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}

	return buf.Bytes(), nil
}

// Playlist renders playlist in format f.
func Playlist(f Format, playlist models.Playlist) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return PlaylistToMarkdown(playlist)
	case FormatJSON:
		return json.MarshalIndent(playlist, "", "  ")
	default:
		return Tracks(f, "Playlist: "+playlist.Name, playlist.Tracks)
	}
}

// WriteExport writes data to path, creating parent directories as needed.
func WriteExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
