package services

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/groove/internal/models"
	"github.com/goccy/go-json"
)

// Generic wrapper keys tried after a family's own keys.
var wrapperKeys = []string{"data", "items", "results"}

// decodeList normalizes a list payload that is either a bare array or an object wrapping one under any of keys.
//
// Empty and null payloads decode to an empty, non-nil slice.
func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []T{}, nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode list wrapper: %w", err)
		}
		for _, k := range append(keys, wrapperKeys...) {
			if raw, ok := wrapper[k]; ok {
				return decodeList[T](raw)
			}
		}
		return nil, fmt.Errorf("unrecognized list payload: none of %v present", keys)
	default:
		return nil, fmt.Errorf("unrecognized list payload starting with %q", data[0])
	}
}

// decodeOne decodes an object that may be wrapped under key, e.g. {"success": true, "playlist": {...}}.
func decodeOne[T any](data []byte, key string) (*T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("expected object payload for %s", key)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	if raw, ok := wrapper[key]; ok {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			data = trimmed
		}
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &v, nil
}

// DecodeTracks normalizes a track list payload.
func DecodeTracks(data []byte) ([]models.Track, error) {
	return decodeList[models.Track](data, "tracks")
}

// DecodeRecentlyPlayed normalizes a recently-played payload.
func DecodeRecentlyPlayed(data []byte) ([]models.RecentlyPlayedEntry, error) {
	return decodeList[models.RecentlyPlayedEntry](data, "recentlyPlayed", "recently_played", "entries")
}

// DecodeFavorites normalizes a favorites payload.
func DecodeFavorites(data []byte) ([]models.Track, error) {
	return decodeList[models.Track](data, "favorites", "tracks")
}

// DecodePlaylists normalizes a playlist list payload.
func DecodePlaylists(data []byte) ([]models.Playlist, error) {
	return decodeList[models.Playlist](data, "playlists")
}

// DecodeTags normalizes a tag list payload.
func DecodeTags(data []byte) ([]models.Tag, error) {
	return decodeList[models.Tag](data, "tags")
}

// DecodeGenres normalizes a genre list payload.
func DecodeGenres(data []byte) ([]models.Genre, error) {
	return decodeList[models.Genre](data, "genres")
}

// DecodePosts normalizes a feed payload.
func DecodePosts(data []byte) ([]models.SocialPost, error) {
	return decodeList[models.SocialPost](data, "posts", "feed")
}

// DecodeFollows normalizes a follow edge list payload.
func DecodeFollows(data []byte) ([]models.Follow, error) {
	return decodeList[models.Follow](data, "follows", "following")
}

// DecodeHomeLayout accepts a bare id array, a layout object, or a layout object wrapped under "layout".
func DecodeHomeLayout(data []byte) (*models.HomeLayout, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		ids, err := decodeList[string](trimmed)
		if err != nil {
			return nil, err
		}
		return &models.HomeLayout{GenreIDs: ids}, nil
	}

	layout, err := decodeOne[models.HomeLayout](trimmed, "layout")
	if err != nil {
		return nil, err
	}
	if layout.GenreIDs == nil {
		layout.GenreIDs = []string{}
	}
	return layout, nil
}
