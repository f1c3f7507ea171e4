// package models defines the data model for the groove music-sharing client
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TempIDPrefix marks ids issued locally before the remote service has confirmed a create.
const TempIDPrefix = "temp-"

// NewTempID returns a locally addressable temporary id derived from t.
func NewTempID(t time.Time) string {
	return TempIDPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

// IsTempID reports whether id was issued by [NewTempID].
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// Track represents a playable track backed by externally hosted video content.
//
// Tracks are owned by the remote service and copied by value wherever referenced.
type Track struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Artist    string   `json:"artist"`
	MediaRef  string   `json:"mediaRef"` // External media (video) identifier
	Thumbnail string   `json:"thumbnail,omitempty"`
	Duration  int      `json:"duration,omitempty"` // Duration in seconds
	Year      int      `json:"year,omitempty"`
	Genre     string   `json:"genre,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate checks that the track can be queued and played.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if t.MediaRef == "" {
		return fmt.Errorf("track %s has no media reference", t.ID)
	}
	return nil
}

// RecentlyPlayedEntry is one recorded synchronization round of played tracks.
type RecentlyPlayedEntry struct {
	Tracks    []Track   `json:"tracks"`
	Timestamp time.Time `json:"timestamp"`
}

// Playlist is a user-created, ordered list of tracks.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tracks      []Track   `json:"tracks"`
	Public      bool      `json:"isPublic"`
	OwnerID     string    `json:"ownerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasTrack reports whether the playlist already contains trackID.
func (p Playlist) HasTrack(trackID string) bool {
	return indexOfTrack(p.Tracks, trackID) >= 0
}

// Tag labels any number of tracks.
type Tag struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Color    string   `json:"color"`
	TrackIDs []string `json:"trackIds"`
}

// HasTrack reports whether the tag is associated with trackID.
func (t Tag) HasTrack(trackID string) bool {
	for _, id := range t.TrackIDs {
		if id == trackID {
			return true
		}
	}
	return false
}

// Genre is a per-user, ordered collection of tracks shown when browsing.
type Genre struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Tracks      []Track `json:"tracks"`
	Public      bool    `json:"isPublic"`
	OwnerID     string  `json:"ownerId,omitempty"`
	Order       int     `json:"displayOrder"`
}

// HomeLayout holds the ordered subset of genre ids shown on the landing page.
type HomeLayout struct {
	GenreIDs []string `json:"genreIds"`
}

// UserProfile is the public profile of an account.
type UserProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// IndexOfTrack returns the index of trackID in tracks or -1.
func IndexOfTrack(tracks []Track, trackID string) int {
	return indexOfTrack(tracks, trackID)
}

func indexOfTrack(tracks []Track, trackID string) int {
	for i, t := range tracks {
		if t.ID == trackID {
			return i
		}
	}
	return -1
}
