// package services defines the remote data service contract and its HTTP client
package services

import (
	"context"

	"github.com/desertthunder/groove/internal/models"
)

// Catalog browses the track catalog owned by the remote service.
type Catalog interface {
	// ListTracks returns the catalog tracks, restricted to genreID when it is non-empty.
	ListTracks(ctx context.Context, genreID string) ([]models.Track, error)
}

// ActivityRemote exposes the per-user activity families: recently played, favorites, playlists, tags, genres.
//
// Every mutating call returns nil on success; any error means the remote did not apply the change.
type ActivityRemote interface {
	GetRecentlyPlayed(ctx context.Context) ([]models.RecentlyPlayedEntry, error)
	AddRecentlyPlayed(ctx context.Context, entry models.RecentlyPlayedEntry) error

	GetFavorites(ctx context.Context) ([]models.Track, error)
	// ToggleFavorite flips membership of track on the server and returns the new membership.
	ToggleFavorite(ctx context.Context, track models.Track) (bool, error)

	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
	CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error)
	AddPlaylistTrack(ctx context.Context, playlistID string, track models.Track) error
	RemovePlaylistTrack(ctx context.Context, playlistID, trackID string) error
	DeletePlaylist(ctx context.Context, playlistID string) error

	GetTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error)
	AddTagTrack(ctx context.Context, tagID, trackID string) error
	RemoveTagTrack(ctx context.Context, tagID, trackID string) error
	DeleteTag(ctx context.Context, tagID string) error

	GetGenres(ctx context.Context) ([]models.Genre, error)
	CreateGenre(ctx context.Context, genre models.Genre) (*models.Genre, error)
	UpdateGenre(ctx context.Context, genre models.Genre) error
	DeleteGenre(ctx context.Context, genreID string) error
	AddGenreTrack(ctx context.Context, genreID string, track models.Track) error
	RemoveGenreTrack(ctx context.Context, genreID, trackID string) error
	ReorderGenres(ctx context.Context, genreIDs []string) error

	GetHomeLayout(ctx context.Context) (*models.HomeLayout, error)
	SaveHomeLayout(ctx context.Context, layout models.HomeLayout) error
}

// SocialRemote exposes posts, likes, comments and follow edges.
type SocialRemote interface {
	// GetFeed returns the caller's feed computed by the server for filter.
	GetFeed(ctx context.Context, filter models.FeedFilter) ([]models.SocialPost, error)
	// GetFollows returns the caller's outgoing follow edges.
	GetFollows(ctx context.Context) ([]models.Follow, error)

	CreatePost(ctx context.Context, post models.SocialPost) (*models.SocialPost, error)
	// LikePost toggles the caller's like and returns the new state.
	LikePost(ctx context.Context, postID string) (bool, error)
	AddComment(ctx context.Context, postID, content string) (*models.Comment, error)
	AddReply(ctx context.Context, postID, commentID, content string) (*models.Reply, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
}

// Remote is the complete remote data service.
type Remote interface {
	Catalog
	ActivityRemote
	SocialRemote
}
