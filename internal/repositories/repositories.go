// package repositories provides the local cache store used as a durable mirror of user activity.
//
// Values are JSON documents addressed by string keys. Each activity family writes a disjoint key,
// so concurrent writers of different families never contend; writes to the same key are last-write-wins.
package repositories

import (
	"context"
)

// Store is a string-keyed get/set/remove API over JSON-serializable values.
//
// Entries never expire. Implementations must be safe for concurrent use.
type Store interface {
	// Get decodes the value at key into dest. The boolean is false when the key is absent.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set encodes value as JSON and stores it at key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Cache keys, one per activity family.
const (
	KeyRecentlyPlayed = "recentlyPlayed"
	KeyFavorites      = "favorites"
	KeyPlaylists      = "playlists"
	KeyTags           = "tags"
	KeyGenres         = "genres"
	KeyHomeLayout     = "homeLayout"
	KeySocialPosts    = "socialMirror:posts"
	KeySocialFollows  = "socialMirror:follows"
)

// ScopedKey namespaces key by user so authenticated and anonymous data never share an entry.
//
// An empty userID (anonymous session) returns key unchanged.
func ScopedKey(key, userID string) string {
	if userID == "" {
		return key
	}
	return key + ":" + userID
}
