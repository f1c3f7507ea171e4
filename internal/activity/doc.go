// Package activity keeps per-user data families consistent between the local cache and the remote service.
//
// # Families
//
// Recently played, favorites, playlists, tags, genres and the home layout each live in an in-memory
// copy backed by a cache key (see [repositories.ScopedKey]) and the remote service.
//
// # Session Policy
//
// Anonymous sessions persist only recently played, to the cache, bounded to [AnonymousHistoryLimit]
// distinct tracks with repeat plays moved to the front. Every other family reads empty and ignores writes.
//
// Authenticated sessions apply each mutation optimistically to memory and the cache, then write to the
// remote service. A successful write re-fetches the family (reconciliation). A failed write leaves the
// optimistic state visible until the next successful read.
//
// # Ordering
//
// Each family carries a version bumped by every optimistic mutation and a count of writes in flight.
// A remote read is applied only if it was issued against the current version with no writes pending,
// so a late reconciliation never clobbers a newer optimistic change.
//
// Creates return immediately with a temporary id ([models.NewTempID]). When the remote create
// succeeds the family is reloaded and [Synchronizer.ResolveID] maps the temporary id to the server id.
//
// # Failures
//
// No method returns an error. Remote and cache failures are logged at warn level and degrade to the
// cached copy, an empty list or false. Progress is reported on the optional [Event] channel.
package activity
