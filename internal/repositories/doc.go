// Package repositories implements the local cache behind the activity synchronizer and feed mirror.
//
// Every backend satisfies [Store], a small key/value contract whose values are JSON documents:
//   - [SQLiteStore] : Default backend, one row per key in the cache table
//   - [RedisStore] : Shared cache for several clients, keys namespaced by a prefix
//   - [MemoryStore] : Process-local fallback when no backend can be opened
//
// Keys for per-user families are derived with [ScopedKey] so sessions never read each other's data.
//
// [PlayLogRepository] is separate from the cache: an append-only SQLite table of every play,
// independent of the bounded recently-played history. [PlayLogRecorder] adapts it to the player.
package repositories
