// Package services defines the contract with the remote data service and implements it over HTTP.
//
// # Remote Interface
//
// [Remote] groups three concerns: the track [Catalog], per-user [ActivityRemote] families
// (recently played, favorites, playlists, tags, genres, home layout) and the [SocialRemote] feed.
// The activity synchronizer and feed aggregator depend only on these interfaces.
//
// # HTTP Implementation
//
// [HTTPService] talks JSON to the service rooted at the configured base URL:
//   - Bearer credentials are attached by an [oauth2.Transport] over a static token source
//   - Requests are paced by a token bucket limiter (golang.org/x/time/rate)
//   - A circuit breaker (sony/gobreaker) sheds calls while the service is failing
//
// # Response Normalization
//
// The service is inconsistent about list shapes. The Decode* functions accept a bare array, null,
// or an object wrapping the array under a family specific key ("tracks", "recentlyPlayed", ...) or a
// generic one ("data", "items", "results"), and always return a non-nil slice.
//
// # Error Handling
//
// Errors wrap sentinels from the shared package:
//   - [shared.ErrAPIRequest] : non-2xx status or a {"success": false} envelope
//   - [shared.ErrNotFound] : 404 status
//   - [shared.ErrServiceUnavailable] : circuit breaker open
package services
