// Package server is an in-memory reference implementation of the remote data service.
//
// It backs `groove serve` and the end-to-end tests of the HTTP client. Routes live under /api and are
// served by a chi router with request logging and bearer authentication middleware. The bearer token
// is taken as the user id; there is no token issuance.
//
// Responses deliberately mix shapes: some lists are bare arrays, others are wrapped under a key
// ("tracks", "favorites", "data", "posts") and created entities come back both bare and wrapped, so
// clients have to normalize. Feed queries run [feed.Filter] over the server's posts and follow edges.
package server
