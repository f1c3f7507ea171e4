// Package models defines the plain data shapes shared by every groove component.
//
// The package contains two categories of types:
//
// 1. Library entities owned by the remote service:
//   - [Track] : Playable track referencing externally hosted video content
//   - [Playlist] : User playlist with ordered tracks and a visibility flag
//   - [Tag] : Colored label associated with many tracks
//   - [Genre] : Per-user track collection with a display order, plus [HomeLayout]
//   - [RecentlyPlayedEntry] : Batched play history record
//
// 2. Social entities:
//   - [SocialPost] : Feed entry with likes, comments and replies
//   - [Follow] : Directed follower edge
//   - [UserProfile] : Public account profile
//
// Entities carry no behaviour beyond small membership helpers. Locally created entities
// carry a temporary id (see [NewTempID]) until the remote service issues a real one.
package models
