// Package ui implements the interactive now-playing terminal interface using bubbletea's Elm architecture.
//
// The [Model] shows three track lists (catalog, recently played and favorites) above a now-playing
// pane. Selecting a track hands it to the shared [player.Player]; the model then follows the player
// through its update channel, so playback started anywhere else is reflected too.
//
// Keys: enter plays, space toggles play/pause, n/p move through the queue, f toggles the selected
// (or current) track as a favorite, tab cycles the lists and q quits.
package ui
