package ui

import (
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/player"
)

// tracksLoadedMsg carries a freshly loaded track list for one of the panes.
type tracksLoadedMsg struct {
	pane   pane
	tracks []models.Track
	err    error
}

// playerUpdateMsg wraps a [player.Snapshot] published by the player.
type playerUpdateMsg player.Snapshot

// favoriteToggledMsg reports the outcome of a favorite toggle.
type favoriteToggledMsg struct {
	track    models.Track
	favorite bool
}

// playerClosedMsg is sent once the player's update channel is closed.
type playerClosedMsg struct{}
