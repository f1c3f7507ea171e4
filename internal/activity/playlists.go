package activity

import (
	"context"
	"slices"

	"github.com/desertthunder/groove/internal/models"
)

// GetPlaylists returns the user's playlists.
func (s *Synchronizer) GetPlaylists(ctx context.Context) []models.Playlist {
	if _, ok := s.authenticated(); !ok {
		return []models.Playlist{}
	}
	return load(s, ctx, s.playlists)
}

// CreatePlaylist returns a playlist addressed by a temporary id immediately and creates it remotely
// in the background. Once the create succeeds the family is reloaded and [Synchronizer.ResolveID]
// maps the temporary id to the server's.
func (s *Synchronizer) CreatePlaylist(ctx context.Context, name, description string, public bool) (models.Playlist, bool) {
	session, ok := s.authenticated()
	if !ok {
		return models.Playlist{}, false
	}

	playlist := models.Playlist{
		ID:          s.tempID(),
		Name:        name,
		Description: description,
		Tracks:      []models.Track{},
		Public:      public,
		OwnerID:     session.UserID,
		CreatedAt:   s.now(),
	}

	t := mutate(s, ctx, s.playlists, func(ps []models.Playlist) []models.Playlist {
		return append(ps, playlist)
	})

	s.background(ctx, func(ctx context.Context) {
		write(s, ctx, s.playlists, t, "create", func(ctx context.Context) error {
			created, err := s.remote.CreatePlaylist(ctx, playlist)
			if err != nil {
				return err
			}
			s.alias(t.epoch, playlist.ID, created.ID)
			return nil
		})
	})

	return playlist, true
}

// AddTrackToPlaylist appends track to the playlist and reports whether the remote accepted it.
func (s *Synchronizer) AddTrackToPlaylist(ctx context.Context, playlistID string, track models.Track) bool {
	return s.editPlaylist(ctx, playlistID, "add_track", func(p *models.Playlist) {
		if !p.HasTrack(track.ID) {
			p.Tracks = append(slices.Clone(p.Tracks), track)
		}
	}, func(ctx context.Context, id string) error {
		return s.remote.AddPlaylistTrack(ctx, id, track)
	})
}

// RemoveTrackFromPlaylist removes trackID from the playlist.
func (s *Synchronizer) RemoveTrackFromPlaylist(ctx context.Context, playlistID, trackID string) bool {
	return s.editPlaylist(ctx, playlistID, "remove_track", func(p *models.Playlist) {
		if i := models.IndexOfTrack(p.Tracks, trackID); i >= 0 {
			p.Tracks = slices.Delete(slices.Clone(p.Tracks), i, i+1)
		}
	}, func(ctx context.Context, id string) error {
		return s.remote.RemovePlaylistTrack(ctx, id, trackID)
	})
}

// DeletePlaylist deletes the playlist.
func (s *Synchronizer) DeletePlaylist(ctx context.Context, playlistID string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(playlistID)
	t := mutate(s, ctx, s.playlists, func(ps []models.Playlist) []models.Playlist {
		return slices.DeleteFunc(ps, func(p models.Playlist) bool { return p.ID == id || p.ID == playlistID })
	})

	if !s.synced(FamilyPlaylists, id) {
		return settle(s, ctx, s.playlists, t, false)
	}
	return write(s, ctx, s.playlists, t, "delete", func(ctx context.Context) error {
		return s.remote.DeletePlaylist(ctx, id)
	})
}

func (s *Synchronizer) editPlaylist(ctx context.Context, playlistID, op string, edit func(*models.Playlist), call func(context.Context, string) error) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(playlistID)
	t := mutate(s, ctx, s.playlists, func(ps []models.Playlist) []models.Playlist {
		for i := range ps {
			if ps[i].ID == id || ps[i].ID == playlistID {
				edit(&ps[i])
			}
		}
		return ps
	})

	if !s.synced(FamilyPlaylists, id) {
		return settle(s, ctx, s.playlists, t, false)
	}
	return write(s, ctx, s.playlists, t, op, func(ctx context.Context) error {
		return call(ctx, id)
	})
}
