package activity

import (
	"context"
	"slices"

	"github.com/desertthunder/groove/internal/models"
)

// GetFavorites returns the favorite set. Anonymous sessions always get an empty list.
func (s *Synchronizer) GetFavorites(ctx context.Context) []models.Track {
	if _, ok := s.authenticated(); !ok {
		return []models.Track{}
	}
	return load(s, ctx, s.favorites)
}

// ToggleFavorite flips track's membership in the favorite set and returns the membership the
// remote service computed. False is returned for anonymous sessions and on failure.
func (s *Synchronizer) ToggleFavorite(ctx context.Context, track models.Track) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	t := mutate(s, ctx, s.favorites, func(favs []models.Track) []models.Track {
		if i := models.IndexOfTrack(favs, track.ID); i >= 0 {
			return slices.Delete(favs, i, i+1)
		}
		return append(favs, track)
	})

	var isFavorite bool
	ok := write(s, ctx, s.favorites, t, "toggle", func(ctx context.Context) error {
		var err error
		isFavorite, err = s.remote.ToggleFavorite(ctx, track)
		return err
	})
	return ok && isFavorite
}

// IsFavorite reports whether trackID is in the local favorite set.
func (s *Synchronizer) IsFavorite(ctx context.Context, trackID string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	prime(s, ctx, s.favorites)
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.IndexOfTrack(s.favorites.items, trackID) >= 0
}
