package activity

import (
	"cmp"
	"context"
	"slices"

	"github.com/desertthunder/groove/internal/models"
)

// GetGenres returns the user's genres in display order.
func (s *Synchronizer) GetGenres(ctx context.Context) []models.Genre {
	if _, ok := s.authenticated(); !ok {
		return []models.Genre{}
	}
	return sortGenres(load(s, ctx, s.genres))
}

func sortGenres(genres []models.Genre) []models.Genre {
	slices.SortStableFunc(genres, func(a, b models.Genre) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return genres
}

// CreateGenre returns a genre addressed by a temporary id, ordered after the existing ones, and creates
// it remotely in the background.
func (s *Synchronizer) CreateGenre(ctx context.Context, name, description string) (models.Genre, bool) {
	session, ok := s.authenticated()
	if !ok {
		return models.Genre{}, false
	}

	genre := models.Genre{
		ID:          s.tempID(),
		Name:        name,
		Description: description,
		Tracks:      []models.Track{},
		OwnerID:     session.UserID,
	}

	t := mutate(s, ctx, s.genres, func(genres []models.Genre) []models.Genre {
		for _, g := range genres {
			genre.Order = max(genre.Order, g.Order+1)
		}
		return append(genres, genre)
	})

	s.background(ctx, func(ctx context.Context) {
		write(s, ctx, s.genres, t, "create", func(ctx context.Context) error {
			created, err := s.remote.CreateGenre(ctx, genre)
			if err != nil {
				return err
			}
			s.alias(t.epoch, genre.ID, created.ID)
			return nil
		})
	})

	return genre, true
}

// UpdateGenre replaces the genre's name, description, visibility and order.
func (s *Synchronizer) UpdateGenre(ctx context.Context, genre models.Genre) bool {
	return s.editGenre(ctx, genre.ID, "update", func(g *models.Genre) {
		tracks := g.Tracks
		*g = genre
		g.Tracks = tracks
	}, func(ctx context.Context, id string) error {
		genre.ID = id
		return s.remote.UpdateGenre(ctx, genre)
	})
}

// AddTrackToGenre appends track to the genre.
func (s *Synchronizer) AddTrackToGenre(ctx context.Context, genreID string, track models.Track) bool {
	return s.editGenre(ctx, genreID, "add_track", func(g *models.Genre) {
		if models.IndexOfTrack(g.Tracks, track.ID) < 0 {
			g.Tracks = append(slices.Clone(g.Tracks), track)
		}
	}, func(ctx context.Context, id string) error {
		return s.remote.AddGenreTrack(ctx, id, track)
	})
}

// RemoveTrackFromGenre removes trackID from the genre.
func (s *Synchronizer) RemoveTrackFromGenre(ctx context.Context, genreID, trackID string) bool {
	return s.editGenre(ctx, genreID, "remove_track", func(g *models.Genre) {
		if i := models.IndexOfTrack(g.Tracks, trackID); i >= 0 {
			g.Tracks = slices.Delete(slices.Clone(g.Tracks), i, i+1)
		}
	}, func(ctx context.Context, id string) error {
		return s.remote.RemoveGenreTrack(ctx, id, trackID)
	})
}

// DeleteGenre deletes the genre and drops it from the home layout.
func (s *Synchronizer) DeleteGenre(ctx context.Context, genreID string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(genreID)
	match := func(gid string) bool { return gid == id || gid == genreID }

	t := mutate(s, ctx, s.genres, func(genres []models.Genre) []models.Genre {
		return slices.DeleteFunc(genres, func(g models.Genre) bool { return match(g.ID) })
	})
	lt := mutate(s, ctx, s.layout, func(ids []string) []string {
		return slices.DeleteFunc(ids, match)
	})

	if !s.synced(FamilyGenres, id) {
		settle(s, ctx, s.layout, lt, false)
		return settle(s, ctx, s.genres, t, false)
	}

	ok := write(s, ctx, s.genres, t, "delete", func(ctx context.Context) error {
		return s.remote.DeleteGenre(ctx, id)
	})
	settle(s, ctx, s.layout, lt, ok)
	return ok
}

// ReorderGenres sets each genre's display order to its index in genreIDs. Genres not listed keep their
// relative order after the listed ones. The home layout subset is reordered to match and saved.
func (s *Synchronizer) ReorderGenres(ctx context.Context, genreIDs []string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	ids := make([]string, len(genreIDs))
	for i, id := range genreIDs {
		ids[i] = s.ResolveID(id)
	}

	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	for i, id := range genreIDs {
		rank[id] = i
	}
	position := func(id string) int {
		if r, ok := rank[id]; ok {
			return r
		}
		return len(ids)
	}

	t := mutate(s, ctx, s.genres, func(genres []models.Genre) []models.Genre {
		genres = sortGenres(genres)
		slices.SortStableFunc(genres, func(a, b models.Genre) int {
			return cmp.Compare(position(a.ID), position(b.ID))
		})
		for i := range genres {
			genres[i].Order = i
		}
		return genres
	})

	var layout []string
	lt := mutate(s, ctx, s.layout, func(current []string) []string {
		slices.SortStableFunc(current, func(a, b string) int {
			return cmp.Compare(position(a), position(b))
		})
		layout = make([]string, 0, len(current))
		for _, id := range current {
			layout = append(layout, s.resolve(id))
		}
		return current
	})

	for _, id := range ids {
		if !s.synced(FamilyGenres, id) {
			settle(s, ctx, s.layout, lt, false)
			return settle(s, ctx, s.genres, t, false)
		}
	}

	if !write(s, ctx, s.genres, t, "reorder", func(ctx context.Context) error {
		return s.remote.ReorderGenres(ctx, ids)
	}) {
		settle(s, ctx, s.layout, lt, false)
		return false
	}
	return write(s, ctx, s.layout, lt, "save", func(ctx context.Context) error {
		return s.remote.SaveHomeLayout(ctx, models.HomeLayout{GenreIDs: layout})
	})
}

// GetHomeLayout returns the ordered genre ids shown on the landing page.
func (s *Synchronizer) GetHomeLayout(ctx context.Context) []string {
	if _, ok := s.authenticated(); !ok {
		return []string{}
	}
	return load(s, ctx, s.layout)
}

// SaveHomeLayout replaces the landing page layout.
func (s *Synchronizer) SaveHomeLayout(ctx context.Context, genreIDs []string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	ids := make([]string, 0, len(genreIDs))
	for _, id := range genreIDs {
		ids = append(ids, s.ResolveID(id))
	}

	t := mutate(s, ctx, s.layout, func([]string) []string {
		return slices.Clone(ids)
	})

	return write(s, ctx, s.layout, t, "save", func(ctx context.Context) error {
		return s.remote.SaveHomeLayout(ctx, models.HomeLayout{GenreIDs: ids})
	})
}

func (s *Synchronizer) editGenre(ctx context.Context, genreID, op string, edit func(*models.Genre), call func(context.Context, string) error) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(genreID)
	t := mutate(s, ctx, s.genres, func(genres []models.Genre) []models.Genre {
		for i := range genres {
			if genres[i].ID == id || genres[i].ID == genreID {
				edit(&genres[i])
			}
		}
		return genres
	})

	if !s.synced(FamilyGenres, id) {
		return settle(s, ctx, s.genres, t, false)
	}
	return write(s, ctx, s.genres, t, op, func(ctx context.Context) error {
		return call(ctx, id)
	})
}
