package activity

import (
	"context"
	"slices"

	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/repositories"
)

// RecordPlay records that track started playing.
//
// Anonymous sessions keep a bounded, de-duplicated history in the cache only. Authenticated sessions
// append an entry locally and post it to the remote service in the background. Every call adds history,
// including repeat plays of the same track.
func (s *Synchronizer) RecordPlay(ctx context.Context, track models.Track) {
	entry := models.RecentlyPlayedEntry{Tracks: []models.Track{track}, Timestamp: s.now()}

	if _, ok := s.authenticated(); !ok {
		s.recordAnonymous(ctx, entry)
		return
	}

	t := mutate(s, ctx, s.recent, func(entries []models.RecentlyPlayedEntry) []models.RecentlyPlayedEntry {
		entries = append(entries, entry)
		if len(entries) > HistoryLimit {
			entries = entries[len(entries)-HistoryLimit:]
		}
		return entries
	})

	s.background(ctx, func(ctx context.Context) {
		write(s, ctx, s.recent, t, "add", func(ctx context.Context) error {
			return s.remote.AddRecentlyPlayed(ctx, entry)
		})
	})
}

// recordAnonymous moves track to the front of the cached history, keeping at most [AnonymousHistoryLimit] entries.
func (s *Synchronizer) recordAnonymous(ctx context.Context, entry models.RecentlyPlayedEntry) {
	s.anonMu.Lock()
	defer s.anonMu.Unlock()

	history := s.anonymousHistory(ctx)
	trackID := entry.Tracks[0].ID
	history = slices.DeleteFunc(history, func(e models.RecentlyPlayedEntry) bool {
		return len(e.Tracks) > 0 && e.Tracks[0].ID == trackID
	})

	history = append([]models.RecentlyPlayedEntry{entry}, history...)
	if len(history) > AnonymousHistoryLimit {
		history = history[:AnonymousHistoryLimit]
	}

	s.persist(ctx, FamilyRecentlyPlayed, repositories.KeyRecentlyPlayed, history)
	s.emit(FamilyRecentlyPlayed, Optimistic, "")
}

func (s *Synchronizer) anonymousHistory(ctx context.Context) []models.RecentlyPlayedEntry {
	var history []models.RecentlyPlayedEntry
	if _, err := s.store.Get(ctx, repositories.KeyRecentlyPlayed, &history); err != nil {
		s.logger.Warn("cache read failed", "family", FamilyRecentlyPlayed, "error", err)
		return nil
	}
	return history
}

// GetRecentlyPlayed returns distinct played tracks, most recent first.
func (s *Synchronizer) GetRecentlyPlayed(ctx context.Context) []models.Track {
	if _, ok := s.authenticated(); !ok {
		s.anonMu.Lock()
		defer s.anonMu.Unlock()
		return flatten(s.anonymousHistory(ctx))
	}
	return flatten(load(s, ctx, s.recent))
}

// ClearRecentlyPlayed forgets the history of an anonymous session and reports whether it did.
//
// Authenticated history lives on the remote service, which cannot clear it, so the call is refused.
func (s *Synchronizer) ClearRecentlyPlayed(ctx context.Context) bool {
	if _, ok := s.authenticated(); ok {
		s.logger.Warn("refusing to clear remote history", "family", FamilyRecentlyPlayed)
		return false
	}

	s.anonMu.Lock()
	defer s.anonMu.Unlock()

	if err := s.store.Remove(ctx, repositories.KeyRecentlyPlayed); err != nil {
		s.logger.Warn("cache remove failed", "family", FamilyRecentlyPlayed, "error", err)
		return false
	}
	return true
}

// flatten orders entries newest first and returns each track once, at its most recent play.
func flatten(entries []models.RecentlyPlayedEntry) []models.Track {
	sorted := slices.Clone(entries)
	slices.Reverse(sorted)
	slices.SortStableFunc(sorted, func(a, b models.RecentlyPlayedEntry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	seen := make(map[string]bool)
	tracks := []models.Track{}
	for _, e := range sorted {
		for i := len(e.Tracks) - 1; i >= 0; i-- {
			t := e.Tracks[i]
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			tracks = append(tracks, t)
		}
	}
	return tracks
}
