package activity

import (
	"context"
	"slices"

	"github.com/desertthunder/groove/internal/models"
)

// GetTags returns the user's tags.
func (s *Synchronizer) GetTags(ctx context.Context) []models.Tag {
	if _, ok := s.authenticated(); !ok {
		return []models.Tag{}
	}
	return load(s, ctx, s.tags)
}

// TagsForTrack returns the tags associated with trackID.
func (s *Synchronizer) TagsForTrack(ctx context.Context, trackID string) []models.Tag {
	tags := []models.Tag{}
	for _, t := range s.GetTags(ctx) {
		if t.HasTrack(trackID) {
			tags = append(tags, t)
		}
	}
	return tags
}

// CreateTag returns a tag addressed by a temporary id and creates it remotely in the background.
func (s *Synchronizer) CreateTag(ctx context.Context, name, color string) (models.Tag, bool) {
	if _, ok := s.authenticated(); !ok {
		return models.Tag{}, false
	}

	tag := models.Tag{ID: s.tempID(), Name: name, Color: color, TrackIDs: []string{}}
	t := mutate(s, ctx, s.tags, func(tags []models.Tag) []models.Tag {
		return append(tags, tag)
	})

	s.background(ctx, func(ctx context.Context) {
		write(s, ctx, s.tags, t, "create", func(ctx context.Context) error {
			created, err := s.remote.CreateTag(ctx, tag)
			if err != nil {
				return err
			}
			s.alias(t.epoch, tag.ID, created.ID)
			return nil
		})
	})

	return tag, true
}

// AddTrackToTag associates trackID with the tag.
func (s *Synchronizer) AddTrackToTag(ctx context.Context, tagID, trackID string) bool {
	return s.editTag(ctx, tagID, "add_track", func(tag *models.Tag) {
		if !tag.HasTrack(trackID) {
			tag.TrackIDs = append(slices.Clone(tag.TrackIDs), trackID)
		}
	}, func(ctx context.Context, id string) error {
		return s.remote.AddTagTrack(ctx, id, trackID)
	})
}

// RemoveTrackFromTag dissociates trackID from the tag.
func (s *Synchronizer) RemoveTrackFromTag(ctx context.Context, tagID, trackID string) bool {
	return s.editTag(ctx, tagID, "remove_track", func(tag *models.Tag) {
		tag.TrackIDs = slices.DeleteFunc(slices.Clone(tag.TrackIDs), func(id string) bool { return id == trackID })
	}, func(ctx context.Context, id string) error {
		return s.remote.RemoveTagTrack(ctx, id, trackID)
	})
}

// DeleteTag deletes the tag.
func (s *Synchronizer) DeleteTag(ctx context.Context, tagID string) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(tagID)
	t := mutate(s, ctx, s.tags, func(tags []models.Tag) []models.Tag {
		return slices.DeleteFunc(tags, func(tag models.Tag) bool { return tag.ID == id || tag.ID == tagID })
	})

	if !s.synced(FamilyTags, id) {
		return settle(s, ctx, s.tags, t, false)
	}
	return write(s, ctx, s.tags, t, "delete", func(ctx context.Context) error {
		return s.remote.DeleteTag(ctx, id)
	})
}

func (s *Synchronizer) editTag(ctx context.Context, tagID, op string, edit func(*models.Tag), call func(context.Context, string) error) bool {
	if _, ok := s.authenticated(); !ok {
		return false
	}

	id := s.ResolveID(tagID)
	t := mutate(s, ctx, s.tags, func(tags []models.Tag) []models.Tag {
		for i := range tags {
			if tags[i].ID == id || tags[i].ID == tagID {
				edit(&tags[i])
			}
		}
		return tags
	})

	if !s.synced(FamilyTags, id) {
		return settle(s, ctx, s.tags, t, false)
	}
	return write(s, ctx, s.tags, t, op, func(ctx context.Context) error {
		return call(ctx, id)
	})
}
