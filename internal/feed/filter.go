package feed

import (
	"cmp"
	"slices"

	"github.com/desertthunder/groove/internal/models"
)

// Filter selects and orders posts for userID. It is the only implementation of the feed filters and is
// shared by the reference server, the live path and the mirror fallback.
//
//   - all: public posts, followers-only posts by followed authors, and the caller's own posts; newest first
//   - following: public or followers-only posts by followed authors; newest first
//   - trending: public posts by engagement score, ties broken newest first then by id
//
// Unknown filters behave like all.
func Filter(filter models.FeedFilter, userID string, posts []models.SocialPost, follows []models.Follow) []models.SocialPost {
	followed := following(userID, follows)
	out := []models.SocialPost{}

	for _, p := range posts {
		if include(filter, userID, followed, p) {
			out = append(out, p)
		}
	}

	if filter == models.FeedTrending {
		slices.SortStableFunc(out, func(a, b models.SocialPost) int {
			if c := cmp.Compare(b.EngagementScore(), a.EngagementScore()); c != 0 {
				return c
			}
			return newestFirst(a, b)
		})
		return out
	}

	slices.SortStableFunc(out, newestFirst)
	return out
}

func include(filter models.FeedFilter, userID string, followed map[string]bool, p models.SocialPost) bool {
	switch filter {
	case models.FeedFollowing:
		return followed[p.AuthorID] && (p.Visibility == models.VisibilityPublic || p.Visibility == models.VisibilityFollowers)
	case models.FeedTrending:
		return p.Visibility == models.VisibilityPublic
	default:
		switch {
		case userID != "" && p.AuthorID == userID:
			return true
		case p.Visibility == models.VisibilityPublic:
			return true
		case p.Visibility == models.VisibilityFollowers:
			return followed[p.AuthorID]
		default:
			return false
		}
	}
}

func newestFirst(a, b models.SocialPost) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// following returns the set of user ids userID follows.
func following(userID string, follows []models.Follow) map[string]bool {
	set := make(map[string]bool)
	if userID == "" {
		return set
	}
	for _, f := range follows {
		if f.FollowerID == userID {
			set[f.FollowingID] = true
		}
	}
	return set
}
