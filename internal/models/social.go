package models

import (
	"fmt"
	"time"
)

// Visibility controls who can see a [SocialPost].
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	default:
		return false
	}
}

// ParseVisibility converts s into a [Visibility], defaulting empty input to public.
func ParseVisibility(s string) (Visibility, error) {
	if s == "" {
		return VisibilityPublic, nil
	}
	v := Visibility(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown visibility %q", s)
	}
	return v, nil
}

// MediaKind is the type of entity a post can attach.
type MediaKind string

const (
	MediaTrack    MediaKind = "track"
	MediaPlaylist MediaKind = "playlist"
)

// MediaRef points a post at a single track or playlist.
type MediaRef struct {
	Type MediaKind `json:"type"`
	ID   string    `json:"id"`
}

// Reply answers a [Comment]. Replies do not nest further.
type Reply struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a top-level response to a post.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Replies   []Reply   `json:"replies"`
}

// SocialPost is an entry in the social feed.
type SocialPost struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName,omitempty"`
	Content    string     `json:"content"`
	Media      *MediaRef  `json:"media,omitempty"`
	Visibility Visibility `json:"visibility"`
	Likes      []string   `json:"likes"` // User ids, set semantics
	Comments   []Comment  `json:"comments"`
	ShareCount int        `json:"shareCount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// EngagementScore ranks posts in the trending feed.
func (p SocialPost) EngagementScore() int {
	return len(p.Likes) + len(p.Comments) + p.ShareCount
}

// LikedBy reports whether userID is in the post's like list.
func (p SocialPost) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike flips userID's membership in the like list and returns the new state.
func (p *SocialPost) ToggleLike(userID string) bool {
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
			return false
		}
	}
	p.Likes = append(p.Likes, userID)
	return true
}

// Follow is a directed edge from FollowerID to FollowingID.
type Follow struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}

// FeedFilter selects which posts a feed query returns.
type FeedFilter string

const (
	FeedAll       FeedFilter = "all"
	FeedFollowing FeedFilter = "following"
	FeedTrending  FeedFilter = "trending"
)

// ParseFeedFilter converts s into a [FeedFilter], defaulting empty input to all.
func ParseFeedFilter(s string) (FeedFilter, error) {
	switch FeedFilter(s) {
	case "":
		return FeedAll, nil
	case FeedAll, FeedFollowing, FeedTrending:
		return FeedFilter(s), nil
	default:
		return "", fmt.Errorf("unknown feed filter %q", s)
	}
}
