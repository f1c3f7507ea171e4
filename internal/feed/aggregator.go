package feed

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/repositories"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
)

// Aggregator serves the social feed from the remote service and keeps a local mirror of every post and
// follow edge it has seen. When the remote is unavailable the feed is recomputed from the mirror with
// [Filter], so both paths order posts identically.
//
// Like the activity synchronizer, no method returns an error: failures are logged and degrade to the
// mirror, nil or false.
type Aggregator struct {
	mu     sync.Mutex
	remote services.SocialRemote
	store  repositories.Store
	logger *log.Logger
	now    func() time.Time

	lastTemp int64
}

// NewAggregator creates an Aggregator mirroring into store.
func NewAggregator(remote services.SocialRemote, store repositories.Store, logger *log.Logger) *Aggregator {
	if store == nil {
		store = repositories.NewMemoryStore()
	}
	return &Aggregator{
		remote: remote,
		store:  store,
		logger: shared.WithLogger(logger, "component", "feed"),
		now:    time.Now,
	}
}

// GetFeed returns userID's feed for filter. An empty userID reads the anonymous feed.
func (a *Aggregator) GetFeed(ctx context.Context, userID string, filter models.FeedFilter) []models.SocialPost {
	posts, err := a.remote.GetFeed(ctx, filter)
	if err == nil {
		a.refresh(ctx, userID, posts)
		if posts == nil {
			posts = []models.SocialPost{}
		}
		return posts
	}

	a.logger.Warn("remote feed failed, recomputing from mirror", "filter", filter, "error", err)
	posts, follows := a.mirror(ctx, userID)
	return Filter(filter, userID, posts, follows)
}

// Following returns the ids of the accounts userID follows.
func (a *Aggregator) Following(ctx context.Context, userID string) []string {
	if userID == "" {
		return nil
	}

	follows, err := a.remote.GetFollows(ctx)
	if err == nil {
		a.saveFollows(ctx, userID, follows)
	} else {
		a.logger.Warn("remote follows failed, using mirror", "error", err)
		_, follows = a.mirror(ctx, userID)
	}

	ids := []string{}
	for _, f := range follows {
		if f.FollowerID == userID {
			ids = append(ids, f.FollowingID)
		}
	}
	return ids
}

// CreatePost publishes a post authored by userID. The post is mirrored under a temporary id first and
// replaced by the server's copy on success. Nil is returned when the remote rejects it.
func (a *Aggregator) CreatePost(ctx context.Context, userID, content string, media *models.MediaRef, visibility models.Visibility) *models.SocialPost {
	if userID == "" {
		return nil
	}
	if strings.TrimSpace(content) == "" && media == nil {
		a.logger.Warn("refusing empty post", "error", shared.ErrInvalidInput)
		return nil
	}
	if !visibility.Valid() {
		visibility = models.VisibilityPublic
	}

	local := models.SocialPost{
		ID:         a.tempID(),
		AuthorID:   userID,
		Content:    content,
		Media:      media,
		Visibility: visibility,
		Likes:      []string{},
		Comments:   []models.Comment{},
		CreatedAt:  a.now(),
	}
	a.updatePosts(ctx, userID, func(posts []models.SocialPost) []models.SocialPost {
		return append(posts, local)
	})

	created, err := a.remote.CreatePost(ctx, local)
	if err != nil {
		a.logger.Warn("remote create post failed, keeping mirrored copy", "error", err)
		return nil
	}

	a.updatePosts(ctx, userID, func(posts []models.SocialPost) []models.SocialPost {
		posts = slices.DeleteFunc(posts, func(p models.SocialPost) bool { return p.ID == local.ID })
		return upsert(posts, *created)
	})
	return created
}

// ToggleLike flips userID's like on postID and returns the state the server settled on.
func (a *Aggregator) ToggleLike(ctx context.Context, userID, postID string) bool {
	if userID == "" {
		return false
	}

	a.editPost(ctx, userID, postID, func(p *models.SocialPost) {
		p.Likes = slices.Clone(p.Likes)
		p.ToggleLike(userID)
	})

	liked, err := a.remote.LikePost(ctx, postID)
	if err != nil {
		a.logger.Warn("remote like failed, keeping mirrored state", "post", postID, "error", err)
		return false
	}

	a.editPost(ctx, userID, postID, func(p *models.SocialPost) {
		if p.LikedBy(userID) != liked {
			p.Likes = slices.Clone(p.Likes)
			p.ToggleLike(userID)
		}
	})
	return liked
}

// AddComment comments on postID.
func (a *Aggregator) AddComment(ctx context.Context, userID, postID, content string) *models.Comment {
	if userID == "" {
		return nil
	}
	if strings.TrimSpace(content) == "" {
		a.logger.Warn("refusing empty comment", "error", shared.ErrInvalidInput)
		return nil
	}

	tempID := a.tempID()
	a.editPost(ctx, userID, postID, func(p *models.SocialPost) {
		p.Comments = append(slices.Clone(p.Comments), models.Comment{
			ID: tempID, AuthorID: userID, Content: content, CreatedAt: a.now(),
		})
	})

	comment, err := a.remote.AddComment(ctx, postID, content)
	if err != nil {
		a.logger.Warn("remote comment failed, keeping mirrored copy", "post", postID, "error", err)
		return nil
	}

	a.editPost(ctx, userID, postID, func(p *models.SocialPost) {
		p.Comments = slices.Clone(p.Comments)
		for i := range p.Comments {
			if p.Comments[i].ID == tempID {
				p.Comments[i] = *comment
			}
		}
	})
	return comment
}

// AddReply replies to commentID on postID.
func (a *Aggregator) AddReply(ctx context.Context, userID, postID, commentID, content string) *models.Reply {
	if userID == "" {
		return nil
	}
	if strings.TrimSpace(content) == "" {
		a.logger.Warn("refusing empty reply", "error", shared.ErrInvalidInput)
		return nil
	}

	reply, err := a.remote.AddReply(ctx, postID, commentID, content)
	if err != nil {
		a.logger.Warn("remote reply failed", "post", postID, "comment", commentID, "error", err)
		return nil
	}

	a.editPost(ctx, userID, postID, func(p *models.SocialPost) {
		p.Comments = slices.Clone(p.Comments)
		for i := range p.Comments {
			if p.Comments[i].ID == commentID {
				p.Comments[i].Replies = append(slices.Clone(p.Comments[i].Replies), *reply)
			}
		}
	})
	return reply
}

// Follow makes userID follow targetID. Self-follows and edges already present in the mirror are
// rejected before the remote is contacted.
func (a *Aggregator) Follow(ctx context.Context, userID, targetID string) bool {
	if userID == "" {
		return false
	}
	if err := a.validateFollow(ctx, userID, targetID); err != nil {
		a.logger.Warn("follow rejected", "target", targetID, "error", err)
		return false
	}

	edge := models.Follow{FollowerID: userID, FollowingID: targetID}
	a.updateFollows(ctx, userID, func(follows []models.Follow) []models.Follow {
		return append(follows, edge)
	})

	if err := a.remote.Follow(ctx, targetID); err != nil {
		a.logger.Warn("remote follow failed, keeping mirrored edge", "target", targetID, "error", err)
		return false
	}
	return true
}

// Unfollow removes the edge from userID to targetID.
func (a *Aggregator) Unfollow(ctx context.Context, userID, targetID string) bool {
	if userID == "" {
		return false
	}

	a.updateFollows(ctx, userID, func(follows []models.Follow) []models.Follow {
		return slices.DeleteFunc(follows, func(f models.Follow) bool {
			return f.FollowerID == userID && f.FollowingID == targetID
		})
	})

	if err := a.remote.Unfollow(ctx, targetID); err != nil {
		a.logger.Warn("remote unfollow failed, keeping mirrored state", "target", targetID, "error", err)
		return false
	}
	return true
}

// tempID returns a temporary id unique within this aggregator, even when the clock has not advanced.
func (a *Aggregator) tempID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	ms := a.now().UnixMilli()
	if ms <= a.lastTemp {
		ms = a.lastTemp + 1
	}
	a.lastTemp = ms
	return models.NewTempID(time.UnixMilli(ms))
}

func (a *Aggregator) validateFollow(ctx context.Context, userID, targetID string) error {
	if targetID == "" {
		return fmt.Errorf("%w: missing account to follow", shared.ErrInvalidInput)
	}
	if targetID == userID {
		return shared.ErrSelfFollow
	}

	_, follows := a.mirror(ctx, userID)
	for _, f := range follows {
		if f.FollowerID == userID && f.FollowingID == targetID {
			return fmt.Errorf("%w: already following %s", shared.ErrDuplicateFollow, targetID)
		}
	}
	return nil
}

// refresh upserts posts into the mirror and, for a known user, replaces the mirrored follow edges.
func (a *Aggregator) refresh(ctx context.Context, userID string, posts []models.SocialPost) {
	a.updatePosts(ctx, userID, func(mirrored []models.SocialPost) []models.SocialPost {
		for _, p := range posts {
			mirrored = upsert(mirrored, p)
		}
		return mirrored
	})

	if userID == "" {
		return
	}
	follows, err := a.remote.GetFollows(ctx)
	if err != nil {
		a.logger.Warn("mirror follow refresh failed", "error", err)
		return
	}
	a.saveFollows(ctx, userID, follows)
}

func (a *Aggregator) saveFollows(ctx context.Context, userID string, follows []models.Follow) {
	a.updateFollows(ctx, userID, func([]models.Follow) []models.Follow {
		return follows
	})
}

// mirror returns the mirrored posts and follow edges for userID.
func (a *Aggregator) mirror(ctx context.Context, userID string) ([]models.SocialPost, []models.Follow) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadPosts(ctx, userID), a.loadFollows(ctx, userID)
}

func (a *Aggregator) loadPosts(ctx context.Context, userID string) []models.SocialPost {
	var posts []models.SocialPost
	key := repositories.ScopedKey(repositories.KeySocialPosts, userID)
	if _, err := a.store.Get(ctx, key, &posts); err != nil {
		a.logger.Warn("mirror read failed", "key", key, "error", err)
	}
	return posts
}

func (a *Aggregator) loadFollows(ctx context.Context, userID string) []models.Follow {
	var follows []models.Follow
	key := repositories.ScopedKey(repositories.KeySocialFollows, userID)
	if _, err := a.store.Get(ctx, key, &follows); err != nil {
		a.logger.Warn("mirror read failed", "key", key, "error", err)
	}
	return follows
}

func (a *Aggregator) updatePosts(ctx context.Context, userID string, fn func([]models.SocialPost) []models.SocialPost) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := repositories.ScopedKey(repositories.KeySocialPosts, userID)
	if err := a.store.Set(ctx, key, fn(a.loadPosts(ctx, userID))); err != nil {
		a.logger.Warn("mirror write failed", "key", key, "error", err)
	}
}

func (a *Aggregator) updateFollows(ctx context.Context, userID string, fn func([]models.Follow) []models.Follow) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := repositories.ScopedKey(repositories.KeySocialFollows, userID)
	if err := a.store.Set(ctx, key, fn(a.loadFollows(ctx, userID))); err != nil {
		a.logger.Warn("mirror write failed", "key", key, "error", err)
	}
}

func (a *Aggregator) editPost(ctx context.Context, userID, postID string, edit func(*models.SocialPost)) {
	a.updatePosts(ctx, userID, func(posts []models.SocialPost) []models.SocialPost {
		for i := range posts {
			if posts[i].ID == postID {
				edit(&posts[i])
			}
		}
		return posts
	})
}

// upsert replaces the post with p's id or appends p.
func upsert(posts []models.SocialPost, p models.SocialPost) []models.SocialPost {
	for i := range posts {
		if posts[i].ID == p.ID {
			posts[i] = p
			return posts
		}
	}
	return append(posts, p)
}
