package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/urfave/cli/v3"
)

// Feed prints the social feed for the configured user. Anonymous sessions see public posts.
func (r *Runner) Feed(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	filter, err := models.ParseFeedFilter(cmd.String("filter"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	posts := r.feed.GetFeed(ctx, r.sync.Session().UserID, filter)
	if cmd.Bool("json") {
		return r.writeJSON(posts, true)
	}

	r.writePlainHeader(fmt.Sprintf("Feed (%s)", filter))
	if len(posts) == 0 {
		r.writePlain("No posts\n")
		return nil
	}
	for _, p := range posts {
		r.writePost(p)
	}
	return nil
}

func (r *Runner) writePost(p models.SocialPost) {
	author := p.AuthorName
	if author == "" {
		author = p.AuthorID
	}

	r.writePlain("\n%s  @%s  %s  [%s]\n", p.ID, author, p.CreatedAt.Format("2006-01-02 15:04"), p.Visibility)
	if p.Content != "" {
		r.writePlain("  %s\n", p.Content)
	}
	if p.Media != nil {
		r.writePlain("  ♪ %s %s\n", p.Media.Type, p.Media.ID)
	}
	r.writePlain("  ♥ %d  💬 %d  ↻ %d\n", len(p.Likes), len(p.Comments), p.ShareCount)

	for _, c := range p.Comments {
		r.writePlain("    %s @%s: %s\n", c.ID, c.AuthorID, c.Content)
		for _, reply := range c.Replies {
			r.writePlain("      ↳ @%s: %s\n", reply.AuthorID, reply.Content)
		}
	}
}

// SocialPost publishes a post, optionally attaching a track or playlist.
func (r *Runner) SocialPost(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	trackID, playlistID := cmd.String("track"), cmd.String("playlist")
	if trackID != "" && playlistID != "" {
		return fmt.Errorf("%w: cannot attach both --track and --playlist", shared.ErrInvalidArgument)
	}

	var media *models.MediaRef
	switch {
	case trackID != "":
		media = &models.MediaRef{Type: models.MediaTrack, ID: trackID}
	case playlistID != "":
		media = &models.MediaRef{Type: models.MediaPlaylist, ID: r.sync.ResolveID(playlistID)}
	}

	content := cmd.StringArg("content")
	if content == "" && media == nil {
		return fmt.Errorf("%w: a post needs content or an attachment", shared.ErrMissingArgument)
	}

	visibility, err := models.ParseVisibility(cmd.String("visibility"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	post := r.feed.CreatePost(ctx, r.sync.Session().UserID, content, media, visibility)
	if post == nil {
		r.synced(false, "Posted")
		return nil
	}
	r.synced(true, fmt.Sprintf("Posted %s", post.ID))
	return nil
}

// SocialLike toggles the user's like on a post.
func (r *Runner) SocialLike(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	postID, err := requireArg(cmd, "post-id")
	if err != nil {
		return err
	}

	liked := r.feed.ToggleLike(ctx, r.sync.Session().UserID, postID)
	if liked {
		r.writePlain("♥ Liked %s\n", postID)
	} else {
		r.writePlain("♡ %s is not liked\n", postID)
	}
	return nil
}

// SocialComment comments on a post.
func (r *Runner) SocialComment(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	postID, err := requireArg(cmd, "post-id")
	if err != nil {
		return err
	}
	content, err := requireArg(cmd, "content")
	if err != nil {
		return err
	}

	comment := r.feed.AddComment(ctx, r.sync.Session().UserID, postID, content)
	if comment == nil {
		r.synced(false, fmt.Sprintf("Commented on %s", postID))
		return nil
	}
	r.synced(true, fmt.Sprintf("Commented on %s (%s)", postID, comment.ID))
	return nil
}

// SocialReply replies to a comment.
func (r *Runner) SocialReply(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	postID, err := requireArg(cmd, "post-id")
	if err != nil {
		return err
	}
	commentID, err := requireArg(cmd, "comment-id")
	if err != nil {
		return err
	}
	content, err := requireArg(cmd, "content")
	if err != nil {
		return err
	}

	reply := r.feed.AddReply(ctx, r.sync.Session().UserID, postID, commentID, content)
	if reply == nil {
		return fmt.Errorf("%w: reply to %s was not accepted", shared.ErrAPIRequest, commentID)
	}
	r.writePlain("✓ Replied to %s\n", commentID)
	return nil
}

// SocialFollow follows a user.
func (r *Runner) SocialFollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	target, err := requireArg(cmd, "user-id")
	if err != nil {
		return err
	}

	userID := r.sync.Session().UserID
	if target == userID {
		return shared.ErrSelfFollow
	}
	if slices.Contains(r.feed.Following(ctx, userID), target) {
		return fmt.Errorf("%w: %s", shared.ErrDuplicateFollow, target)
	}

	r.synced(r.feed.Follow(ctx, userID, target), fmt.Sprintf("Following %s", target))
	return nil
}

// SocialUnfollow unfollows a user.
func (r *Runner) SocialUnfollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	target, err := requireArg(cmd, "user-id")
	if err != nil {
		return err
	}

	r.synced(r.feed.Unfollow(ctx, r.sync.Session().UserID, target), fmt.Sprintf("Unfollowed %s", target))
	return nil
}

// SocialFollowing lists the accounts the user follows.
func (r *Runner) SocialFollowing(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	ids := r.feed.Following(ctx, r.sync.Session().UserID)
	if cmd.Bool("json") {
		return r.writeJSON(ids, true)
	}

	r.writePlainHeader("Following")
	if len(ids) == 0 {
		r.writePlain("Not following anyone\n")
		return nil
	}
	for _, id := range ids {
		r.writePlain("@%s\n", id)
	}
	return nil
}
