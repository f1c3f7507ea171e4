package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/groove/internal/formatter"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/urfave/cli/v3"
)

// requireUser initializes the runner and fails for anonymous sessions.
func (r *Runner) requireUser(ctx context.Context) error {
	if err := r.init(ctx); err != nil {
		return err
	}
	if r.sync.Session().Anonymous() {
		return fmt.Errorf("%w: set session.user_id or GROOVE_USER_ID", shared.ErrNotAuthenticated)
	}
	return nil
}

// requireArg returns the named string argument or ErrMissingArgument.
func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.StringArg(name)
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// synced reports the outcome of a mutation that has already been applied locally.
func (r *Runner) synced(ok bool, what string) {
	if ok {
		r.writePlain("✓ %s\n", what)
		return
	}
	r.logger.Warn("remote did not accept change, keeping local state", "change", what)
	r.writePlain("! %s (saved locally, not synced)\n", what)
}

func (r *Runner) writeTracks(title string, tracks []models.Track, useJSON bool) error {
	if useJSON {
		return r.writeJSON(tracks, true)
	}

	out, err := formatter.TracksToText(title, tracks)
	if err != nil {
		return err
	}
	_, err = r.output.Write(out)
	return err
}

// History lists recently played tracks, most recent first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	tracks := r.sync.GetRecentlyPlayed(ctx)
	if limit := cmd.Int("limit"); limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return r.writeTracks("Recently Played", tracks, cmd.Bool("json"))
}

// HistoryClear forgets the history of an anonymous session. Signed-in history lives on the remote.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.init(ctx); err != nil {
		return err
	}

	if !r.config.Session.Anonymous() {
		return fmt.Errorf("%w: history of signed-in users is kept by the remote service", shared.ErrInvalidArgument)
	}
	if !r.sync.ClearRecentlyPlayed(ctx) {
		return fmt.Errorf("%w: could not clear history", shared.ErrCacheUnavailable)
	}
	r.writePlain("✓ Cleared recently played\n")
	return nil
}

// FavoritesList lists favorite tracks.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}
	return r.writeTracks("Favorites", r.sync.GetFavorites(ctx), cmd.Bool("json"))
}

// FavoritesToggle flips a track's favorite membership.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}
	track, err := r.findTrack(ctx, trackID)
	if err != nil {
		return err
	}

	ok := r.sync.ToggleFavorite(ctx, track)
	if r.sync.IsFavorite(ctx, track.ID) {
		r.synced(ok, fmt.Sprintf("Added %q to favorites", track.Title))
	} else {
		r.synced(ok, fmt.Sprintf("Removed %q from favorites", track.Title))
	}
	return nil
}

// PlaylistsList lists playlists with their track counts.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	playlists := r.sync.GetPlaylists(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader("Playlists")
	if len(playlists) == 0 {
		r.writePlain("No playlists\n")
		return nil
	}
	for _, p := range playlists {
		r.writePlain("%-24s %-30s %3d tracks  %s\n", p.ID, p.Name, len(p.Tracks), shared.VisibilityString(p.Public))
	}
	return nil
}

// PlaylistsCreate creates a playlist and prints the id assigned by the remote.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	playlist, _ := r.sync.CreatePlaylist(ctx, name, cmd.String("description"), cmd.Bool("public"))
	r.sync.Wait()

	id := r.sync.ResolveID(playlist.ID)
	r.synced(!models.IsTempID(id), fmt.Sprintf("Created playlist %q (%s)", name, id))
	return nil
}

// PlaylistsAdd appends a catalog track to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	playlistID, err := requireArg(cmd, "playlist-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}
	track, err := r.findTrack(ctx, trackID)
	if err != nil {
		return err
	}

	r.synced(r.sync.AddTrackToPlaylist(ctx, playlistID, track), fmt.Sprintf("Added %q to %s", track.Title, playlistID))
	return nil
}

// PlaylistsRemove removes a track from a playlist.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	playlistID, err := requireArg(cmd, "playlist-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.RemoveTrackFromPlaylist(ctx, playlistID, trackID), fmt.Sprintf("Removed %s from %s", trackID, playlistID))
	return nil
}

// PlaylistsDelete deletes a playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	playlistID, err := requireArg(cmd, "playlist-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.DeletePlaylist(ctx, playlistID), fmt.Sprintf("Deleted playlist %s", playlistID))
	return nil
}

// TagsList lists tags, optionally only those on one track.
func (r *Runner) TagsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	var tags []models.Tag
	if trackID := cmd.String("track"); trackID != "" {
		tags = r.sync.TagsForTrack(ctx, trackID)
	} else {
		tags = r.sync.GetTags(ctx)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tags, true)
	}

	r.writePlainHeader("Tags")
	if len(tags) == 0 {
		r.writePlain("No tags\n")
		return nil
	}
	for _, t := range tags {
		r.writePlain("%-24s %-20s %-9s %3d tracks\n", t.ID, t.Name, t.Color, len(t.TrackIDs))
	}
	return nil
}

// TagsCreate creates a tag.
func (r *Runner) TagsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	tag, _ := r.sync.CreateTag(ctx, name, cmd.String("color"))
	r.sync.Wait()

	id := r.sync.ResolveID(tag.ID)
	r.synced(!models.IsTempID(id), fmt.Sprintf("Created tag %q (%s)", name, id))
	return nil
}

// TagsAdd associates a track with a tag.
func (r *Runner) TagsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	tagID, err := requireArg(cmd, "tag-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.AddTrackToTag(ctx, tagID, trackID), fmt.Sprintf("Tagged %s with %s", trackID, tagID))
	return nil
}

// TagsRemove removes a track from a tag.
func (r *Runner) TagsRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	tagID, err := requireArg(cmd, "tag-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.RemoveTrackFromTag(ctx, tagID, trackID), fmt.Sprintf("Untagged %s from %s", trackID, tagID))
	return nil
}

// TagsDelete deletes a tag.
func (r *Runner) TagsDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	tagID, err := requireArg(cmd, "tag-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.DeleteTag(ctx, tagID), fmt.Sprintf("Deleted tag %s", tagID))
	return nil
}

// GenresList lists genres in display order.
func (r *Runner) GenresList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	genres := r.sync.GetGenres(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}

	r.writePlainHeader("Genres")
	if len(genres) == 0 {
		r.writePlain("No genres\n")
		return nil
	}
	for _, g := range genres {
		r.writePlain("%2d. %-24s %-24s %3d tracks\n", g.Order, g.ID, g.Name, len(g.Tracks))
	}
	return nil
}

// GenresCreate creates a genre at the end of the display order.
func (r *Runner) GenresCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}

	genre, _ := r.sync.CreateGenre(ctx, name, cmd.String("description"))
	r.sync.Wait()

	id := r.sync.ResolveID(genre.ID)
	r.synced(!models.IsTempID(id), fmt.Sprintf("Created genre %q (%s)", name, id))
	return nil
}

// GenresAdd adds a catalog track to a genre.
func (r *Runner) GenresAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	genreID, err := requireArg(cmd, "genre-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}
	track, err := r.findTrack(ctx, trackID)
	if err != nil {
		return err
	}

	r.synced(r.sync.AddTrackToGenre(ctx, genreID, track), fmt.Sprintf("Added %q to %s", track.Title, genreID))
	return nil
}

// GenresRemove removes a track from a genre.
func (r *Runner) GenresRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	genreID, err := requireArg(cmd, "genre-id")
	if err != nil {
		return err
	}
	trackID, err := requireArg(cmd, "track-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.RemoveTrackFromGenre(ctx, genreID, trackID), fmt.Sprintf("Removed %s from %s", trackID, genreID))
	return nil
}

// GenresDelete deletes a genre and drops it from the home layout.
func (r *Runner) GenresDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	genreID, err := requireArg(cmd, "genre-id")
	if err != nil {
		return err
	}

	r.synced(r.sync.DeleteGenre(ctx, genreID), fmt.Sprintf("Deleted genre %s", genreID))
	return nil
}

// GenresReorder sets the display order to the listed ids.
func (r *Runner) GenresReorder(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: <genre-id>...", shared.ErrMissingArgument)
	}

	r.synced(r.sync.ReorderGenres(ctx, ids), "Reordered genres")
	return nil
}

// GenresLayout prints the home layout, or replaces it when ids are given.
func (r *Runner) GenresLayout(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireUser(ctx); err != nil {
		return err
	}

	if ids := cmd.Args().Slice(); len(ids) > 0 {
		r.synced(r.sync.SaveHomeLayout(ctx, ids), "Saved home layout")
		return nil
	}

	layout := r.sync.GetHomeLayout(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(models.HomeLayout{GenreIDs: layout}, true)
	}

	r.writePlainHeader("Home Layout")
	if len(layout) == 0 {
		r.writePlain("No genres on the home screen\n")
		return nil
	}
	for i, id := range layout {
		r.writePlain("%2d. %s\n", i+1, id)
	}
	return nil
}
