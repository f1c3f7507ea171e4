package testing

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/groove/internal/models"
)

// FeedFunc computes a feed for the fake remote.
type FeedFunc func(filter models.FeedFilter, userID string, posts []models.SocialPost, follows []models.Follow) []models.SocialPost

// FakeRemote is an in-memory test double for the remote data service.
//
// Setting Err makes every call fail. Setting a gate with [FakeRemote.Hold] blocks mutating calls
// until [FakeRemote.Release] so tests can observe optimistic state while a write is in flight.
type FakeRemote struct {
	mu sync.Mutex

	UserID    string
	Tracks    []models.Track
	Recent    []models.RecentlyPlayedEntry
	Favorites []models.Track
	Playlists []models.Playlist
	Tags      []models.Tag
	Genres    []models.Genre
	Layout    models.HomeLayout
	Posts     []models.SocialPost
	Follows   []models.Follow
	Feed      FeedFunc

	err    error
	gate   chan struct{}
	calls  map[string]int
	nextID int
}

// NewFakeRemote creates an empty fake remote acting for userID.
func NewFakeRemote(userID string) *FakeRemote {
	return &FakeRemote{UserID: userID, calls: make(map[string]int)}
}

// SetErr makes every subsequent call return err. Pass nil to recover.
func (f *FakeRemote) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Hold blocks mutating calls until Release is called.
func (f *FakeRemote) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
}

// Release unblocks calls held by Hold.
func (f *FakeRemote) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Calls returns how many times method was invoked.
func (f *FakeRemote) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Snapshot runs fn with the fake's state locked.
func (f *FakeRemote) Snapshot(fn func(f *FakeRemote)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *FakeRemote) read(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.err
}

// write waits on the gate then locks; callers must unlock.
func (f *FakeRemote) write(ctx context.Context, method string) error {
	f.mu.Lock()
	gate := f.gate
	f.calls[method]++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			return ctx.Err()
		}
	}

	f.mu.Lock()
	return f.err
}

func (f *FakeRemote) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *FakeRemote) ListTracks(ctx context.Context, genreID string) ([]models.Track, error) {
	if err := f.read("ListTracks"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if genreID == "" {
		return slices.Clone(f.Tracks), nil
	}
	for _, g := range f.Genres {
		if g.ID == genreID {
			return slices.Clone(g.Tracks), nil
		}
	}
	return []models.Track{}, nil
}

func (f *FakeRemote) GetRecentlyPlayed(ctx context.Context) ([]models.RecentlyPlayedEntry, error) {
	if err := f.read("GetRecentlyPlayed"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Recent), nil
}

func (f *FakeRemote) AddRecentlyPlayed(ctx context.Context, entry models.RecentlyPlayedEntry) error {
	err := f.write(ctx, "AddRecentlyPlayed")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Recent = append(f.Recent, entry)
	return nil
}

func (f *FakeRemote) GetFavorites(ctx context.Context) ([]models.Track, error) {
	if err := f.read("GetFavorites"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Favorites), nil
}

func (f *FakeRemote) ToggleFavorite(ctx context.Context, track models.Track) (bool, error) {
	err := f.write(ctx, "ToggleFavorite")
	defer f.mu.Unlock()
	if err != nil {
		return false, err
	}
	if i := models.IndexOfTrack(f.Favorites, track.ID); i >= 0 {
		f.Favorites = slices.Delete(f.Favorites, i, i+1)
		return false, nil
	}
	f.Favorites = append(f.Favorites, track)
	return true, nil
}

func (f *FakeRemote) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := f.read("GetPlaylists"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Playlists), nil
}

func (f *FakeRemote) CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error) {
	err := f.write(ctx, "CreatePlaylist")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	playlist.ID = f.id("pl")
	playlist.OwnerID = f.UserID
	if playlist.Tracks == nil {
		playlist.Tracks = []models.Track{}
	}
	f.Playlists = append(f.Playlists, playlist)
	return &playlist, nil
}

func (f *FakeRemote) playlist(id string) (*models.Playlist, error) {
	for i := range f.Playlists {
		if f.Playlists[i].ID == id {
			return &f.Playlists[i], nil
		}
	}
	return nil, fmt.Errorf("playlist %s not found", id)
}

func (f *FakeRemote) AddPlaylistTrack(ctx context.Context, playlistID string, track models.Track) error {
	err := f.write(ctx, "AddPlaylistTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	p, err := f.playlist(playlistID)
	if err != nil {
		return err
	}
	if !p.HasTrack(track.ID) {
		p.Tracks = append(p.Tracks, track)
	}
	return nil
}

func (f *FakeRemote) RemovePlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	err := f.write(ctx, "RemovePlaylistTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	p, err := f.playlist(playlistID)
	if err != nil {
		return err
	}
	if i := models.IndexOfTrack(p.Tracks, trackID); i >= 0 {
		p.Tracks = slices.Delete(p.Tracks, i, i+1)
	}
	return nil
}

func (f *FakeRemote) DeletePlaylist(ctx context.Context, playlistID string) error {
	err := f.write(ctx, "DeletePlaylist")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Playlists = slices.DeleteFunc(f.Playlists, func(p models.Playlist) bool { return p.ID == playlistID })
	return nil
}

func (f *FakeRemote) GetTags(ctx context.Context) ([]models.Tag, error) {
	if err := f.read("GetTags"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Tags), nil
}

func (f *FakeRemote) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	err := f.write(ctx, "CreateTag")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	tag.ID = f.id("tag")
	if tag.TrackIDs == nil {
		tag.TrackIDs = []string{}
	}
	f.Tags = append(f.Tags, tag)
	return &tag, nil
}

func (f *FakeRemote) tag(id string) (*models.Tag, error) {
	for i := range f.Tags {
		if f.Tags[i].ID == id {
			return &f.Tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %s not found", id)
}

func (f *FakeRemote) AddTagTrack(ctx context.Context, tagID, trackID string) error {
	err := f.write(ctx, "AddTagTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	t, err := f.tag(tagID)
	if err != nil {
		return err
	}
	if !t.HasTrack(trackID) {
		t.TrackIDs = append(t.TrackIDs, trackID)
	}
	return nil
}

func (f *FakeRemote) RemoveTagTrack(ctx context.Context, tagID, trackID string) error {
	err := f.write(ctx, "RemoveTagTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	t, err := f.tag(tagID)
	if err != nil {
		return err
	}
	t.TrackIDs = slices.DeleteFunc(t.TrackIDs, func(id string) bool { return id == trackID })
	return nil
}

func (f *FakeRemote) DeleteTag(ctx context.Context, tagID string) error {
	err := f.write(ctx, "DeleteTag")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Tags = slices.DeleteFunc(f.Tags, func(t models.Tag) bool { return t.ID == tagID })
	return nil
}

func (f *FakeRemote) GetGenres(ctx context.Context) ([]models.Genre, error) {
	if err := f.read("GetGenres"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Genres), nil
}

func (f *FakeRemote) CreateGenre(ctx context.Context, genre models.Genre) (*models.Genre, error) {
	err := f.write(ctx, "CreateGenre")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	genre.ID = f.id("genre")
	if genre.Tracks == nil {
		genre.Tracks = []models.Track{}
	}
	f.Genres = append(f.Genres, genre)
	return &genre, nil
}

func (f *FakeRemote) genre(id string) (*models.Genre, error) {
	for i := range f.Genres {
		if f.Genres[i].ID == id {
			return &f.Genres[i], nil
		}
	}
	return nil, fmt.Errorf("genre %s not found", id)
}

func (f *FakeRemote) UpdateGenre(ctx context.Context, genre models.Genre) error {
	err := f.write(ctx, "UpdateGenre")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	g, err := f.genre(genre.ID)
	if err != nil {
		return err
	}
	*g = genre
	return nil
}

func (f *FakeRemote) DeleteGenre(ctx context.Context, genreID string) error {
	err := f.write(ctx, "DeleteGenre")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Genres = slices.DeleteFunc(f.Genres, func(g models.Genre) bool { return g.ID == genreID })
	f.Layout.GenreIDs = slices.DeleteFunc(f.Layout.GenreIDs, func(id string) bool { return id == genreID })
	return nil
}

func (f *FakeRemote) AddGenreTrack(ctx context.Context, genreID string, track models.Track) error {
	err := f.write(ctx, "AddGenreTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	g, err := f.genre(genreID)
	if err != nil {
		return err
	}
	if models.IndexOfTrack(g.Tracks, track.ID) < 0 {
		g.Tracks = append(g.Tracks, track)
	}
	return nil
}

func (f *FakeRemote) RemoveGenreTrack(ctx context.Context, genreID, trackID string) error {
	err := f.write(ctx, "RemoveGenreTrack")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	g, err := f.genre(genreID)
	if err != nil {
		return err
	}
	if i := models.IndexOfTrack(g.Tracks, trackID); i >= 0 {
		g.Tracks = slices.Delete(g.Tracks, i, i+1)
	}
	return nil
}

func (f *FakeRemote) ReorderGenres(ctx context.Context, genreIDs []string) error {
	err := f.write(ctx, "ReorderGenres")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	for i, id := range genreIDs {
		if g, err := f.genre(id); err == nil {
			g.Order = i
		}
	}
	return nil
}

func (f *FakeRemote) GetHomeLayout(ctx context.Context) (*models.HomeLayout, error) {
	if err := f.read("GetHomeLayout"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.HomeLayout{GenreIDs: slices.Clone(f.Layout.GenreIDs)}, nil
}

func (f *FakeRemote) SaveHomeLayout(ctx context.Context, layout models.HomeLayout) error {
	err := f.write(ctx, "SaveHomeLayout")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Layout = models.HomeLayout{GenreIDs: slices.Clone(layout.GenreIDs)}
	return nil
}

func (f *FakeRemote) GetFeed(ctx context.Context, filter models.FeedFilter) ([]models.SocialPost, error) {
	if err := f.read("GetFeed"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Feed == nil {
		return slices.Clone(f.Posts), nil
	}
	return f.Feed(filter, f.UserID, slices.Clone(f.Posts), slices.Clone(f.Follows)), nil
}

func (f *FakeRemote) GetFollows(ctx context.Context) ([]models.Follow, error) {
	if err := f.read("GetFollows"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.Follows), nil
}

func (f *FakeRemote) CreatePost(ctx context.Context, post models.SocialPost) (*models.SocialPost, error) {
	err := f.write(ctx, "CreatePost")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	post.ID = f.id("post")
	post.AuthorID = f.UserID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	f.Posts = append(f.Posts, post)
	return &post, nil
}

func (f *FakeRemote) post(id string) (*models.SocialPost, error) {
	for i := range f.Posts {
		if f.Posts[i].ID == id {
			return &f.Posts[i], nil
		}
	}
	return nil, fmt.Errorf("post %s not found", id)
}

func (f *FakeRemote) LikePost(ctx context.Context, postID string) (bool, error) {
	err := f.write(ctx, "LikePost")
	defer f.mu.Unlock()
	if err != nil {
		return false, err
	}
	p, err := f.post(postID)
	if err != nil {
		return false, err
	}
	return p.ToggleLike(f.UserID), nil
}

func (f *FakeRemote) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	err := f.write(ctx, "AddComment")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, err := f.post(postID)
	if err != nil {
		return nil, err
	}
	c := models.Comment{ID: f.id("comment"), AuthorID: f.UserID, Content: content, CreatedAt: time.Now()}
	p.Comments = append(p.Comments, c)
	return &c, nil
}

func (f *FakeRemote) AddReply(ctx context.Context, postID, commentID, content string) (*models.Reply, error) {
	err := f.write(ctx, "AddReply")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, err := f.post(postID)
	if err != nil {
		return nil, err
	}
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			r := models.Reply{ID: f.id("reply"), AuthorID: f.UserID, Content: content, CreatedAt: time.Now()}
			p.Comments[i].Replies = append(p.Comments[i].Replies, r)
			return &r, nil
		}
	}
	return nil, fmt.Errorf("comment %s not found", commentID)
}

func (f *FakeRemote) Follow(ctx context.Context, userID string) error {
	err := f.write(ctx, "Follow")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Follows = append(f.Follows, models.Follow{FollowerID: f.UserID, FollowingID: userID})
	return nil
}

func (f *FakeRemote) Unfollow(ctx context.Context, userID string) error {
	err := f.write(ctx, "Unfollow")
	defer f.mu.Unlock()
	if err != nil {
		return err
	}
	f.Follows = slices.DeleteFunc(f.Follows, func(e models.Follow) bool {
		return e.FollowerID == f.UserID && e.FollowingID == userID
	})
	return nil
}
