package server

import (
	"cmp"
	"net/http"
	"slices"
	"strings"

	"github.com/desertthunder/groove/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": "groove"})
}

// handleListTracks returns the catalog, or the tracks of one genre when ?genre= names a genre the caller
// owns or a catalog genre label.
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	genre := r.URL.Query().Get("genre")
	uid := UserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := []models.Track{}
	switch {
	case genre == "":
		tracks = append(tracks, s.catalog...)
	case uid != "" && indexByID(s.lib(uid).genres, genre, genreID) >= 0:
		l := s.lib(uid)
		tracks = append(tracks, l.genres[indexByID(l.genres, genre, genreID)].Tracks...)
	default:
		for _, t := range s.catalog {
			if strings.EqualFold(t.Genre, genre) {
				tracks = append(tracks, t)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (s *Server) handleListRecent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.lib(UserID(r.Context())).recent
	if recent == nil {
		recent = []models.RecentlyPlayedEntry{}
	}
	writeJSON(w, http.StatusOK, recent)
}

func (s *Server) handleAddRecent(w http.ResponseWriter, r *http.Request) {
	var entry models.RecentlyPlayedEntry
	if !decodeBody(w, r, &entry) {
		return
	}
	if len(entry.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "entry has no tracks")
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	l.recent = append(l.recent, entry)
	if n := len(l.recent); n > recentLimit {
		l.recent = slices.Clone(l.recent[n-recentLimit:])
	}
	writeOK(w)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorites := s.lib(UserID(r.Context())).favorites
	if favorites == nil {
		favorites = []models.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Track models.Track `json:"track"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "track id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	isFavorite := true
	if i := models.IndexOfTrack(l.favorites, body.Track.ID); i >= 0 {
		l.favorites = slices.Delete(l.favorites, i, i+1)
		isFavorite = false
	} else {
		l.favorites = append(l.favorites, body.Track)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "isFavorite": isFavorite})
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists := s.lib(UserID(r.Context())).playlists
	if playlists == nil {
		playlists = []models.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var pl models.Playlist
	if !decodeBody(w, r, &pl) {
		return
	}
	pl.Name = strings.TrimSpace(pl.Name)
	if pl.Name == "" || len(pl.Name) > 200 {
		writeError(w, http.StatusBadRequest, "name must be between 1 and 200 characters")
		return
	}

	uid := UserID(r.Context())
	pl.ID = s.newID()
	pl.OwnerID = uid
	pl.CreatedAt = s.now()
	if pl.Tracks == nil {
		pl.Tracks = []models.Track{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(uid)
	l.playlists = append(l.playlists, pl)
	writeJSON(w, http.StatusCreated, map[string]any{"playlist": pl})
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.playlists, chi.URLParam(r, "id"), playlistID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	l.playlists = slices.Delete(l.playlists, i, i+1)
	writeOK(w)
}

func (s *Server) handleAddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Track models.Track `json:"track"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "track id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.playlists, chi.URLParam(r, "id"), playlistID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if !l.playlists[i].HasTrack(body.Track.ID) {
		l.playlists[i].Tracks = append(l.playlists[i].Tracks, body.Track)
	}
	writeOK(w)
}

func (s *Server) handleRemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.playlists, chi.URLParam(r, "id"), playlistID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	if j := models.IndexOfTrack(l.playlists[i].Tracks, chi.URLParam(r, "trackId")); j >= 0 {
		l.playlists[i].Tracks = slices.Delete(l.playlists[i].Tracks, j, j+1)
	}
	writeOK(w)
}

// Tags are listed under a "data" key and created bare.
func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := s.lib(UserID(r.Context())).tags
	if tags == nil {
		tags = []models.Tag{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": tags})
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var tag models.Tag
	if !decodeBody(w, r, &tag) {
		return
	}
	tag.Name = strings.TrimSpace(tag.Name)
	if tag.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	tag.ID = s.newID()
	if tag.TrackIDs == nil {
		tag.TrackIDs = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	l.tags = append(l.tags, tag)
	writeJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.tags, chi.URLParam(r, "id"), tagID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	l.tags = slices.Delete(l.tags, i, i+1)
	writeOK(w)
}

func (s *Server) handleAddTagTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TrackID string `json:"trackId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.TrackID == "" {
		writeError(w, http.StatusBadRequest, "trackId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.tags, chi.URLParam(r, "id"), tagID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	if !l.tags[i].HasTrack(body.TrackID) {
		l.tags[i].TrackIDs = append(l.tags[i].TrackIDs, body.TrackID)
	}
	writeOK(w)
}

func (s *Server) handleRemoveTagTrack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.tags, chi.URLParam(r, "id"), tagID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	trackID := chi.URLParam(r, "trackId")
	l.tags[i].TrackIDs = slices.DeleteFunc(l.tags[i].TrackIDs, func(id string) bool { return id == trackID })
	writeOK(w)
}

func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	genres := slices.Clone(s.lib(UserID(r.Context())).genres)
	if genres == nil {
		genres = []models.Genre{}
	}
	slices.SortStableFunc(genres, func(a, b models.Genre) int { return cmp.Compare(a.Order, b.Order) })
	writeJSON(w, http.StatusOK, genres)
}

func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var g models.Genre
	if !decodeBody(w, r, &g) {
		return
	}
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	uid := UserID(r.Context())
	g.ID = s.newID()
	g.OwnerID = uid
	if g.Tracks == nil {
		g.Tracks = []models.Track{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(uid)
	if g.Order == 0 {
		for _, existing := range l.genres {
			g.Order = max(g.Order, existing.Order+1)
		}
	}
	l.genres = append(l.genres, g)
	writeJSON(w, http.StatusCreated, map[string]any{"genre": g})
}

func (s *Server) handleUpdateGenre(w http.ResponseWriter, r *http.Request) {
	var g models.Genre
	if !decodeBody(w, r, &g) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.genres, chi.URLParam(r, "id"), genreID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "genre not found")
		return
	}

	current := &l.genres[i]
	if name := strings.TrimSpace(g.Name); name != "" {
		current.Name = name
	}
	current.Description = g.Description
	current.Public = g.Public
	current.Order = g.Order
	if g.Tracks != nil {
		current.Tracks = g.Tracks
	}
	writeOK(w)
}

func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.genres, id, genreID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "genre not found")
		return
	}
	l.genres = slices.Delete(l.genres, i, i+1)
	l.layout.GenreIDs = slices.DeleteFunc(l.layout.GenreIDs, func(g string) bool { return g == id })
	writeOK(w)
}

func (s *Server) handleAddGenreTrack(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Track models.Track `json:"track"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Track.ID == "" {
		writeError(w, http.StatusBadRequest, "track id is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.genres, chi.URLParam(r, "id"), genreID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "genre not found")
		return
	}
	if models.IndexOfTrack(l.genres[i].Tracks, body.Track.ID) < 0 {
		l.genres[i].Tracks = append(l.genres[i].Tracks, body.Track)
	}
	writeOK(w)
}

func (s *Server) handleRemoveGenreTrack(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	i := indexByID(l.genres, chi.URLParam(r, "id"), genreID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "genre not found")
		return
	}
	if j := models.IndexOfTrack(l.genres[i].Tracks, chi.URLParam(r, "trackId")); j >= 0 {
		l.genres[i].Tracks = slices.Delete(l.genres[i].Tracks, j, j+1)
	}
	writeOK(w)
}

// handleReorderGenres assigns display orders from the position of each id in the body. Unknown ids are
// ignored and unlisted genres keep their order after the listed ones.
func (s *Server) handleReorderGenres(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GenreIDs []string `json:"genreIds"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.lib(UserID(r.Context()))
	rank := make(map[string]int, len(body.GenreIDs))
	for i, id := range body.GenreIDs {
		rank[id] = i
	}
	for i := range l.genres {
		if pos, ok := rank[l.genres[i].ID]; ok {
			l.genres[i].Order = pos
		} else {
			l.genres[i].Order += len(body.GenreIDs)
		}
	}
	writeOK(w)
}

// The layout is served wrapped under "layout".
func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"layout": s.lib(UserID(r.Context())).layout})
}

func (s *Server) handleSaveLayout(w http.ResponseWriter, r *http.Request) {
	var layout models.HomeLayout
	if !decodeBody(w, r, &layout) {
		return
	}
	if layout.GenreIDs == nil {
		layout.GenreIDs = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lib(UserID(r.Context())).layout = layout
	writeOK(w)
}

func playlistID(p models.Playlist) string { return p.ID }
func tagID(t models.Tag) string           { return t.ID }
func genreID(g models.Genre) string       { return g.ID }
