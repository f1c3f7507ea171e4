package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/desertthunder/groove/internal/feed"
	"github.com/desertthunder/groove/internal/models"
	"github.com/go-chi/chi/v5"
)

// handleFeed serves the caller's feed; anonymous callers see public posts only.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	filter, err := models.ParseFeedFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	posts := feed.Filter(filter, UserID(r.Context()), s.posts, s.follows)
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (s *Server) handleListFollows(w http.ResponseWriter, r *http.Request) {
	uid := UserID(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Follow{}
	for _, f := range s.follows {
		if f.FollowerID == uid {
			out = append(out, f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	uid := UserID(r.Context())
	switch target := strings.TrimSpace(body.UserID); {
	case target == "":
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	case target == uid:
		writeError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	default:
		body.UserID = target
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edge := models.Follow{FollowerID: uid, FollowingID: body.UserID}
	if slices.Contains(s.follows, edge) {
		writeError(w, http.StatusConflict, "already following")
		return
	}
	s.follows = append(s.follows, edge)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "follow": edge})
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	edge := models.Follow{FollowerID: UserID(r.Context()), FollowingID: chi.URLParam(r, "userId")}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.follows = slices.DeleteFunc(s.follows, func(f models.Follow) bool { return f == edge })
	writeOK(w)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var p models.SocialPost
	if !decodeBody(w, r, &p) {
		return
	}
	if strings.TrimSpace(p.Content) == "" && p.Media == nil {
		writeError(w, http.StatusBadRequest, "post needs content or media")
		return
	}
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}
	if !p.Visibility.Valid() {
		writeError(w, http.StatusBadRequest, "invalid visibility")
		return
	}

	p.ID = s.newID()
	p.AuthorID = UserID(r.Context())
	p.CreatedAt = s.now()
	p.Likes = []string{}
	p.Comments = []models.Comment{}
	p.ShareCount = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, p)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "post": p})
}

// post returns the post with id. Callers hold s.mu.
func (s *Server) post(id string) *models.SocialPost {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return &s.posts[i]
		}
	}
	return nil
}

func (s *Server) handleLikePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.post(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	liked := p.ToggleLike(UserID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": len(p.Likes)})
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.post(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	c := models.Comment{
		ID:        s.newID(),
		AuthorID:  UserID(r.Context()),
		Content:   body.Content,
		CreatedAt: s.now(),
		Replies:   []models.Reply{},
	}
	p.Comments = append(p.Comments, c)
	writeJSON(w, http.StatusCreated, map[string]any{"comment": c})
}

// Replies are returned bare.
func (s *Server) handleAddReply(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.post(chi.URLParam(r, "id"))
	if p == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	i := indexByID(p.Comments, chi.URLParam(r, "commentId"), func(c models.Comment) string { return c.ID })
	if i < 0 {
		writeError(w, http.StatusNotFound, "comment not found")
		return
	}
	reply := models.Reply{ID: s.newID(), AuthorID: UserID(r.Context()), Content: body.Content, CreatedAt: s.now()}
	p.Comments[i].Replies = append(p.Comments[i].Replies, reply)
	writeJSON(w, http.StatusCreated, reply)
}
