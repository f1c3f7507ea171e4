package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

type ctxKey struct{}

// Router builds the API routes under /api. Extra middleware runs after request logging and before
// authentication.
func (s *Server) Router(extra ...Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(Authenticate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/tracks", s.handleListTracks)
		r.Get("/social/feed", s.handleFeed)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Get("/recently-played", s.handleListRecent)
			r.Post("/recently-played", s.handleAddRecent)

			r.Get("/favorites", s.handleListFavorites)
			r.Post("/favorites", s.handleToggleFavorite)

			r.Get("/playlists", s.handleListPlaylists)
			r.Post("/playlists", s.handleCreatePlaylist)
			r.Delete("/playlists/{id}", s.handleDeletePlaylist)
			r.Post("/playlists/{id}/tracks", s.handleAddPlaylistTrack)
			r.Delete("/playlists/{id}/tracks/{trackId}", s.handleRemovePlaylistTrack)

			r.Get("/tags", s.handleListTags)
			r.Post("/tags", s.handleCreateTag)
			r.Delete("/tags/{id}", s.handleDeleteTag)
			r.Post("/tags/{id}/tracks", s.handleAddTagTrack)
			r.Delete("/tags/{id}/tracks/{trackId}", s.handleRemoveTagTrack)

			r.Get("/genres", s.handleListGenres)
			r.Post("/genres", s.handleCreateGenre)
			r.Put("/genres/order", s.handleReorderGenres)
			r.Put("/genres/{id}", s.handleUpdateGenre)
			r.Delete("/genres/{id}", s.handleDeleteGenre)
			r.Post("/genres/{id}/tracks", s.handleAddGenreTrack)
			r.Delete("/genres/{id}/tracks/{trackId}", s.handleRemoveGenreTrack)

			r.Get("/home-layout", s.handleGetLayout)
			r.Post("/home-layout", s.handleSaveLayout)

			r.Get("/social/follows", s.handleListFollows)
			r.Post("/social/follows", s.handleFollow)
			r.Delete("/social/follows/{userId}", s.handleUnfollow)
			r.Post("/social/posts", s.handleCreatePost)
			r.Post("/social/posts/{id}/like", s.handleLikePost)
			r.Post("/social/posts/{id}/comments", s.handleAddComment)
			r.Post("/social/posts/{id}/comments/{commentId}/replies", s.handleAddReply)
		})
	})

	return r
}

// RequestLogger logs each request with its status and latency.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
			)
		})
	}
}

// Authenticate resolves the bearer token into a user id. The token is the user id; requests without
// one continue anonymously.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if token = strings.TrimSpace(token); token == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, token)))
	})
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated user id carried by ctx, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
