package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// HTTPOptions configures an [HTTPService].
type HTTPOptions struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // Requests per second, 0 disables limiting
	Burst     int
	Breaker   shared.BreakerConfig
	Transport http.RoundTripper // Base transport, defaults to http.DefaultTransport
	Logger    *log.Logger
}

// OptionsFromConfig builds [HTTPOptions] from the remote and session config sections.
func OptionsFromConfig(cfg *shared.Config, logger *log.Logger) HTTPOptions {
	return HTTPOptions{
		BaseURL:   cfg.Remote.BaseURL,
		Token:     cfg.Session.Token,
		Timeout:   cfg.Remote.Timeout(),
		RateLimit: cfg.Remote.RateLimit,
		Burst:     cfg.Remote.Burst,
		Breaker:   cfg.Remote.Breaker,
		Logger:    logger,
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap exposes [shared.ErrAPIRequest], plus [shared.ErrNotFound] for 404s.
func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusNotFound {
		return []error{shared.ErrAPIRequest, shared.ErrNotFound}
	}
	return []error{shared.ErrAPIRequest}
}

// HTTPService implements [Remote] over the JSON HTTP API.
//
// Every request passes through a rate limiter and a circuit breaker. Client errors (4xx) do not count
// toward tripping the breaker; transport failures and 5xx responses do.
type HTTPService struct {
	mu      sync.RWMutex
	api     *APIClient
	opts    HTTPOptions
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*APIResponse]
	logger  *log.Logger
}

// NewHTTPService creates a remote client from opts.
func NewHTTPService(opts HTTPOptions) *HTTPService {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s := &HTTPService{
		opts:    opts,
		limiter: rate.NewLimiter(limit, burst),
		logger:  opts.Logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[*APIResponse](s.breakerSettings())
	s.api = NewAPIClient(opts.BaseURL, s.httpClient(opts.Token))
	return s
}

func (s *HTTPService) breakerSettings() gobreaker.Settings {
	cfg := s.opts.Breaker
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	return gobreaker.Settings{
		Name:        "remote",
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.Code < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
}

func (s *HTTPService) httpClient(token string) *http.Client {
	base := s.opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	transport := base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   base,
		}
	}

	return &http.Client{Transport: transport, Timeout: s.opts.Timeout}
}

// SetToken replaces the bearer token used for subsequent requests. An empty token sends no Authorization header.
func (s *HTTPService) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opts.Token = token
	s.api = NewAPIClient(s.opts.BaseURL, s.httpClient(token))
}

// API returns the raw client carrying the current credentials.
func (s *HTTPService) API() *APIClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.api
}

// BreakerState reports the circuit breaker's current state.
func (s *HTTPService) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// call sends one request through the limiter and breaker and returns the response body.
func (s *HTTPService) call(ctx context.Context, method, path string, body any) ([]byte, error) {
	var data []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		data = encoded
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	api := s.API()
	start := time.Now()

	resp, err := s.breaker.Execute(func() (*APIResponse, error) {
		resp, err := api.Do(ctx, method, path, data)
		if err != nil {
			return nil, err
		}
		if !resp.OK() {
			return resp, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: errorMessage(resp.Body)}
		}
		return resp, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if err != nil {
		s.logger.Debug("remote request failed", "method", method, "path", path, "error", err)
		return nil, err
	}

	s.logger.Debug("remote request", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if msg, failed := envelopeFailure(resp.Body); failed {
		return nil, fmt.Errorf("%w: %s %s: %s", shared.ErrAPIRequest, method, path, msg)
	}
	return resp.Body, nil
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// envelopeFailure detects {"success": false, ...} bodies returned with a 2xx status.
func envelopeFailure(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Success == nil || *env.Success {
		return "", false
	}
	if env.Error != "" {
		return env.Error, true
	}
	if env.Message != "" {
		return env.Message, true
	}
	return "request unsuccessful", true
}

func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if env.Error != "" {
				return env.Error
			}
			if env.Message != "" {
				return env.Message
			}
		}
	}
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return string(trimmed)
}

func escape(id string) string {
	return url.PathEscape(id)
}

// Health checks that the remote service is reachable.
func (s *HTTPService) Health(ctx context.Context) error {
	_, err := s.call(ctx, http.MethodGet, "/health", nil)
	return err
}

// ListTracks implements [Catalog].
func (s *HTTPService) ListTracks(ctx context.Context, genreID string) ([]models.Track, error) {
	path := "/tracks"
	if genreID != "" {
		path += "?genre=" + url.QueryEscape(genreID)
	}

	data, err := s.call(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return DecodeTracks(data)
}

func (s *HTTPService) GetRecentlyPlayed(ctx context.Context) ([]models.RecentlyPlayedEntry, error) {
	data, err := s.call(ctx, http.MethodGet, "/recently-played", nil)
	if err != nil {
		return nil, err
	}
	return DecodeRecentlyPlayed(data)
}

func (s *HTTPService) AddRecentlyPlayed(ctx context.Context, entry models.RecentlyPlayedEntry) error {
	_, err := s.call(ctx, http.MethodPost, "/recently-played", entry)
	return err
}

func (s *HTTPService) GetFavorites(ctx context.Context) ([]models.Track, error) {
	data, err := s.call(ctx, http.MethodGet, "/favorites", nil)
	if err != nil {
		return nil, err
	}
	return DecodeFavorites(data)
}

func (s *HTTPService) ToggleFavorite(ctx context.Context, track models.Track) (bool, error) {
	data, err := s.call(ctx, http.MethodPost, "/favorites", map[string]any{"track": track})
	if err != nil {
		return false, err
	}

	var resp struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("failed to decode favorite toggle: %w", err)
	}
	return resp.IsFavorite, nil
}

func (s *HTTPService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	data, err := s.call(ctx, http.MethodGet, "/playlists", nil)
	if err != nil {
		return nil, err
	}
	return DecodePlaylists(data)
}

func (s *HTTPService) CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error) {
	data, err := s.call(ctx, http.MethodPost, "/playlists", playlist)
	if err != nil {
		return nil, err
	}
	return decodeOne[models.Playlist](data, "playlist")
}

func (s *HTTPService) AddPlaylistTrack(ctx context.Context, playlistID string, track models.Track) error {
	_, err := s.call(ctx, http.MethodPost, "/playlists/"+escape(playlistID)+"/tracks", map[string]any{"track": track})
	return err
}

func (s *HTTPService) RemovePlaylistTrack(ctx context.Context, playlistID, trackID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/playlists/"+escape(playlistID)+"/tracks/"+escape(trackID), nil)
	return err
}

func (s *HTTPService) DeletePlaylist(ctx context.Context, playlistID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/playlists/"+escape(playlistID), nil)
	return err
}

func (s *HTTPService) GetTags(ctx context.Context) ([]models.Tag, error) {
	data, err := s.call(ctx, http.MethodGet, "/tags", nil)
	if err != nil {
		return nil, err
	}
	return DecodeTags(data)
}

func (s *HTTPService) CreateTag(ctx context.Context, tag models.Tag) (*models.Tag, error) {
	data, err := s.call(ctx, http.MethodPost, "/tags", tag)
	if err != nil {
		return nil, err
	}
	return decodeOne[models.Tag](data, "tag")
}

func (s *HTTPService) AddTagTrack(ctx context.Context, tagID, trackID string) error {
	_, err := s.call(ctx, http.MethodPost, "/tags/"+escape(tagID)+"/tracks", map[string]string{"trackId": trackID})
	return err
}

func (s *HTTPService) RemoveTagTrack(ctx context.Context, tagID, trackID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/tags/"+escape(tagID)+"/tracks/"+escape(trackID), nil)
	return err
}

func (s *HTTPService) DeleteTag(ctx context.Context, tagID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/tags/"+escape(tagID), nil)
	return err
}

func (s *HTTPService) GetGenres(ctx context.Context) ([]models.Genre, error) {
	data, err := s.call(ctx, http.MethodGet, "/genres", nil)
	if err != nil {
		return nil, err
	}
	return DecodeGenres(data)
}

func (s *HTTPService) CreateGenre(ctx context.Context, genre models.Genre) (*models.Genre, error) {
	data, err := s.call(ctx, http.MethodPost, "/genres", genre)
	if err != nil {
		return nil, err
	}
	return decodeOne[models.Genre](data, "genre")
}

func (s *HTTPService) UpdateGenre(ctx context.Context, genre models.Genre) error {
	_, err := s.call(ctx, http.MethodPut, "/genres/"+escape(genre.ID), genre)
	return err
}

func (s *HTTPService) DeleteGenre(ctx context.Context, genreID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/genres/"+escape(genreID), nil)
	return err
}

func (s *HTTPService) AddGenreTrack(ctx context.Context, genreID string, track models.Track) error {
	_, err := s.call(ctx, http.MethodPost, "/genres/"+escape(genreID)+"/tracks", map[string]any{"track": track})
	return err
}

func (s *HTTPService) RemoveGenreTrack(ctx context.Context, genreID, trackID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/genres/"+escape(genreID)+"/tracks/"+escape(trackID), nil)
	return err
}

func (s *HTTPService) ReorderGenres(ctx context.Context, genreIDs []string) error {
	_, err := s.call(ctx, http.MethodPut, "/genres/order", map[string]any{"genreIds": genreIDs})
	return err
}

func (s *HTTPService) GetHomeLayout(ctx context.Context) (*models.HomeLayout, error) {
	data, err := s.call(ctx, http.MethodGet, "/home-layout", nil)
	if err != nil {
		return nil, err
	}
	return DecodeHomeLayout(data)
}

func (s *HTTPService) SaveHomeLayout(ctx context.Context, layout models.HomeLayout) error {
	_, err := s.call(ctx, http.MethodPost, "/home-layout", layout)
	return err
}

// GetFeed implements [SocialRemote].
func (s *HTTPService) GetFeed(ctx context.Context, filter models.FeedFilter) ([]models.SocialPost, error) {
	data, err := s.call(ctx, http.MethodGet, "/social/feed?filter="+url.QueryEscape(string(filter)), nil)
	if err != nil {
		return nil, err
	}
	return DecodePosts(data)
}

func (s *HTTPService) GetFollows(ctx context.Context) ([]models.Follow, error) {
	data, err := s.call(ctx, http.MethodGet, "/social/follows", nil)
	if err != nil {
		return nil, err
	}
	return DecodeFollows(data)
}

func (s *HTTPService) CreatePost(ctx context.Context, post models.SocialPost) (*models.SocialPost, error) {
	data, err := s.call(ctx, http.MethodPost, "/social/posts", post)
	if err != nil {
		return nil, err
	}
	return decodeOne[models.SocialPost](data, "post")
}

func (s *HTTPService) LikePost(ctx context.Context, postID string) (bool, error) {
	data, err := s.call(ctx, http.MethodPost, "/social/posts/"+escape(postID)+"/like", nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		Liked bool `json:"liked"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, fmt.Errorf("failed to decode like toggle: %w", err)
	}
	return resp.Liked, nil
}

func (s *HTTPService) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	data, err := s.call(ctx, http.MethodPost, "/social/posts/"+escape(postID)+"/comments", map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	return decodeOne[models.Comment](data, "comment")
}

func (s *HTTPService) AddReply(ctx context.Context, postID, commentID, content string) (*models.Reply, error) {
	path := "/social/posts/" + escape(postID) + "/comments/" + escape(commentID) + "/replies"
	data, err := s.call(ctx, http.MethodPost, path, map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	return decodeOne[models.Reply](data, "reply")
}

func (s *HTTPService) Follow(ctx context.Context, userID string) error {
	_, err := s.call(ctx, http.MethodPost, "/social/follows", map[string]string{"userId": userID})
	return err
}

func (s *HTTPService) Unfollow(ctx context.Context, userID string) error {
	_, err := s.call(ctx, http.MethodDelete, "/social/follows/"+escape(userID), nil)
	return err
}

var _ Remote = (*HTTPService)(nil)
