package activity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/models"
	"github.com/desertthunder/groove/internal/repositories"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
)

const (
	// AnonymousHistoryLimit bounds the cached history of an anonymous session.
	AnonymousHistoryLimit = 20
	// HistoryLimit bounds the in-memory history of an authenticated session.
	HistoryLimit = 50
)

// Session identifies the user the synchronizer acts for.
type Session struct {
	UserID string
	Token  string
}

// Anonymous reports whether no identity is established.
func (s Session) Anonymous() bool {
	return s.UserID == ""
}

// Options configures a [Synchronizer].
type Options struct {
	Remote  services.ActivityRemote
	Store   repositories.Store
	Session Session
	Logger  *log.Logger
	Events  chan<- Event     // Optional, sends never block
	Now     func() time.Time // Defaults to time.Now
}

type tokenSetter interface {
	SetToken(token string)
}

// family is the in-memory copy of one user-data family.
//
// version increases with every optimistic mutation and pending counts remote writes still in flight.
// A remote read replaces items only when it was issued against the current version, no write is
// pending and no later read has already been applied.
type family[T any] struct {
	name       Family
	key        string
	fetch      func(ctx context.Context) ([]T, error)
	items      []T
	loaded     bool
	version    uint64
	pending    int
	fetchSeq   uint64
	appliedSeq uint64
}

func (f *family[T]) reset() {
	f.items = nil
	f.loaded = false
	f.version++
	f.pending = 0
}

// ticket captures the state a remote read must still match for its result to apply.
type ticket struct {
	epoch   uint64
	version uint64
	seq     uint64
	key     string
}

// Synchronizer mediates every user-data read and write between the remote service and the local cache.
//
// All methods are safe for concurrent use and never return errors: failures are logged and
// degrade to a safe default.
type Synchronizer struct {
	mu       sync.Mutex
	remote   services.ActivityRemote
	store    repositories.Store
	logger   *log.Logger
	events   chan<- Event
	now      func() time.Time
	session  Session
	epoch    uint64
	lastTemp int64
	aliases  map[string]string

	recent    *family[models.RecentlyPlayedEntry]
	favorites *family[models.Track]
	playlists *family[models.Playlist]
	tags      *family[models.Tag]
	genres    *family[models.Genre]
	layout    *family[string]

	anonMu sync.Mutex
	wg     sync.WaitGroup
}

// New creates a Synchronizer from opts.
func New(opts Options) *Synchronizer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Store == nil {
		opts.Store = repositories.NewMemoryStore()
	}

	s := &Synchronizer{
		remote:  opts.Remote,
		store:   opts.Store,
		logger:  shared.WithLogger(opts.Logger, "component", "activity"),
		events:  opts.Events,
		now:     opts.Now,
		session: opts.Session,
		aliases: make(map[string]string),
	}

	r := opts.Remote
	s.recent = &family[models.RecentlyPlayedEntry]{name: FamilyRecentlyPlayed, key: repositories.KeyRecentlyPlayed, fetch: r.GetRecentlyPlayed}
	s.favorites = &family[models.Track]{name: FamilyFavorites, key: repositories.KeyFavorites, fetch: r.GetFavorites}
	s.playlists = &family[models.Playlist]{name: FamilyPlaylists, key: repositories.KeyPlaylists, fetch: r.GetPlaylists}
	s.tags = &family[models.Tag]{name: FamilyTags, key: repositories.KeyTags, fetch: r.GetTags}
	s.genres = &family[models.Genre]{name: FamilyGenres, key: repositories.KeyGenres, fetch: r.GetGenres}
	s.layout = &family[string]{name: FamilyHomeLayout, key: repositories.KeyHomeLayout, fetch: func(ctx context.Context) ([]string, error) {
		layout, err := r.GetHomeLayout(ctx)
		if err != nil {
			return nil, err
		}
		return layout.GenreIDs, nil
	}}

	if ts, ok := r.(tokenSetter); ok {
		ts.SetToken(opts.Session.Token)
	}
	return s
}

// Session returns the current session.
func (s *Synchronizer) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession switches users. In-memory state is cleared and in-flight reconciliations for the previous
// session are dropped when they land.
func (s *Synchronizer) SetSession(session Session) {
	s.mu.Lock()
	s.session = session
	s.epoch++
	s.aliases = make(map[string]string)
	s.recent.reset()
	s.favorites.reset()
	s.playlists.reset()
	s.tags.reset()
	s.genres.reset()
	s.layout.reset()
	s.mu.Unlock()

	if ts, ok := s.remote.(tokenSetter); ok {
		ts.SetToken(session.Token)
	}
	s.logger.Info("session changed", "anonymous", session.Anonymous())
}

// Wait blocks until every background remote write and its reconciliation have finished.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// ResolveID maps a temporary id to the id the remote service issued for it.
//
// Ids that were never temporary, or whose create has not completed, are returned unchanged.
func (s *Synchronizer) ResolveID(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(id)
}

func (s *Synchronizer) resolve(id string) string {
	if real, ok := s.aliases[id]; ok {
		return real
	}
	return id
}

func (s *Synchronizer) alias(epoch uint64, tempID, realID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.aliases[tempID] = realID
	}
}

// tempID returns a temporary id unique within this process.
func (s *Synchronizer) tempID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastTemp {
		ms = s.lastTemp + 1
	}
	s.lastTemp = ms
	return models.NewTempID(time.UnixMilli(ms))
}

// authenticated returns the session when an identity is established.
func (s *Synchronizer) authenticated() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, !s.session.Anonymous()
}

func (s *Synchronizer) emit(f Family, kind Kind, msg string) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- Event{Family: f, Kind: kind, Message: msg}:
	default:
	}
}

func (s *Synchronizer) persist(ctx context.Context, f Family, key string, value any) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.logger.Warn("cache write failed", "family", f, "key", key, "error", err)
	}
}

// background runs fn detached from the caller's cancellation and tracks it for [Synchronizer.Wait].
func (s *Synchronizer) background(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

// failed logs a rejected remote call and reports whether err was non-nil.
func (s *Synchronizer) failed(f Family, op string, err error) bool {
	if err == nil {
		return false
	}
	s.logger.Warn("remote write failed, keeping optimistic state", "family", f, "op", op, "error", err)
	s.emit(f, Failed, err.Error())
	return true
}

// prime fills f from the cache the first time it is touched in a session.
func prime[T any](s *Synchronizer, ctx context.Context, f *family[T]) {
	s.mu.Lock()
	if f.loaded {
		s.mu.Unlock()
		return
	}
	epoch, version := s.epoch, f.version
	key := repositories.ScopedKey(f.key, s.session.UserID)
	s.mu.Unlock()

	var cached []T
	if _, err := s.store.Get(ctx, key, &cached); err != nil {
		s.logger.Warn("cache read failed", "family", f.name, "key", key, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch || f.version != version || f.loaded {
		return
	}
	f.items = cached
	f.loaded = true
}

// current returns a copy of f's in-memory list, never nil.
func current[T any](s *Synchronizer, f *family[T]) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.items == nil {
		return []T{}
	}
	return slices.Clone(f.items)
}

func issue[T any](s *Synchronizer, f *family[T]) ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.fetchSeq++
	return ticket{
		epoch:   s.epoch,
		version: f.version,
		seq:     f.fetchSeq,
		key:     repositories.ScopedKey(f.key, s.session.UserID),
	}
}

// apply replaces f's list with items if t still describes the current state.
func apply[T any](s *Synchronizer, f *family[T], t ticket, items []T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != t.epoch || f.version != t.version || f.pending > 0 || t.seq <= f.appliedSeq {
		return false
	}
	f.items = items
	f.loaded = true
	f.appliedSeq = t.seq
	return true
}

// load reads f remote first. On failure the cached copy is served; while writes are in flight the
// in-memory copy is served.
func load[T any](s *Synchronizer, ctx context.Context, f *family[T]) []T {
	t := issue(s, f)

	items, err := f.fetch(ctx)
	if err != nil {
		s.logger.Warn("remote read failed, serving cached copy", "family", f.name, "error", err)
		s.emit(f.name, Fallback, err.Error())
		prime(s, ctx, f)
		return current(s, f)
	}
	if items == nil {
		items = []T{}
	}

	if !apply(s, f, t, items) {
		prime(s, ctx, f)
		return current(s, f)
	}
	s.persist(ctx, f.name, t.key, items)
	return slices.Clone(items)
}

// mutate applies fn to f's in-memory list and the cache ahead of the remote write.
//
// fn runs with the synchronizer locked. Every call must be paired with exactly one [settle].
func mutate[T any](s *Synchronizer, ctx context.Context, f *family[T], fn func([]T) []T) ticket {
	prime(s, ctx, f)

	s.mu.Lock()
	f.items = fn(slices.Clone(f.items))
	f.version++
	f.pending++
	f.loaded = true
	t := ticket{epoch: s.epoch, version: f.version, key: repositories.ScopedKey(f.key, s.session.UserID)}
	snapshot := slices.Clone(f.items)
	s.mu.Unlock()

	s.persist(ctx, f.name, t.key, snapshot)
	s.logger.Debug("optimistic update", "family", f.name, "version", t.version)
	s.emit(f.name, Optimistic, "")
	return t
}

// settle marks the remote write started by mutate as finished. A successful write re-fetches the family.
func settle[T any](s *Synchronizer, ctx context.Context, f *family[T], t ticket, ok bool) bool {
	s.mu.Lock()
	if s.epoch == t.epoch && f.pending > 0 {
		f.pending--
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	reconcile(s, ctx, f, t.epoch)
	return true
}

// reconcile replaces f with a fresh remote read unless the state moved on while the read was in flight.
func reconcile[T any](s *Synchronizer, ctx context.Context, f *family[T], epoch uint64) bool {
	t := issue(s, f)
	if t.epoch != epoch {
		return false
	}

	items, err := f.fetch(ctx)
	if err != nil {
		s.logger.Warn("reconciliation read failed", "family", f.name, "error", err)
		s.emit(f.name, Failed, err.Error())
		return false
	}
	if items == nil {
		items = []T{}
	}

	if !apply(s, f, t, items) {
		s.logger.Debug("discarding stale reconciliation", "family", f.name, "version", t.version)
		s.emit(f.name, Discarded, "")
		return false
	}

	s.persist(ctx, f.name, t.key, items)
	s.logger.Debug("reconciled", "family", f.name, "count", len(items))
	s.emit(f.name, Reconciled, "")
	return true
}

// write performs the remote half of a mutation on f and settles it.
func write[T any](s *Synchronizer, ctx context.Context, f *family[T], t ticket, op string, call func(ctx context.Context) error) bool {
	return settle(s, ctx, f, t, !s.failed(f.name, op, call(ctx)))
}

// synced reports whether id is known to the remote service. Edits to an entity whose create is still
// in flight stay local.
func (s *Synchronizer) synced(f Family, id string) bool {
	if !models.IsTempID(id) {
		return true
	}
	s.logger.Warn("entity not yet created remotely, keeping local edit only", "family", f, "id", id)
	s.emit(f, Failed, "pending create "+id)
	return false
}
