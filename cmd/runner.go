package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/groove/internal/activity"
	"github.com/desertthunder/groove/internal/feed"
	"github.com/desertthunder/groove/internal/repositories"
	"github.com/desertthunder/groove/internal/services"
	"github.com/desertthunder/groove/internal/shared"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The remote client, cache store and the components built on them are created on first use so
// commands that never touch them (setup, serve) do not open a database or dial the remote.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	remote  services.Remote
	store   repositories.Store
	playLog *repositories.PlayLogRepository
	sync    *activity.Synchronizer
	feed    *feed.Aggregator
	closers []func() error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Remote     services.Remote
	Store      repositories.Store
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		remote:     opts.Remote,
		store:      opts.Store,
	}
}

// SetLogger replaces the runner's logger. Components built afterwards log through it.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// session derives the activity session from config. The reference service takes the user id as
// bearer token, so a configured user without a token authenticates with its id.
func (r *Runner) session() activity.Session {
	s := activity.Session{UserID: r.config.Session.UserID, Token: r.config.Session.Token}
	if s.Token == "" {
		s.Token = s.UserID
	}
	return s
}

// init builds the remote client, cache store, synchronizer and feed aggregator once.
func (r *Runner) init(ctx context.Context) error {
	if r.sync != nil {
		return nil
	}

	session := r.session()
	if r.remote == nil {
		opts := services.OptionsFromConfig(r.config, r.logger)
		opts.Token = session.Token
		r.remote = services.NewHTTPService(opts)
	}

	if r.store == nil {
		store, err := r.openStore(ctx)
		if errors.Is(err, shared.ErrInvalidConfig) {
			return err
		}
		if err != nil {
			r.logger.Warn("local cache unavailable, falling back to memory", "backend", r.config.Cache.Backend, "error", err)
			store = repositories.NewMemoryStore()
		}
		r.store = store
	}

	r.sync = activity.New(activity.Options{
		Remote:  r.remote,
		Store:   r.store,
		Session: session,
		Logger:  r.logger,
	})
	r.feed = feed.NewAggregator(r.remote, r.store, r.logger)
	return nil
}

// openStore opens the cache backend selected by config.
func (r *Runner) openStore(ctx context.Context) (repositories.Store, error) {
	switch backend := strings.ToLower(r.config.Cache.Backend); backend {
	case "memory":
		return repositories.NewMemoryStore(), nil

	case "redis":
		rc := r.config.Redis
		client, err := repositories.NewRedisClient(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCacheUnavailable, err)
		}
		r.closers = append(r.closers, client.Close)
		return repositories.NewRedisStore(client, rc.Prefix), nil

	case "sqlite", "":
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCacheUnavailable, err)
		}
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", shared.ErrCacheUnavailable, err)
		}
		r.closers = append(r.closers, db.Close)
		r.playLog = repositories.NewPlayLogRepository(db)
		return repositories.NewSQLiteStore(db), nil

	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", shared.ErrInvalidConfig, backend)
	}
}

// Before applies global flags before any subcommand runs.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// Close waits for background synchronization and releases the cache backend.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.sync != nil {
		r.sync.Wait()
	}

	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, playCommand, historyCommand, favoritesCommand, playlistsCommand,
		tagsCommand, genresCommand, feedCommand, socialCommand, exportCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
