package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/gallery"
	"github.com/desertthunder/vidgen/internal/repositories"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/session"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/desertthunder/vidgen/internal/tasks"
	"github.com/desertthunder/vidgen/internal/tokenstore"
	"github.com/jonboulle/clockwork"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database-backed parts (token store, video cache, managers) are opened on first use so
// commands like `setup config` and `mock` work without a database.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	auth       *services.AuthService
	videos     *services.VideoService
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	ownsDB  bool
	store   tokenstore.Store
	cache   *repositories.VideoRepository
	session *session.Manager
	gallery *gallery.Manager
	engine  *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Clock      clockwork.Clock
	Logger     *log.Logger
	Output     io.Writer
	// DB replaces the configured database. The caller keeps ownership.
	DB *sql.DB
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
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Config.API.Timeout()}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	api := services.NewAPIService(opts.Config.API.BaseURL, opts.HTTPClient)

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        api,
		auth:       services.NewAuthService(api),
		videos:     services.NewVideoService(api),
		httpClient: opts.HTTPClient,
		clock:      opts.Clock,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, videoCommand, apiCommand, tuiCommand, mockCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger. It must be called before the first command that opens
// the database, since the managers capture the logger when they are built.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// open builds the database-backed dependencies once.
func (r *Runner) open() error {
	if r.session != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		r.ownsDB = true
	}

	r.store = tokenstore.NewSQLiteStore(r.db, r.config.Auth.TokenKey)
	r.cache = repositories.NewVideoRepository(r.db)
	r.session = session.New(r.auth, r.store, r.logger)
	r.gallery = gallery.New(r.videos, r.session, gallery.Options{Cache: r.cache, Logger: r.logger})
	r.engine = tasks.NewEngine(r.videos, tasks.EngineOptions{Clock: r.clock, Logger: r.logger})
	return nil
}

// Close releases the database when the runner opened it.
func (r *Runner) Close() error {
	if r.db == nil || !r.ownsDB {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// withStack opens the database-backed dependencies before running action.
func (r *Runner) withStack(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := r.open(); err != nil {
			return err
		}
		return action(ctx, cmd)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
