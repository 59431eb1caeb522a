package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/thomas-fazzari/ciderfy/internal/match"
	"github.com/thomas-fazzari/ciderfy/internal/repositories"
	"github.com/thomas-fazzari/ciderfy/internal/services"
	"github.com/thomas-fazzari/ciderfy/internal/shared"
	"github.com/thomas-fazzari/ciderfy/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	spotify  services.SourceLibrary
	catalog  services.Catalog
	writer   services.PlaylistWriter
	resolver services.CodeResolver
	repo     *repositories.ISRCRepository
	logger   *log.Logger
	output   io.Writer
	input    io.Reader
	engine   *tasks.ReconcileEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Spotify  services.SourceLibrary
	Catalog  services.Catalog
	Writer   services.PlaylistWriter
	Resolver services.CodeResolver
	Repo     *repositories.ISRCRepository
	Logger   *log.Logger
	Output   io.Writer
	Input    io.Reader
}

// NewRunner creates a new Runner with the provided configuration.
//
// The reconciliation engine is only assembled when the source, catalog,
// resolver, and writer are all present; commands that need it guard on nil.
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	var engine *tasks.ReconcileEngine
	if opts.Spotify != nil && opts.Catalog != nil && opts.Resolver != nil && opts.Writer != nil {
		matching := opts.Config.Matching
		storefront := opts.Config.Credentials.AppleMusic.Storefront
		exact := match.NewExactResolver(opts.Resolver, opts.Catalog, storefront, matching.Workers)
		fuzzy := match.NewFuzzyResolver(opts.Catalog, storefront, matching.SearchLimit, matching.FuzzyThreshold)
		engine = tasks.NewReconcileEngine(opts.Spotify, exact, fuzzy, opts.Writer, matching.Workers)
	}

	return &Runner{
		config:   opts.Config,
		spotify:  opts.Spotify,
		catalog:  opts.Catalog,
		writer:   opts.Writer,
		resolver: opts.Resolver,
		repo:     opts.Repo,
		logger:   opts.Logger,
		output:   opts.Output,
		input:    opts.Input,
		engine:   engine,
	}
}

// SetLogger replaces the Runner's logger, used by the TUI to redirect logs to a file.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, spotifyCommand, syncCommand, cacheCommand, tuiCommand,
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
