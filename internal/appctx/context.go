// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	charmlog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"

	"github.com/basecamp/todo-cli/internal/api"
	"github.com/basecamp/todo-cli/internal/auth"
	"github.com/basecamp/todo-cli/internal/config"
	"github.com/basecamp/todo-cli/internal/output"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	API    *api.Client
	Output *output.Writer
	Logger *slog.Logger

	// Flags holds the global flag values
	Flags GlobalFlags

	stdout io.Writer
	stderr io.Writer
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	JQ      string

	// Context flags
	BaseURL string

	// Behavior flags
	Verbose int // 0=warnings, 1=debug
}

// Option configures an App.
type Option func(*App)

// WithWriters redirects standard output and standard error.
func WithWriters(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithAuth replaces the auth manager.
func WithAuth(m *auth.Manager) Option {
	return func(a *App) { a.Auth = m }
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		Config: cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.Auth == nil {
		a.Auth = auth.NewManager(cfg)
	}

	a.Logger = newLogger(a.stderr, 0)
	a.API = a.newClient()
	a.Output = output.New(output.Options{
		Format: output.ParseFormat(cfg.Format),
		Writer: a.stdout,
	})
	return a
}

func (a *App) newClient() *api.Client {
	return api.NewClient(a.Config.BaseURL, a.Config.Timeout(),
		api.WithTokenProvider(a.Auth),
		api.WithRateLimit(a.Config.RateLimit, a.Config.RateBurst),
		api.WithLogger(a.Logger),
	)
}

// newLogger returns a slog logger writing through charmbracelet/log.
func newLogger(w io.Writer, verbose int) *slog.Logger {
	level := charmlog.WarnLevel
	if verbose > 0 {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: verbose > 0,
		Prefix:          "todo",
	})
	return slog.New(handler)
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Order matters: specific modes first
	format := output.ParseFormat(a.Config.Format)
	switch {
	case a.Flags.IDsOnly:
		format = output.FormatIDs
	case a.Flags.Count:
		format = output.FormatCount
	case a.Flags.Quiet:
		format = output.FormatQuiet
	case a.Flags.JSON:
		format = output.FormatJSON
	case a.Flags.Styled:
		format = output.FormatStyled
	case a.Flags.MD:
		format = output.FormatMarkdown
	}
	a.Output = output.New(output.Options{
		Format: format,
		Writer: a.stdout,
		JQ:     a.Flags.JQ,
	})

	// TODO_DEBUG=1 behaves like -v
	verbose := a.Flags.Verbose
	if debugEnv := os.Getenv("TODO_DEBUG"); debugEnv != "" {
		if level, err := strconv.Atoi(debugEnv); err == nil && level > verbose {
			verbose = level
		} else if debugEnv == "true" {
			verbose = 1
		}
	}
	if a.Config.Verbose != nil && *a.Config.Verbose > verbose {
		verbose = *a.Config.Verbose
	}

	a.Logger = newLogger(a.stderr, verbose)
	a.API = a.newClient()
}

// OK outputs a success response.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	return a.Output.OK(data, opts...)
}

// Err outputs an error response.
func (a *App) Err(err error) error {
	return a.Output.Err(err)
}

// Stderr is where warnings and prompts go.
func (a *App) Stderr() io.Writer {
	return a.stderr
}

// IsMachineOutput returns true if the output mode is intended for
// programmatic consumption.
func (a *App) IsMachineOutput() bool {
	switch a.Output.Format() {
	case output.FormatJSON, output.FormatQuiet, output.FormatIDs, output.FormatCount:
		return true
	}
	return false
}

// IsInteractive returns true if the terminal supports interactive prompts
// and the TUI.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.JQ != "" {
		return false
	}
	f, ok := a.stdout.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(f.Fd())
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
