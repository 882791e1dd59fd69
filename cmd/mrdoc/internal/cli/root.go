// Package cli wires the mrdoc cobra commands to the API client, the chat REPL
// and the renderer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mrdoc/internal/api"
	"mrdoc/internal/booking"
	"mrdoc/internal/config"
	"mrdoc/internal/logger"
	"mrdoc/internal/render"
	"mrdoc/internal/session"
	"mrdoc/internal/testutils"
)

// ErrReported is returned after a failure has already been shown to the user;
// callers should exit non-zero without printing it again.
var ErrReported = errors.New("error already reported")

// App holds the state shared by all mrdoc commands.
type App struct {
	viper   *viper.Viper
	sources config.Sources

	logLevel string
	logFile  string

	cfg      *config.Config
	client   *api.Client
	renderer *render.Renderer
	gen      testutils.Generators
}

// NewApp creates a new App.
func NewApp() *App {
	return &App{viper: config.NewViper()}
}

// CreateRootCommand builds the command tree. Running it without a subcommand
// starts the chat.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mrdoc",
		Short: "MrDoc - book doctors and chat with MedBot from the terminal",
		Long: `MrDoc is a terminal client for the MrDoc healthcare booking service.
Browse doctors, book and cancel appointments, or ask MedBot, the healthcare
assistant, which specialist fits your symptoms.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.bootstrap,
		RunE:              app.runChat,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&app.logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.Bool("test-mode", false, "Run in deterministic test mode")
	flags.String("api-url", api.DefaultBaseURL, "MrDoc API base URL")
	flags.Duration("timeout", api.DefaultTimeout, "Request timeout")
	flags.String("state-dir", "", "Directory holding the session file [default: user config dir]")
	flags.String("theme", "default", "Colour theme (default|dark|plain)")
	flags.Int("word-wrap", render.DefaultWordWrap, "Markdown wrap width")

	if err := config.BindFlags(app.viper, flags); err != nil {
		// Flag names are fixed above, so binding cannot fail at runtime
		panic(err)
	}

	app.addChatCommands(rootCmd)
	app.addDoctorCommands(rootCmd)
	app.addAppointmentCommands(rootCmd)
	app.addSessionCommands(rootCmd)
	app.addVersionCommand(rootCmd)
	return rootCmd
}

// bootstrap configures logging and resolves configuration before any command runs.
func (app *App) bootstrap(cmd *cobra.Command, _ []string) error {
	testMode := app.viper.GetBool(config.KeyTestMode)
	if err := logger.Configure(app.logLevel, app.logFile, testMode); err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}

	cfg, err := config.Load(app.viper, app.sources)
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.gen = testutils.For(cfg.TestMode)
	app.client = api.NewClient(cfg.APIURL, cfg.Timeout)

	opts := []render.Option{render.WithWordWrap(cfg.WordWrap)}
	if cfg.TestMode {
		opts = append(opts, render.WithPlain(true), render.WithLocation(time.UTC))
	}
	app.renderer = render.New(render.LoadTheme(cfg.Theme), opts...)

	logger.Debug("Configuration loaded", "command", cmd.CommandPath(), "api_url", cfg.APIURL, "test_mode", cfg.TestMode)
	return nil
}

func (app *App) sessionStore() *session.Store {
	return session.NewStore(session.NewFileKV(app.cfg.StatePath(config.SessionFile)), app.gen)
}

// fail shows an error banner for a failed action and returns ErrReported.
func (app *App) fail(w io.Writer, action string, err error) error {
	logger.Debug("Command failed", "action", action, "error", err)
	banner := booking.ErrorBanner(action, api.ErrorDetail(err))
	writeLines(w, app.renderer.Banner(banner))
	return ErrReported
}

func (app *App) success(w io.Writer, text string) {
	writeLines(w, app.renderer.Banner(booking.NewBanner(text, booking.SeveritySuccess)))
}

func writeLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		_, _ = fmt.Fprintln(w, line)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
