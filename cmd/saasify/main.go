package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/myaiplug/saasify/internal/account"
	"github.com/myaiplug/saasify/internal/config"
	"github.com/myaiplug/saasify/internal/creation"
	"github.com/myaiplug/saasify/internal/export"
	"github.com/myaiplug/saasify/internal/gate"
	"github.com/myaiplug/saasify/internal/pricing"
	"github.com/myaiplug/saasify/internal/shell"
	"github.com/myaiplug/saasify/internal/store"
	"github.com/myaiplug/saasify/internal/store/localcache"
	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/internal/transform/gemini"
	"github.com/myaiplug/saasify/internal/usage"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagModel   string
	flagAPIKey  string
	flagOut     string
	flagOffline bool
)

// App carries the process-level wiring so tests can substitute the
// engine and streams.
type App struct {
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	NewEngine func(ctx context.Context, apiKey, model string) (transform.Service, error)
}

func DefaultApp() *App {
	return &App{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
		NewEngine: func(ctx context.Context, apiKey, model string) (transform.Service, error) {
			return gemini.New(ctx, apiKey, model)
		},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.Load()
	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saasify [prompt]",
		Short: "Turn prompts, repos and screenshots into deployable web artifacts",
		Long: `saasify is the MyAiPlug studio: it turns a text prompt, a public
repository URL or a screenshot into a single-page web artifact, then
lets you refine, undo, archive and export it.

Run without arguments for the interactive studio.

Examples:
  saasify
  saasify "a loudness meter dashboard"
  saasify "https://github.com/twentyhq/twenty"
  saasify --offline "a demo page"`,
		Args:    cobra.MaximumNArgs(1),
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStudio(args, app)
		},
	}

	cmd.Flags().StringVarP(&flagModel, "model", "m", "", "transform model (defaults to SAASIFY_MODEL)")
	cmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key (defaults to GEMINI_API_KEY)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", ".", "export output directory")
	cmd.Flags().BoolVar(&flagOffline, "offline", false, "use the built-in offline engine (no API calls)")

	return cmd
}

func runStudio(args []string, app *App) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("failed to resolve config directory: %w", err)
	}
	dbPath, err := config.DBPath()
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	engine, err := buildEngine(ctx, app)
	if err != nil {
		return err
	}

	ledger := usage.NewLedger(db, nil)
	calc := pricing.NewCalculator()
	gw := gate.New(ledger, calc, nil)
	mirror := store.NewHistoryMirror(db, localcache.New(dir))
	studio := creation.NewStudio(gw, engine, ledger, mirror, nil)
	accounts := account.NewManager(db, dir, nil)
	exporter := export.New(engine, flagOut)

	if len(args) == 1 {
		return runOneShot(ctx, args[0], app, studio, accounts, exporter)
	}

	sh := shell.New(&shell.Config{
		In:       app.In,
		Out:      app.Out,
		Err:      app.Err,
		Studio:   studio,
		Accounts: accounts,
		Gateway:  gw,
		Ledger:   ledger,
		Calc:     calc,
		Exporter: exporter,
	})
	return sh.Run(ctx)
}

// runOneShot generates a single artifact and exports it as a page,
// without entering the interactive loop.
func runOneShot(ctx context.Context, prompt string, app *App, studio *creation.Studio, accounts *account.Manager, exporter *export.Exporter) error {
	sess, err := studio.Open(ctx, accounts.CurrentOwnerID())
	if err != nil {
		return err
	}
	defer sess.Close()

	fmt.Fprintln(app.Out, "Generating...")
	created, err := sess.Create(ctx, prompt, nil)
	if err != nil {
		return err
	}
	if created == nil {
		fmt.Fprintln(app.Out, "The engine produced no artifact for that prompt.")
		return nil
	}

	path, err := exporter.WriteHTML(created)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "Created %q\nSaved: %s\n", created.Name, path)
	return nil
}

func buildEngine(ctx context.Context, app *App) (transform.Service, error) {
	if flagOffline {
		return &transform.Fake{}, nil
	}

	apiKey := flagAPIKey
	if apiKey == "" {
		apiKey = config.APIKey()
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or use --api-key (or --offline)", transform.ErrAPIKeyRequired)
	}

	model := flagModel
	if model == "" {
		model = config.Model()
	}
	return app.NewEngine(ctx, apiKey, model)
}
