package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"roadmap-admin/internal/admin"
	"roadmap-admin/internal/api"
	"roadmap-admin/internal/format"
	"roadmap-admin/internal/logging"
	"roadmap-admin/internal/store"
	"roadmap-admin/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigFile string
	APIURL     string
	User       string
	LogLevel   string
	PrettyJSON bool
	Format     string
	Yes        bool

	cfg *store.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "roadmap-admin",
		Short:         "Roadmap admin console (TUI + scriptable CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  roadmap-admin --api https://example.org/api

  # Scriptable commands
  roadmap-admin roadmaps list --format table
  roadmap-admin submissions list --event 12 --pending

  # Local backend for trying things out
  roadmap-admin serve-dev --seed
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive dashboard.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("ROADMAP_ADMIN_CONFIG", ""), "Config file (default: ~/.roadmap-admin/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api", "", "API base URL (env ROADMAP_ADMIN_API_URL)")
	cmd.PersistentFlags().StringVar(&app.User, "user", "", "Acting admin user id (env ROADMAP_ADMIN_USER)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug|info|warn|error (env ROADMAP_ADMIN_LOG_LEVEL)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ROADMAP_ADMIN_FORMAT", "json"), "Output format (json|edn|table)")
	cmd.PersistentFlags().BoolVarP(&app.Yes, "yes", "y", false, "Answer yes to delete confirmations")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newRoadmapsCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newSubmissionsCmd(app))
	cmd.AddCommand(newServeDevCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// load resolves configuration once per invocation. Flags given on the command line win
// over environment and config file.
func (app *App) load(cmd *cobra.Command) error {
	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("api") {
		overrides[store.KeyAPIURL] = app.APIURL
	}
	if flags.Changed("user") {
		overrides[store.KeyUser] = app.User
	}
	if flags.Changed("log-level") {
		overrides[store.KeyLogLevel] = app.LogLevel
	}
	cfg, err := store.LoadConfig(store.LoadOptions{File: app.ConfigFile, Overrides: overrides})
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	return nil
}

func (app *App) config() *store.Config {
	if app.cfg == nil {
		cfg, err := store.LoadConfig(store.LoadOptions{File: app.ConfigFile})
		if err != nil {
			cfg = &store.Config{APIURL: store.DefaultAPIURL, User: "admin", PageSize: admin.DefaultPageSize}
		}
		app.cfg = cfg
	}
	return app.cfg
}

// logger logs to stderr for commands and to the log file for the dashboard.
func (app *App) logger(toFile bool) *zap.Logger {
	if app.log != nil {
		return app.log
	}
	cfg := app.config()
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if toFile {
		opts.File = cfg.Log.File
	}
	app.log = logging.Must(opts).Named("roadmap-admin")
	return app.log
}

func (app *App) client(log *zap.Logger) *api.Client {
	cfg := app.config()
	return api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(log.Named("api")),
	)
}

// coordinator wires a coordinator for one command. Notices go to stderr; confirmations
// are answered by --yes or read from stdin.
func (app *App) coordinator(cmd *cobra.Command, initial *admin.State) *admin.Coordinator {
	log := app.logger(false)
	cfg := app.config()
	errOut := cmd.ErrOrStderr()
	return admin.NewCoordinator(app.client(log), admin.Options{
		PageSize: cfg.PageSize,
		UserID:   cfg.User,
		Notifier: admin.NotifierFunc(func(n admin.Notice) {
			fmt.Fprintf(errOut, "%s: %s\n", n.Title(), n.Message)
		}),
		Confirmer: app.confirmer(cmd),
		Logger:    log.Named("coordinator"),
		Initial:   initial,
	})
}

func (app *App) confirmer(cmd *cobra.Command) admin.Confirmer {
	if app.Yes {
		return admin.AlwaysConfirm
	}
	in := bufio.NewReader(cmd.InOrStdin())
	errOut := cmd.ErrOrStderr()
	return admin.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		fmt.Fprintf(errOut, "%s [y/N]: ", prompt)
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(errOut)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	log := app.logger(true)
	ctx := cmdContext(cmd)

	var stateDB *store.StateDB
	if path, err := store.DefaultStatePath(); err == nil {
		if db, err := store.OpenStateDB(ctx, path); err == nil {
			stateDB = db
			defer func() { _ = db.Close() }()
		} else {
			log.Warn("ui state unavailable", zap.Error(err))
		}
	}

	err := tui.Run(ctx, tui.Options{
		Client:  app.client(log),
		Config:  app.config(),
		StateDB: stateDB,
		Logger:  log,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeData writes {"data": v}; the table format renders v itself.
func writeData(cmd *cobra.Command, app *App, v any) error {
	if strings.EqualFold(strings.TrimSpace(app.Format), format.Table) {
		return writeOut(cmd, app, v)
	}
	return writeOut(cmd, app, map[string]any{"data": v})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeErr prints err unless it was already shown as a notice.
func writeErr(cmd *cobra.Command, err error) error {
	if !isReported(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	}
	return err
}
