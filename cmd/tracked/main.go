package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tracked/internal/api"
	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/cli/backups"
	"github.com/julianstephens/tracked/internal/cli/entries"
	"github.com/julianstephens/tracked/internal/cli/insight"
	"github.com/julianstephens/tracked/internal/cli/system"
	"github.com/julianstephens/tracked/internal/cli/trackers"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/errors"
	"github.com/julianstephens/tracked/internal/keyring"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/notifier"
	"github.com/julianstephens/tracked/internal/storage"
	"github.com/julianstephens/tracked/internal/storage/postgres"
	"github.com/julianstephens/tracked/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"SQLite path, PostgreSQL connection string, or 'keyring' to read the connection string from the OS keyring. Overrides TRACKED_DB. Credentials must NOT be embedded in the connection string." name:"db"`
	Server  string `help:"URL of the tracked server. Overrides TRACKED_SERVER."`
	Debug   bool   `help:"Enable debug logging."`

	Init    system.InitCmd    `cmd:"" help:"Initialize tracked storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Serve   system.ServeCmd   `cmd:"" help:"Run the tracked API server."`
	Tui     system.TuiCmd     `cmd:"" help:"Launch the interactive month view." default:"1"`
	Login   system.LoginCmd   `cmd:"" help:"Store the server API token in the OS keyring."`
	Logout  system.LogoutCmd  `cmd:"" help:"Remove the stored API token."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Tracker struct {
		List      trackers.ListCmd      `cmd:"" help:"List trackers." default:"1"`
		Add       trackers.AddCmd       `cmd:"" help:"Add a tracker."`
		Suggested trackers.SuggestedCmd `cmd:"" help:"Show the suggested tracker catalogue."`
		QuickAdd  trackers.QuickAddCmd  `cmd:"" name:"quick-add" help:"Add trackers from the catalogue."`
		Rename    trackers.RenameCmd    `cmd:"" help:"Rename a tracker."`
		Reorder   trackers.ReorderCmd   `cmd:"" help:"Change tracker order."`
		Toggle    trackers.ToggleCmd    `cmd:"" help:"Activate or deactivate a tracker."`
		Delete    trackers.DeleteCmd    `cmd:"" help:"Delete a tracker and its entries."`
	} `cmd:"" help:"Manage trackers."`
	Log     entries.LogCmd   `cmd:"" help:"Record a value for a tracker."`
	Month   entries.MonthCmd `cmd:"" help:"Show a month grid with weekly stats."`
	Insight struct {
		Latest   insight.LatestCmd   `cmd:"" help:"Show the latest insight." default:"1"`
		History  insight.HistoryCmd  `cmd:"" help:"List previous insights."`
		Generate insight.GenerateCmd `cmd:"" help:"Generate a new insight."`
	} `cmd:"" help:"AI insights on your tracked data."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit tracker with a month grid and AI insights"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load()
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.Server != "" {
		cfg.ServerURL = strings.TrimRight(CLI.Server, "/")
	}

	store, err := openStore(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	command := kctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: cfg.ConfigDir(),
		Server:    command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Starting tracked", "command", command, "version", constants.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	appCtx := &cli.Context{
		Config:   cfg,
		Store:    store,
		Client:   api.New(cfg.ServerURL, apiToken(cfg)),
		Notifier: notifier.New(),
		Ctx:      ctx,
	}

	err = kctx.Run(appCtx)
	stop()
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close store", "error", closeErr)
	}
	errors.Fatal(err)
}

// openStore picks the backend from the database setting: a PostgreSQL URL,
// "keyring" for a connection string kept in the OS keyring, or a SQLite path.
func openStore(cfg *config.Config) (storage.Provider, error) {
	if cfg.Database == "keyring" {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return nil, fmt.Errorf("failed to read connection string from keyring: %w", err)
		}
		cfg.Database = connStr
		return postgres.New(connStr), nil
	}

	if cfg.IsPostgres() {
		if err := postgres.ValidateConnString(cfg.Database); err != nil {
			if stderrors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w; store it with 'tracked keyring set' and pass --db keyring, or use PGPASSWORD or ~/.pgpass", err)
			}
			return nil, err
		}
		return postgres.New(cfg.Database), nil
	}

	path, err := config.ExpandPath(cfg.Database)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// apiToken prefers TRACKED_API_TOKEN and falls back to the keyring.
func apiToken(cfg *config.Config) string {
	if cfg.APIToken != "" {
		return cfg.APIToken
	}
	token, err := keyring.GetAPIToken()
	if err != nil {
		if !stderrors.Is(err, keyring.ErrNotFound) {
			logger.Debug("API token not read from keyring", "error", err)
		}
		return ""
	}
	return token
}
