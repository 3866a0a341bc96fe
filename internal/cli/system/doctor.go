package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/tracked/internal/backup"
	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/keyring"
	"github.com/julianstephens/tracked/internal/storage/sqlite"
	"github.com/julianstephens/tracked/internal/utils"
)

type schemaStatuser interface {
	SchemaStatus() (current, latest int, err error)
}

type check struct {
	name string
	// warnOnly checks never fail the run.
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// opensDB marks the check that establishes reachability.
	opensDB bool
	run     func(ctx *cli.Context) error
}

var keyringAvailable = keyring.IsAvailable

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", opensDB: true, run: checkDBReachable},
		{name: "Schema version", needsDB: true, run: checkSchemaVersion},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "OS keyring", warnOnly: true, run: checkKeyring},
		{name: "Server reachable", warnOnly: true, run: checkServer},
		{name: "Insight analyzer", warnOnly: true, run: checkAnalyzer},
	}

	hasError := false
	dbReachable := false
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var skip skipError
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if c.opensDB {
				dbReachable = true
			}
		case errors.As(err, &skip):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skip.reason)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// skipError marks a check that does not apply to this setup.
type skipError struct{ reason string }

func (s skipError) Error() string { return s.reason }

func skipped(reason string) error { return skipError{reason} }

func checkDBReachable(ctx *cli.Context) error {
	if ctx.Store == nil {
		return skipped("no database configured")
	}
	if err := ctx.LoadStore(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx.Context(), 5*time.Second)
	defer cancel()
	return ctx.Store.Ping(pingCtx)
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, ok := ctx.Store.(schemaStatuser)
	if !ok {
		return skipped("store has no schema version")
	}
	current, latest, err := st.SchemaStatus()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d; run 'tracked migrate'", current, latest)
	}
	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return skipped("backups apply to SQLite only")
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return errors.New("no backups found; run 'tracked backup create'")
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	tz := "Local"
	if ctx.Config != nil {
		tz = ctx.Config.Timezone
	}
	if !utils.ValidateTimezone(tz) {
		return fmt.Errorf("invalid timezone %q", tz)
	}
	if now := ctx.CurrentTime(); now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyringAvailable() {
		return errors.New("OS keyring is not available; use TRACKED_API_TOKEN instead of 'tracked login'")
	}
	return nil
}

func checkServer(ctx *cli.Context) error {
	if ctx.Client == nil || ctx.Config == nil {
		return skipped("no server configured")
	}
	pingCtx, cancel := context.WithTimeout(ctx.Context(), 5*time.Second)
	defer cancel()
	if err := ctx.Client.Ping(pingCtx); err != nil {
		return fmt.Errorf("server at %s: %w", ctx.Config.ServerURL, err)
	}
	return nil
}

func checkAnalyzer(ctx *cli.Context) error {
	if ctx.Config == nil || ctx.Config.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is not set; the server will use the local statistical analyzer")
	}
	return nil
}
