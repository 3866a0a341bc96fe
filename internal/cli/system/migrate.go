package system

import (
	"fmt"

	"github.com/julianstephens/tracked/internal/cli"
)

type MigrateCmd struct {
	NoBackup bool `help:"Skip the automatic backup taken before migrating."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.LoadStore(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if !c.NoBackup {
		ctx.PerformAutomaticBackup()
	}

	count, err := ctx.Store.Migrate(func(msg string) { ctx.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
