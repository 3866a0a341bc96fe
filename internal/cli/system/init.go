package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
	"github.com/julianstephens/tracked/internal/storage/postgres"
	"github.com/julianstephens/tracked/internal/storage/sqlite"
)

const copyInsightLimit = 100000

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.MarkStoreLoaded()
	ctx.Printf("Initialized tracked storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		src, err := openSource(c.Source)
		if err != nil {
			return err
		}
		defer src.Close()
		if err := CopyData(ctx, src, ctx.Store); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

// reset deletes an existing SQLite file. PostgreSQL databases are never
// dropped.
func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return errors.New("--force is only supported for SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err1 := filepath.Abs(dbPath)
		absSrc, err2 := filepath.Abs(c.Source)
		if err1 == nil && err2 == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	_, err := os.Stat(dbPath)
	switch {
	case err == nil:
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	var src storage.Provider
	if config.IsPostgresDSN(source) {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		src = postgres.New(source)
	} else {
		src = sqlite.NewStore(source)
	}
	if err := src.Load(); err != nil {
		return nil, fmt.Errorf("failed to load source database: %w", err)
	}
	return src, nil
}

// CopyData copies trackers, entries and insights from src into dst. Trackers
// get new ids in dst; entries follow their tracker.
func CopyData(ctx *cli.Context, src, dst storage.Provider) error {
	c := ctx.Context()

	ctx.Println("  Copying trackers...")
	trackers, err := src.ListTrackers(c, true)
	if err != nil {
		return fmt.Errorf("failed to list source trackers: %w", err)
	}
	ids := make(map[string]string, len(trackers))
	order := make([]string, 0, len(trackers))
	for _, t := range trackers {
		created, err := dst.CreateTracker(c, t)
		if err != nil {
			return fmt.Errorf("failed to add tracker %s: %w", t.Name, err)
		}
		ids[t.ID] = created.ID
		order = append(order, created.ID)
	}
	if len(order) > 0 {
		if err := dst.ReorderTrackers(c, order); err != nil {
			return fmt.Errorf("failed to restore tracker order: %w", err)
		}
	}
	ctx.Printf("    Copied %d trackers\n", len(trackers))

	ctx.Println("  Copying entries...")
	entries, err := src.EntriesBetween(c, "0001-01-01", "9999-12-31")
	if err != nil {
		return fmt.Errorf("failed to list source entries: %w", err)
	}
	copied := 0
	for _, e := range entries {
		newID, ok := ids[e.TrackerID]
		if !ok {
			continue
		}
		e.ID = ""
		e.TrackerID = newID
		if _, err := dst.SaveEntry(c, e); err != nil {
			return fmt.Errorf("failed to add entry %s/%s: %w", e.TrackerID, e.Date, err)
		}
		copied++
	}
	ctx.Printf("    Copied %d entries\n", copied)

	ctx.Println("  Copying insights...")
	total := 0
	for _, rt := range models.ReportTypes {
		history, err := src.InsightHistory(c, rt, copyInsightLimit)
		if err != nil {
			return fmt.Errorf("failed to list source insights: %w", err)
		}
		for _, in := range history {
			if _, _, err := dst.SaveInsight(c, in); err != nil {
				return fmt.Errorf("failed to add insight %s: %w", in.ID, err)
			}
			total++
		}
	}
	ctx.Printf("    Copied %d insights\n", total)
	return nil
}
