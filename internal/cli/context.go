// Package cli holds state shared by the tracked commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/tracked/internal/api"
	"github.com/julianstephens/tracked/internal/backup"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/storage"
	"github.com/julianstephens/tracked/internal/storage/sqlite"
	"github.com/julianstephens/tracked/internal/utils"
)

// Notifier delivers a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Context is passed to every command's Run method. Server-side commands use
// Store; client commands talk to a running server through Client.
type Context struct {
	Config   *config.Config
	Store    storage.Provider
	Client   *api.Client
	Notifier Notifier

	Ctx context.Context
	Out io.Writer
	In  io.Reader
	// Now is overridable in tests.
	Now func() time.Time

	storeLoaded bool
}

// Context returns the command's cancellation context.
func (c *Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Input returns the reader used for confirmations.
func (c *Context) Input() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Writer exposes the output stream for tabular output.
func (c *Context) Writer() io.Writer {
	return c.out()
}

// LoadStore opens the configured store once.
func (c *Context) LoadStore() error {
	if c.Store == nil {
		return errors.New("no database configured")
	}
	if c.storeLoaded {
		return nil
	}
	if err := c.Store.Load(); err != nil {
		return err
	}
	c.storeLoaded = true
	return nil
}

// MarkStoreLoaded records that the store was opened by Init.
func (c *Context) MarkStoreLoaded() {
	c.storeLoaded = true
}

// RequireClient returns the API client or an error explaining how to set
// one up.
func (c *Context) RequireClient() (*api.Client, error) {
	if c.Client == nil {
		return nil, errors.New("no server configured; set TRACKED_SERVER or pass --server")
	}
	return c.Client, nil
}

// Location is the configured timezone, defaulting to local time.
func (c *Context) Location() *time.Location {
	if c.Config == nil {
		return time.Local
	}
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CurrentTime returns now in the configured timezone.
func (c *Context) CurrentTime() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.Location())
}

// Today returns today's date as YYYY-MM-DD in the configured timezone.
func (c *Context) Today() string {
	return utils.FormatDate(c.CurrentTime())
}

// PerformAutomaticBackup snapshots a SQLite database, logging failures
// instead of returning them.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveTracker finds a tracker by id or by case-insensitive name,
// including inactive trackers.
func (c *Context) ResolveTracker(ref string) (models.Tracker, error) {
	client, err := c.RequireClient()
	if err != nil {
		return models.Tracker{}, err
	}
	trackers, err := client.ListTrackers(c.Context(), true)
	if err != nil {
		return models.Tracker{}, err
	}
	return FindTracker(trackers, ref)
}

// FindTracker matches ref against ids first, then names.
func FindTracker(trackers []models.Tracker, ref string) (models.Tracker, error) {
	ref = strings.TrimSpace(ref)
	for _, t := range trackers {
		if t.ID == ref {
			return t, nil
		}
	}
	var matches []models.Tracker
	for _, t := range trackers {
		if strings.EqualFold(t.Name, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return models.Tracker{}, fmt.Errorf("tracker %q not found", ref)
	case 1:
		return matches[0], nil
	}
	return models.Tracker{}, fmt.Errorf("tracker name %q is ambiguous; use its id", ref)
}

// ParseMonth resolves optional year and month flags against the current date.
func (c *Context) ParseMonth(year, month int) (int, int, error) {
	now := c.CurrentTime()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if err := utils.ValidateMonth(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}
