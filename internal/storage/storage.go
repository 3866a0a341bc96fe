// Package storage defines the persistence contract shared by the SQLite and
// PostgreSQL backends.
package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/tracked/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when the database has not been
	// created yet.
	ErrNotInitialized = errors.New("storage not initialized")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	Migrate(logFn func(string)) (int, error)
	Ping(ctx context.Context) error

	// Trackers
	ListTrackers(ctx context.Context, includeInactive bool) ([]models.Tracker, error)
	GetTracker(ctx context.Context, id string) (models.Tracker, error)
	// CreateTracker assigns the id, creation time and a display order after
	// every existing tracker.
	CreateTracker(ctx context.Context, t models.Tracker) (models.Tracker, error)
	UpdateTracker(ctx context.Context, t models.Tracker) error
	// DeleteTracker removes the tracker and all of its entries.
	DeleteTracker(ctx context.Context, id string) error
	// ReorderTrackers sets display_order to each id's index in ids.
	ReorderTrackers(ctx context.Context, ids []string) error

	// Entries
	EntriesBetween(ctx context.Context, startDate, endDate string) ([]models.Entry, error)
	// SaveEntry inserts or replaces the entry for (TrackerID, Date).
	SaveEntry(ctx context.Context, e models.Entry) (models.Entry, error)
	// DeleteEntry reports whether an entry existed.
	DeleteEntry(ctx context.Context, trackerID, date string) (bool, error)

	// Insights
	// SaveInsight upserts on (report type, period start, period end) and
	// reports whether a new row was created.
	SaveInsight(ctx context.Context, in models.Insight) (models.Insight, bool, error)
	LatestInsight(ctx context.Context, reportType models.ReportType) (models.Insight, error)
	InsightHistory(ctx context.Context, reportType models.ReportType, limit int) ([]models.Insight, error)

	// Utils
	GetConfigPath() string
}
