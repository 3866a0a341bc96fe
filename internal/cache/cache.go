// Package cache holds rendered month views between writes.
package cache

import (
	"context"
	"fmt"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/models"
)

// MonthCache stores month views keyed by year and month. Implementations
// are safe for concurrent use.
type MonthCache interface {
	Get(ctx context.Context, year, month int) (models.MonthView, bool)
	Set(ctx context.Context, view models.MonthView)
	// Invalidate drops a single month.
	Invalidate(ctx context.Context, year, month int)
	// InvalidateAll drops every month, used when trackers change.
	InvalidateAll(ctx context.Context)
	Close() error
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%s:month:%04d-%02d", constants.AppName, year, month)
}
