package stats

import (
	"time"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/models"
)

// Coverage is the share of tracker-day cells holding data in a period.
type Coverage struct {
	Filled        int     `json:"filled"`
	Total         int     `json:"total"`
	Ratio         float64 `json:"ratio"`
	HasEnoughData bool    `json:"has_enough_data"`
}

// PeriodDays resolves the days a report covers within view: the day matching
// now's day of month, the week containing it, or the whole month.
func PeriodDays(reportType models.ReportType, view models.MonthView, now time.Time) []models.DayRecord {
	switch reportType {
	case models.ReportDaily:
		if d := view.DayOf(now.Day()); d != nil {
			return []models.DayRecord{*d}
		}
		return nil
	case models.ReportWeekly:
		return view.WeekOf(now.Day())
	default:
		return view.Days()
	}
}

// ComputeCoverage counts filled cells for trackers over the report's period.
// A period with no cells has a ratio of zero.
func ComputeCoverage(reportType models.ReportType, view models.MonthView, trackers []models.Tracker, now time.Time) Coverage {
	days := PeriodDays(reportType, view, now)

	c := Coverage{Total: len(days) * len(trackers)}
	if c.Total == 0 {
		return c
	}

	for _, day := range days {
		for _, t := range trackers {
			if entrycodec.HasEntryData(day.Entry(t.ID), t.Type) {
				c.Filled++
			}
		}
	}

	c.Ratio = float64(c.Filled) / float64(c.Total)
	c.HasEnoughData = c.Ratio >= constants.CoverageThreshold
	return c
}
