// Package monthview assembles the month grid served to clients.
package monthview

import (
	"time"

	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
	"github.com/julianstephens/tracked/internal/utils"
)

// Build lays out a calendar month as weeks of day records. A week closes on
// Sunday or on the last day of the month. Entries outside the month or for
// unknown trackers are ignored. today is recorded only when it falls inside
// the month.
func Build(year, month int, trackers []models.Tracker, entries []models.Entry, today time.Time) (models.MonthView, error) {
	if err := utils.ValidateMonth(year, month); err != nil {
		return models.MonthView{}, err
	}

	m := time.Month(month)
	first := time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
	total := utils.DaysInMonth(year, m)

	known := make(map[string]bool, len(trackers))
	for _, t := range trackers {
		known[t.ID] = true
	}
	byDate := make(map[string]map[string]models.Entry)
	for _, e := range entries {
		if !known[e.TrackerID] {
			continue
		}
		if byDate[e.Date] == nil {
			byDate[e.Date] = make(map[string]models.Entry)
		}
		byDate[e.Date][e.TrackerID] = e
	}

	view := models.MonthView{
		Year:      year,
		Month:     month,
		MonthName: m.String(),
		TotalDays: total,
		Prev:      Shift(year, month, -1),
		Next:      Shift(year, month, 1),
		Trackers:  trackers,
	}
	if view.Trackers == nil {
		view.Trackers = []models.Tracker{}
	}
	if !today.IsZero() && today.Year() == year && today.Month() == m {
		view.Today = utils.FormatDate(today)
	}

	var week []models.DayRecord
	for d := 1; d <= total; d++ {
		date := first.AddDate(0, 0, d-1)
		key := utils.FormatDate(date)
		rec := models.DayRecord{Date: key, Day: d, Entries: byDate[key]}
		if rec.Entries == nil {
			rec.Entries = map[string]models.Entry{}
		}
		week = append(week, rec)
		if date.Weekday() == time.Sunday || d == total {
			view.Weeks = append(view.Weeks, week)
			week = nil
		}
	}

	view.WeekStats = stats.WeekStats(view)
	view.MonthStats = stats.MonthStats(view)
	return view, nil
}

// Shift returns the month delta months away from year/month.
func Shift(year, month, delta int) models.MonthRef {
	t := time.Date(year, time.Month(month)+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return models.MonthRef{Year: t.Year(), Month: int(t.Month())}
}
