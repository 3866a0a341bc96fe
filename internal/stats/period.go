// Package stats reduces day records to per-tracker summary strings and
// decides whether a period has enough data for an insight.
package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/models"
)

// FormatDuration renders a total of minutes, or the placeholder for zero.
func FormatDuration(totalMinutes int) string {
	if totalMinutes <= 0 {
		return constants.Placeholder
	}
	return entrycodec.FormatMinutes(totalMinutes)
}

// FormatMean rounds to one decimal and drops a trailing ".0".
func FormatMean(mean float64) string {
	r := math.Round(mean*10) / 10
	if r == 0 {
		r = 0 // -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// PeriodStat summarises one tracker over days. An empty period always yields
// the placeholder.
func PeriodStat(tracker models.Tracker, days []models.DayRecord) string {
	totalDays := len(days)
	if totalDays == 0 {
		return constants.Placeholder
	}

	switch tracker.Type {
	case models.TrackerBinary:
		count := 0
		for _, day := range days {
			if v, ok := valueOf(day, tracker).(models.BinaryValue); ok && bool(v) {
				count++
			}
		}
		return fmt.Sprintf("%d/%d", count, totalDays)

	case models.TrackerDuration:
		total := 0
		for _, day := range days {
			if v, ok := valueOf(day, tracker).(models.DurationValue); ok {
				total += int(v)
			}
		}
		return FormatDuration(total)

	case models.TrackerNumber, models.TrackerRating:
		sum, n := 0.0, 0
		for _, day := range days {
			switch v := valueOf(day, tracker).(type) {
			case models.NumberValue:
				sum += float64(v)
				n++
			case models.RatingValue:
				sum += float64(v)
				n++
			}
		}
		if n == 0 {
			return constants.Placeholder
		}
		return FormatMean(sum / float64(n))

	case models.TrackerPrayer:
		done := 0
		for _, day := range days {
			if v, ok := valueOf(day, tracker).(models.PrayerValue); ok {
				done += models.PrayerValues(v).Done()
			}
		}
		return fmt.Sprintf("%d/%d", done, totalDays*constants.PrayersPerDay)

	default:
		filled := 0
		for _, day := range days {
			if entrycodec.HasEntryData(day.Entry(tracker.ID), tracker.Type) {
				filled++
			}
		}
		return fmt.Sprintf("%d/%d", filled, totalDays)
	}
}

// PeriodStats computes PeriodStat for every tracker, keyed by tracker id.
func PeriodStats(trackers []models.Tracker, days []models.DayRecord) map[string]string {
	out := make(map[string]string, len(trackers))
	for _, t := range trackers {
		out[t.ID] = PeriodStat(t, days)
	}
	return out
}

// WeekStats computes per-tracker stats for each week of the view.
func WeekStats(view models.MonthView) []map[string]string {
	out := make([]map[string]string, 0, len(view.Weeks))
	for _, week := range view.Weeks {
		out = append(out, PeriodStats(view.Trackers, week))
	}
	return out
}

// MonthStats computes per-tracker stats over the whole month.
func MonthStats(view models.MonthView) map[string]string {
	return PeriodStats(view.Trackers, view.Days())
}

func valueOf(day models.DayRecord, tracker models.Tracker) models.Value {
	e := day.Entry(tracker.ID)
	if e == nil {
		return nil
	}
	return e.Value(tracker.Type)
}
