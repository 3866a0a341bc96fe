package models

// DayRecord is one calendar day of a month view.
type DayRecord struct {
	Date    string           `json:"date"`
	Day     int              `json:"day"`
	Entries map[string]Entry `json:"entries"`
}

// Entry returns the entry for trackerID, or nil when none is recorded.
func (d DayRecord) Entry(trackerID string) *Entry {
	e, ok := d.Entries[trackerID]
	if !ok {
		return nil
	}
	return &e
}

// MonthRef identifies a calendar month.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthView is the grid for one month. Concatenating Weeks yields every day
// of the month in ascending order.
type MonthView struct {
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	MonthName string        `json:"month_name"`
	TotalDays int           `json:"total_days"`
	Today     string        `json:"today,omitempty"`
	Prev      MonthRef      `json:"prev"`
	Next      MonthRef      `json:"next"`
	Trackers  []Tracker     `json:"trackers"`
	Weeks     [][]DayRecord `json:"weeks"`
	// WeekStats holds one tracker_id -> stat map per week.
	WeekStats  []map[string]string `json:"week_stats,omitempty"`
	MonthStats map[string]string   `json:"month_stats,omitempty"`
}

// Days returns every day of the month in order.
func (m MonthView) Days() []DayRecord {
	var days []DayRecord
	for _, week := range m.Weeks {
		days = append(days, week...)
	}
	return days
}

// WeekOf returns the week containing the given day of month, or nil.
func (m MonthView) WeekOf(day int) []DayRecord {
	for _, week := range m.Weeks {
		for _, d := range week {
			if d.Day == day {
				return week
			}
		}
	}
	return nil
}

// DayOf returns the record for the given day of month, or nil.
func (m MonthView) DayOf(day int) *DayRecord {
	for _, week := range m.Weeks {
		for i := range week {
			if week[i].Day == day {
				return &week[i]
			}
		}
	}
	return nil
}

// ActiveTrackers returns the trackers with IsActive set.
func (m MonthView) ActiveTrackers() []Tracker {
	var out []Tracker
	for _, t := range m.Trackers {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}
