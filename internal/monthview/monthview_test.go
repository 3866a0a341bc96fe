package monthview

import (
	"testing"
	"time"

	"github.com/julianstephens/tracked/internal/models"
)

func TestBuildWeeksEndOnSunday(t *testing.T) {
	// March 2024 starts on a Friday: 1-3, 4-10, 11-17, 18-24, 25-31.
	view, err := Build(2024, 3, nil, nil, time.Time{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := [][2]int{{1, 3}, {4, 10}, {11, 17}, {18, 24}, {25, 31}}
	if len(view.Weeks) != len(want) {
		t.Fatalf("got %d weeks, want %d", len(view.Weeks), len(want))
	}
	for i, w := range want {
		week := view.Weeks[i]
		if week[0].Day != w[0] || week[len(week)-1].Day != w[1] {
			t.Errorf("week %d = %d..%d, want %d..%d", i, week[0].Day, week[len(week)-1].Day, w[0], w[1])
		}
	}
	if view.TotalDays != 31 || view.MonthName != "March" {
		t.Errorf("TotalDays=%d MonthName=%q", view.TotalDays, view.MonthName)
	}
}

func TestBuildDaysAreContiguous(t *testing.T) {
	for month := 1; month <= 12; month++ {
		view, err := Build(2023, month, nil, nil, time.Time{})
		if err != nil {
			t.Fatalf("Build(%d) error = %v", month, err)
		}
		days := view.Days()
		if len(days) != view.TotalDays {
			t.Fatalf("month %d: %d days, want %d", month, len(days), view.TotalDays)
		}
		for i, d := range days {
			if d.Day != i+1 {
				t.Fatalf("month %d: day %d at index %d", month, d.Day, i)
			}
		}
	}
}

func TestBuildPlacesEntries(t *testing.T) {
	yes := true
	trackers := []models.Tracker{{ID: "t1", Name: "Gym", Type: models.TrackerBinary, IsActive: true}}
	entries := []models.Entry{
		{TrackerID: "t1", Date: "2024-03-05", ValueFields: models.ValueFields{BinaryValue: &yes}},
		{TrackerID: "ghost", Date: "2024-03-05", ValueFields: models.ValueFields{BinaryValue: &yes}},
	}

	view, err := Build(2024, 3, trackers, entries, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	day := view.DayOf(5)
	if day == nil || day.Entry("t1") == nil {
		t.Fatal("entry for t1 on day 5 missing")
	}
	if day.Entry("ghost") != nil {
		t.Error("entry for unknown tracker should be dropped")
	}
	if view.Today != "2024-03-05" {
		t.Errorf("Today = %q", view.Today)
	}
	if got := view.MonthStats["t1"]; got != "1/31" {
		t.Errorf("MonthStats[t1] = %q, want 1/31", got)
	}
	if len(view.WeekStats) != len(view.Weeks) {
		t.Errorf("WeekStats has %d entries for %d weeks", len(view.WeekStats), len(view.Weeks))
	}
}

func TestBuildTodayOutsideMonth(t *testing.T) {
	view, err := Build(2024, 3, nil, nil, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if view.Today != "" {
		t.Errorf("Today = %q, want empty", view.Today)
	}
}

func TestBuildRejectsInvalidMonth(t *testing.T) {
	if _, err := Build(2024, 13, nil, nil, time.Time{}); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		year, month, delta int
		want               models.MonthRef
	}{
		{2024, 1, -1, models.MonthRef{Year: 2023, Month: 12}},
		{2024, 12, 1, models.MonthRef{Year: 2025, Month: 1}},
		{2024, 6, 1, models.MonthRef{Year: 2024, Month: 7}},
	}
	for _, tt := range tests {
		if got := Shift(tt.year, tt.month, tt.delta); got != tt.want {
			t.Errorf("Shift(%d, %d, %d) = %+v, want %+v", tt.year, tt.month, tt.delta, got, tt.want)
		}
	}
}
