package utils

import (
	"testing"
	"time"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2025, time.February, 28},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, time.February)
	if first != "2024-02-01" || last != "2024-02-29" {
		t.Errorf("MonthBounds() = %s..%s, want 2024-02-01..2024-02-29", first, last)
	}
}

func TestValidateMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   int
		wantErr bool
	}{
		{"valid", 2025, 6, false},
		{"month zero", 2025, 0, true},
		{"month thirteen", 2025, 13, true},
		{"year zero", 0, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMonth(tt.year, tt.month)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMonth(%d, %d) error = %v, wantErr %v", tt.year, tt.month, err, tt.wantErr)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("test", 3*3600)
	in := time.Date(2025, 3, 9, 23, 59, 10, 5, loc)
	got := StartOfDay(in)
	want := time.Date(2025, 3, 9, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestValidateTimezone(t *testing.T) {
	tests := map[string]bool{
		"":          true,
		"Local":     true,
		"UTC":       true,
		"Not/AZone": false,
	}
	for tz, want := range tests {
		if got := ValidateTimezone(tz); got != want {
			t.Errorf("ValidateTimezone(%q) = %v, want %v", tz, got, want)
		}
	}
}

func TestValidateTimeFormat(t *testing.T) {
	if !ValidateTimeFormat("07:30") {
		t.Error("ValidateTimeFormat(07:30) = false, want true")
	}
	if ValidateTimeFormat("7.30") {
		t.Error("ValidateTimeFormat(7.30) = true, want false")
	}
}
