// Package analyzer turns tracked data into insight content, either through a
// Gemini model or a local statistical summary.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/utils"
)

const (
	EmptyReplySummary  = "Unable to generate insights at this time."
	FormatErrorSummary = "Unable to generate insights due to a formatting issue."
)

// NoDataMessage is shown when a period has nothing to analyze.
const NoDataMessage = "No tracking data found. Start logging some entries first!"

// ErrNoData is returned when the period has no recorded values.
var ErrNoData = errors.New("no tracking data found")

// TrackingData maps date -> tracker name -> value. Values are bool, float64,
// int or string depending on the tracker type.
type TrackingData map[string]map[string]any

// Request describes one analysis.
type Request struct {
	ReportType  models.ReportType
	PeriodStart string
	PeriodEnd   string
	Data        TrackingData
}

// Analyzer produces insight content for a request.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (models.InsightContent, error)
	Name() string
}

// Period returns the inclusive date range a report covers, ending today.
func Period(reportType models.ReportType, today time.Time) (start, end string) {
	days := 30
	switch reportType {
	case models.ReportDaily:
		days = 1
	case models.ReportWeekly:
		days = 7
	}
	return utils.FormatDate(today.AddDate(0, 0, -days)), utils.FormatDate(today)
}

// BuildTrackingData collects the values of trackers from entries. Days with
// no values are omitted. Prayer entries contribute their completed count.
func BuildTrackingData(trackers []models.Tracker, entries []models.Entry) TrackingData {
	byID := make(map[string]models.Tracker, len(trackers))
	for _, t := range trackers {
		byID[t.ID] = t
	}

	data := TrackingData{}
	for _, e := range entries {
		t, ok := byID[e.TrackerID]
		if !ok {
			continue
		}
		var value any
		switch v := e.Value(t.Type).(type) {
		case nil:
			continue
		case models.BinaryValue:
			value = bool(v)
		case models.NumberValue:
			value = float64(v)
		case models.RatingValue:
			value = int(v)
		case models.DurationValue:
			value = int(v)
		case models.TimeValue:
			value = string(v)
		case models.TextValue:
			value = string(v)
		case models.PrayerValue:
			value = models.PrayerValues(v).Done()
		}
		if data[e.Date] == nil {
			data[e.Date] = map[string]any{}
		}
		data[e.Date][t.Name] = value
	}
	return data
}

// ParseContent decodes a model reply. Replies that are empty or not JSON
// yield fallback content rather than an error.
func ParseContent(reply string) (models.InsightContent, bool) {
	if strings.TrimSpace(reply) == "" {
		return fallback(EmptyReplySummary), false
	}
	raw := extractJSON(reply)
	if raw == "" {
		return fallback(FormatErrorSummary), false
	}
	var content models.InsightContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return fallback(FormatErrorSummary), false
	}
	normalize(&content)
	return content, true
}

func fallback(summary string) models.InsightContent {
	return models.InsightContent{
		Summary:      summary,
		Trends:       []models.Trend{},
		Correlations: []models.Correlation{},
		Advice:       []string{},
	}
}

// normalize replaces nil slices so clients always see arrays and clamps
// enumerations to their allowed values.
func normalize(c *models.InsightContent) {
	if c.Trends == nil {
		c.Trends = []models.Trend{}
	}
	if c.Correlations == nil {
		c.Correlations = []models.Correlation{}
	}
	if c.Advice == nil {
		c.Advice = []string{}
	}
	for i := range c.Trends {
		if !slices.Contains(trendDirections, c.Trends[i].Direction) {
			c.Trends[i].Direction = "stable"
		}
	}
	for i := range c.Correlations {
		if !slices.Contains(correlationStrengths, c.Correlations[i].Strength) {
			c.Correlations[i].Strength = "weak"
		}
	}
}

// extractJSON returns the outermost object in s, tolerating code fences and
// surrounding prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}
