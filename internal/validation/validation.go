// Package validation checks trackers and entry values before they are stored.
package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/utils"
)

var (
	// ErrInvalidTracker marks a tracker definition that cannot be stored.
	ErrInvalidTracker = errors.New("invalid tracker")
	// ErrInvalidEntry marks an entry value that violates its tracker's rules.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrInvalidDate marks a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date format")
)

// FieldError is a validation failure with a message safe to show users.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// PublicMessage returns the user facing message.
func (e *FieldError) PublicMessage() string { return e.Message }

func trackerErr(field, format string, args ...any) error {
	return &FieldError{Kind: ErrInvalidTracker, Field: field, Message: fmt.Sprintf(format, args...)}
}

func entryErr(field, format string, args ...any) error {
	return &FieldError{Kind: ErrInvalidEntry, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NormalizeTracker trims t's name, fills rating bounds and validates the
// result.
func NormalizeTracker(t *models.Tracker) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Unit = strings.TrimSpace(t.Unit)

	if t.Type == models.TrackerRating {
		if t.MinValue == nil {
			v := float64(constants.DefaultRatingMin)
			t.MinValue = &v
		}
		if t.MaxValue == nil {
			v := float64(constants.DefaultRatingMax)
			t.MaxValue = &v
		}
	}
	return ValidateTracker(*t)
}

// ValidateTracker checks a tracker definition.
func ValidateTracker(t models.Tracker) error {
	if t.Name == "" {
		return trackerErr("name", "Name is required")
	}
	if n := len([]rune(t.Name)); n > constants.MaxTrackerNameLength {
		return trackerErr("name", "Name must be at most %d characters", constants.MaxTrackerNameLength)
	}
	if !t.Type.Valid() {
		return trackerErr("tracker_type", "Unknown tracker type %q", t.Type)
	}
	if t.MinValue != nil && t.MaxValue != nil && *t.MinValue > *t.MaxValue {
		return trackerErr("min_value", "Minimum value must not exceed maximum value")
	}
	for _, b := range []*float64{t.MinValue, t.MaxValue} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return trackerErr("min_value", "Bounds must be finite numbers")
		}
	}
	return nil
}

// ValidateDate checks that s is a YYYY-MM-DD date.
func ValidateDate(s string) error {
	if _, err := utils.ParseDate(s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateEntry checks the field belonging to tracker's type against its
// bounds. Fields of other types are ignored.
func ValidateEntry(tracker models.Tracker, f models.ValueFields) error {
	switch v := f.Value(tracker.Type).(type) {
	case nil:
		return entryErr("value", "No value provided for %s tracker", tracker.Type)
	case models.NumberValue:
		n := float64(v)
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return entryErr("number_value", "Value must be a finite number")
		}
		return checkBounds(tracker, "number_value", n)
	case models.RatingValue:
		return checkBounds(tracker, "rating_value", float64(v))
	case models.DurationValue:
		if v <= 0 {
			return entryErr("duration_minutes", "Duration must be positive")
		}
	case models.TimeValue:
		if !utils.ValidateTimeFormat(string(v)) {
			return entryErr("time_value", "Time must be HH:MM")
		}
	}
	return nil
}

func checkBounds(tracker models.Tracker, field string, v float64) error {
	if tracker.MinValue != nil && v < *tracker.MinValue {
		return entryErr(field, "Value must be at least %s", formatBound(*tracker.MinValue))
	}
	if tracker.MaxValue != nil && v > *tracker.MaxValue {
		return entryErr(field, "Value must be at most %s", formatBound(*tracker.MaxValue))
	}
	return nil
}

func formatBound(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
