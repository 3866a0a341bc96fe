package models

import (
	"strings"
	"time"
)

// Value is a typed entry value. Exactly one implementation exists per
// TrackerType, so a type switch over Value covers every tracker type.
type Value interface {
	Type() TrackerType
	isValue()
}

type (
	BinaryValue   bool
	NumberValue   float64
	RatingValue   int
	DurationValue int // minutes
	TimeValue     string
	TextValue     string
	PrayerValue   PrayerValues
)

func (BinaryValue) Type() TrackerType   { return TrackerBinary }
func (NumberValue) Type() TrackerType   { return TrackerNumber }
func (RatingValue) Type() TrackerType   { return TrackerRating }
func (DurationValue) Type() TrackerType { return TrackerDuration }
func (TimeValue) Type() TrackerType     { return TrackerTime }
func (TextValue) Type() TrackerType     { return TrackerText }
func (PrayerValue) Type() TrackerType   { return TrackerPrayer }

func (BinaryValue) isValue()   {}
func (NumberValue) isValue()   {}
func (RatingValue) isValue()   {}
func (DurationValue) isValue() {}
func (TimeValue) isValue()     {}
func (TextValue) isValue()     {}
func (PrayerValue) isValue()   {}

// ValueFields holds the per-type value columns shared by stored entries and
// save payloads. Only the field matching the tracker's type is meaningful.
type ValueFields struct {
	BinaryValue     *bool        `json:"binary_value,omitempty"`
	NumberValue     *float64     `json:"number_value,omitempty"`
	RatingValue     *int         `json:"rating_value,omitempty"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
	TimeValue       *string      `json:"time_value,omitempty"`
	TextValue       *string      `json:"text_value,omitempty"`
	PrayerValues    PrayerValues `json:"prayer_values,omitempty"`
}

// Value returns the populated value for tracker type t, or nil when the
// field belonging to t is empty. Fields of other types are never read.
func (f ValueFields) Value(t TrackerType) Value {
	switch t {
	case TrackerBinary:
		if f.BinaryValue != nil {
			return BinaryValue(*f.BinaryValue)
		}
	case TrackerNumber:
		if f.NumberValue != nil {
			return NumberValue(*f.NumberValue)
		}
	case TrackerRating:
		if f.RatingValue != nil {
			return RatingValue(*f.RatingValue)
		}
	case TrackerDuration:
		if f.DurationMinutes != nil {
			return DurationValue(*f.DurationMinutes)
		}
	case TrackerTime:
		if f.TimeValue != nil && strings.TrimSpace(*f.TimeValue) != "" {
			return TimeValue(*f.TimeValue)
		}
	case TrackerText:
		if f.TextValue != nil && strings.TrimSpace(*f.TextValue) != "" {
			return TextValue(*f.TextValue)
		}
	case TrackerPrayer:
		if f.PrayerValues.HasData() {
			return PrayerValue(f.PrayerValues.Compact())
		}
	}
	return nil
}

// FieldsFromValue builds ValueFields with only v's field populated.
func FieldsFromValue(v Value) ValueFields {
	var f ValueFields
	switch val := v.(type) {
	case BinaryValue:
		b := bool(val)
		f.BinaryValue = &b
	case NumberValue:
		n := float64(val)
		f.NumberValue = &n
	case RatingValue:
		r := int(val)
		f.RatingValue = &r
	case DurationValue:
		d := int(val)
		f.DurationMinutes = &d
	case TimeValue:
		s := string(val)
		f.TimeValue = &s
	case TextValue:
		s := string(val)
		f.TextValue = &s
	case PrayerValue:
		f.PrayerValues = PrayerValues(val).Compact()
	}
	return f
}

// Entry is one tracker's recorded value for one date.
type Entry struct {
	ID        string `json:"id,omitempty"`
	TrackerID string `json:"tracker_id"`
	Date      string `json:"date"`
	ValueFields
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// EntryPayload is the body of a save request. DeleteEntry asks the server to
// remove the entry instead of storing a value.
type EntryPayload struct {
	TrackerID   string `json:"tracker_id"`
	Date        string `json:"date"`
	DeleteEntry bool   `json:"delete_entry,omitempty"`
	ValueFields
}

// NewEntryPayload builds a save payload for v.
func NewEntryPayload(trackerID, date string, v Value) EntryPayload {
	return EntryPayload{
		TrackerID:   trackerID,
		Date:        date,
		ValueFields: FieldsFromValue(v),
	}
}

// DeletePayload builds a payload that removes the entry.
func DeletePayload(trackerID, date string) EntryPayload {
	return EntryPayload{
		TrackerID:   trackerID,
		Date:        date,
		DeleteEntry: true,
	}
}
