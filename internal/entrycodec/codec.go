// Package entrycodec converts between user-facing strings and typed entry
// values for each tracker type.
package entrycodec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/models"
)

// ErrInvalidValue is returned when raw input cannot be parsed for the
// tracker's type. Such input must not be sent to the server.
var ErrInvalidValue = errors.New("invalid value")

// Decoded is the outcome of decoding user input: either a value to save or a
// request to delete the entry.
type Decoded struct {
	Value  models.Value
	Delete bool
}

var durationPattern = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m(?:in)?)?$`)

func invalid(t models.TrackerType, raw string, reason string) error {
	return fmt.Errorf("%w for %s tracker: %q (%s)", ErrInvalidValue, t, raw, reason)
}

// Decode parses raw input for a tracker of type t. Empty input always
// decodes to a delete.
func Decode(t models.TrackerType, raw string) (Decoded, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Decoded{Delete: true}, nil
	}

	switch t {
	case models.TrackerBinary:
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return Decoded{Value: models.BinaryValue(true)}, nil
		}
		return Decoded{Value: models.BinaryValue(false)}, nil

	case models.TrackerNumber:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return Decoded{}, invalid(t, raw, "not a number")
		}
		return Decoded{Value: models.NumberValue(n)}, nil

	case models.TrackerRating:
		r, err := strconv.Atoi(s)
		if err != nil {
			return Decoded{}, invalid(t, raw, "not a whole number")
		}
		return Decoded{Value: models.RatingValue(r)}, nil

	case models.TrackerDuration:
		minutes, err := parseMinutes(s)
		if err != nil {
			return Decoded{}, invalid(t, raw, err.Error())
		}
		return durationResult(minutes), nil

	case models.TrackerTime:
		v, err := parseClock(s)
		if err != nil {
			return Decoded{}, invalid(t, raw, "expected HH:MM")
		}
		return Decoded{Value: models.TimeValue(v)}, nil

	case models.TrackerText:
		return Decoded{Value: models.TextValue(s)}, nil

	case models.TrackerPrayer:
		values, err := parsePrayers(s)
		if err != nil {
			return Decoded{}, invalid(t, raw, err.Error())
		}
		return DecodePrayer(values), nil
	}

	return Decoded{}, fmt.Errorf("%w: unknown tracker type %q", ErrInvalidValue, t)
}

// DecodeDuration composes separate hours and minutes inputs. Blank fields
// count as zero; a total of zero or less decodes to a delete.
func DecodeDuration(hours, minutes string) (Decoded, error) {
	h, err := atoiOrZero(hours)
	if err != nil {
		return Decoded{}, invalid(models.TrackerDuration, hours, "hours must be a whole number")
	}
	m, err := atoiOrZero(minutes)
	if err != nil {
		return Decoded{}, invalid(models.TrackerDuration, minutes, "minutes must be a whole number")
	}
	return durationResult(h*60 + m), nil
}

// DecodePrayer turns a prayer map into a value, or a delete when no prayer
// holds a concrete true/false.
func DecodePrayer(values models.PrayerValues) Decoded {
	if !values.HasData() {
		return Decoded{Delete: true}
	}
	return Decoded{Value: models.PrayerValue(values.Compact())}
}

// Payload builds the save request body for d.
func Payload(trackerID, date string, d Decoded) models.EntryPayload {
	if d.Delete || d.Value == nil {
		return models.DeletePayload(trackerID, date)
	}
	return models.NewEntryPayload(trackerID, date, d.Value)
}

// Encode returns the display string of the entry's value for tracker type t,
// or "" when the entry is absent. Only t's own field is read.
func Encode(e *models.Entry, t models.TrackerType) string {
	if e == nil {
		return ""
	}
	return EncodeValue(e.Value(t))
}

// EncodeValue returns the display string for v, or "" for nil.
func EncodeValue(v models.Value) string {
	switch val := v.(type) {
	case models.BinaryValue:
		return strconv.FormatBool(bool(val))
	case models.NumberValue:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case models.RatingValue:
		return strconv.Itoa(int(val))
	case models.DurationValue:
		return FormatMinutes(int(val))
	case models.TimeValue:
		if clock, err := parseClock(string(val)); err == nil {
			return clock
		}
		return string(val)
	case models.TextValue:
		return string(val)
	case models.PrayerValue:
		data, err := json.Marshal(models.PrayerValues(val).Compact())
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// Cell is the compact grid rendering of an entry: a check or cross for
// binary trackers, "done/5" for prayers and Encode for everything else.
func Cell(e *models.Entry, t models.TrackerType) string {
	if e == nil {
		return ""
	}
	switch val := e.Value(t).(type) {
	case nil:
		return ""
	case models.BinaryValue:
		if val {
			return "✓"
		}
		return "✗"
	case models.PrayerValue:
		return fmt.Sprintf("%d/%d", models.PrayerValues(val).Done(), constants.PrayersPerDay)
	}
	return Encode(e, t)
}

// HasEntryData reports whether the entry holds a value for tracker type t.
// Fields belonging to other types are ignored.
func HasEntryData(e *models.Entry, t models.TrackerType) bool {
	return e != nil && e.Value(t) != nil
}

// FormatMinutes renders minutes as "1h 30m", "2h" or "45m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

func durationResult(minutes int) Decoded {
	if minutes <= 0 {
		return Decoded{Delete: true}
	}
	return Decoded{Value: models.DurationValue(minutes)}
}

func parseMinutes(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	match := durationPattern.FindStringSubmatch(strings.ToLower(s))
	if match == nil || (match[1] == "" && match[2] == "") {
		return 0, errors.New("expected minutes or a value like 1h 30m")
	}
	h, _ := atoiOrZero(match[1])
	m, _ := atoiOrZero(match[2])
	return h*60 + m, nil
}

// parseClock accepts HH:MM or HH:MM:SS and returns HH:MM.
func parseClock(s string) (string, error) {
	layout := constants.TimeFormat
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return "", err
	}
	return t.Format(constants.TimeFormat), nil
}

// parsePrayers accepts a JSON object or a list like "fajr=true,asr=false".
// A bare name means true.
func parsePrayers(s string) (models.PrayerValues, error) {
	if strings.EqualFold(s, "null") {
		return models.PrayerValues{}, nil
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, `"`) {
		values := models.NormalizePrayerValues([]byte(s))
		if values == nil {
			return nil, errors.New("malformed prayer JSON")
		}
		return values, nil
	}

	values := make(models.PrayerValues, len(models.Prayers))
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, raw, hasValue := strings.Cut(part, "=")
		prayer := models.Prayer(strings.ToLower(strings.TrimSpace(name)))
		if !models.IsPrayer(prayer) {
			return nil, fmt.Errorf("unknown prayer %q", name)
		}
		if !hasValue {
			values[prayer] = models.BoolPtr(true)
			continue
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1", "yes":
			values[prayer] = models.BoolPtr(true)
		case "false", "0", "no":
			values[prayer] = models.BoolPtr(false)
		case "null", "":
			values[prayer] = nil
		default:
			return nil, fmt.Errorf("invalid value for %s: %q", prayer, raw)
		}
	}
	return values, nil
}

func atoiOrZero(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
