package models

import (
	"bytes"
	"encoding/json"
)

// Prayer names one of the five daily prayers.
type Prayer string

const (
	Fajr    Prayer = "fajr"
	Dhuhr   Prayer = "dhuhr"
	Asr     Prayer = "asr"
	Maghrib Prayer = "maghrib"
	Isha    Prayer = "isha"
)

// Prayers lists the prayers in daily order.
var Prayers = []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha}

// IsPrayer reports whether p is one of the five known prayers.
func IsPrayer(p Prayer) bool {
	for _, known := range Prayers {
		if p == known {
			return true
		}
	}
	return false
}

// PrayerValues maps each prayer to true (performed), false (explicitly not
// performed) or nil (untracked).
type PrayerValues map[Prayer]*bool

// HasData reports whether at least one prayer holds a concrete boolean.
func (p PrayerValues) HasData() bool {
	for _, prayer := range Prayers {
		if p[prayer] != nil {
			return true
		}
	}
	return false
}

// Done returns the number of prayers marked true.
func (p PrayerValues) Done() int {
	n := 0
	for _, prayer := range Prayers {
		if v := p[prayer]; v != nil && *v {
			n++
		}
	}
	return n
}

// Compact returns a copy holding only the known prayers with concrete values.
// It returns nil when nothing is tracked.
func (p PrayerValues) Compact() PrayerValues {
	var out PrayerValues
	for _, prayer := range Prayers {
		if v := p[prayer]; v != nil {
			if out == nil {
				out = make(PrayerValues, len(Prayers))
			}
			b := *v
			out[prayer] = &b
		}
	}
	return out
}

// UnmarshalJSON accepts either a JSON object or a string containing a JSON
// object. Anything unparseable decodes to nil rather than failing, and values
// that are not booleans are treated as untracked.
func (p *PrayerValues) UnmarshalJSON(data []byte) error {
	*p = NormalizePrayerValues(data)
	return nil
}

// NormalizePrayerValues decodes raw prayer data that may be an object or a
// JSON-encoded string. It never fails: bad input yields nil.
func NormalizePrayerValues(raw []byte) PrayerValues {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil
		}
		return NormalizePrayerValues([]byte(inner))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	out := make(PrayerValues, len(Prayers))
	for _, prayer := range Prayers {
		field, ok := fields[string(prayer)]
		if !ok {
			continue
		}
		var v *bool
		if err := json.Unmarshal(field, &v); err != nil {
			continue
		}
		out[prayer] = v
	}
	return out
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
