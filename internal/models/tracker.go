package models

import (
	"fmt"
	"time"
)

// TrackerType identifies which value field of an Entry is meaningful.
type TrackerType string

const (
	TrackerBinary   TrackerType = "binary"
	TrackerNumber   TrackerType = "number"
	TrackerRating   TrackerType = "rating"
	TrackerDuration TrackerType = "duration"
	TrackerTime     TrackerType = "time"
	TrackerText     TrackerType = "text"
	TrackerPrayer   TrackerType = "prayer"
)

// TrackerTypes lists every supported tracker type in display order.
var TrackerTypes = []TrackerType{
	TrackerBinary,
	TrackerNumber,
	TrackerRating,
	TrackerDuration,
	TrackerTime,
	TrackerText,
	TrackerPrayer,
}

// Valid reports whether t is a known tracker type.
func (t TrackerType) Valid() bool {
	for _, known := range TrackerTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTrackerType converts s into a TrackerType.
func ParseTrackerType(s string) (TrackerType, error) {
	t := TrackerType(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid tracker type %q", s)
	}
	return t, nil
}

type Tracker struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         TrackerType `json:"tracker_type"`
	Unit         string      `json:"unit,omitempty"`
	DisplayOrder int         `json:"display_order"`
	IsActive     bool        `json:"is_active"`
	MinValue     *float64    `json:"min_value,omitempty"`
	MaxValue     *float64    `json:"max_value,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Label returns the tracker name with its unit, e.g. "Water (glasses)".
func (t Tracker) Label() string {
	if t.Unit == "" {
		return t.Name
	}
	return fmt.Sprintf("%s (%s)", t.Name, t.Unit)
}

// TrackerPatch holds the fields of a tracker update. Nil fields are left
// unchanged.
type TrackerPatch struct {
	Name         *string  `json:"name,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
	DisplayOrder *int     `json:"display_order,omitempty"`
	MinValue     *float64 `json:"min_value,omitempty"`
	MaxValue     *float64 `json:"max_value,omitempty"`
}

// Apply copies the set fields of p onto t.
func (p TrackerPatch) Apply(t *Tracker) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Unit != nil {
		t.Unit = *p.Unit
	}
	if p.IsActive != nil {
		t.IsActive = *p.IsActive
	}
	if p.DisplayOrder != nil {
		t.DisplayOrder = *p.DisplayOrder
	}
	if p.MinValue != nil {
		t.MinValue = p.MinValue
	}
	if p.MaxValue != nil {
		t.MaxValue = p.MaxValue
	}
}
