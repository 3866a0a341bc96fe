package models

// SuggestedTracker is a ready-made tracker definition that can be added in
// one step.
type SuggestedTracker struct {
	Slug     string      `json:"slug"`
	Name     string      `json:"name"`
	Type     TrackerType `json:"tracker_type"`
	Unit     string      `json:"unit,omitempty"`
	MinValue *float64    `json:"min_value,omitempty"`
	MaxValue *float64    `json:"max_value,omitempty"`
}

// Tracker returns a new, active tracker built from the suggestion.
func (s SuggestedTracker) Tracker() Tracker {
	return Tracker{
		Name:     s.Name,
		Type:     s.Type,
		Unit:     s.Unit,
		IsActive: true,
		MinValue: s.MinValue,
		MaxValue: s.MaxValue,
	}
}

func floatPtr(v float64) *float64 { return &v }

// SuggestedTrackers is the quick-add catalogue.
var SuggestedTrackers = []SuggestedTracker{
	// Health
	{Slug: "sleep", Name: "Sleep", Type: TrackerDuration, Unit: "hours"},
	{Slug: "wakeup", Name: "Wake Up", Type: TrackerTime},
	{Slug: "mood", Name: "Mood", Type: TrackerRating, MinValue: floatPtr(1), MaxValue: floatPtr(5)},
	{Slug: "water", Name: "Water", Type: TrackerNumber, Unit: "glasses"},
	{Slug: "weight", Name: "Weight", Type: TrackerNumber, Unit: "kg"},
	{Slug: "calories", Name: "Calories", Type: TrackerNumber, Unit: "kcal"},
	{Slug: "steps", Name: "Steps", Type: TrackerNumber, Unit: "steps"},

	// Fitness
	{Slug: "exercise", Name: "Exercise", Type: TrackerBinary},
	{Slug: "gym", Name: "Gym", Type: TrackerBinary},
	{Slug: "stretching", Name: "Stretching", Type: TrackerBinary},
	{Slug: "running", Name: "Running", Type: TrackerDuration, Unit: "mins"},

	// Mindfulness
	{Slug: "meditate", Name: "Meditate", Type: TrackerBinary},
	{Slug: "journal", Name: "Journal", Type: TrackerBinary},
	{Slug: "gratitude", Name: "Gratitude", Type: TrackerBinary},
	{Slug: "prayer", Name: "Prayer", Type: TrackerPrayer},

	// Productivity
	{Slug: "read", Name: "Read", Type: TrackerBinary},
	{Slug: "study", Name: "Study", Type: TrackerDuration, Unit: "mins"},
	{Slug: "work", Name: "Work", Type: TrackerDuration, Unit: "hours"},
	{Slug: "sideproject", Name: "Side Project", Type: TrackerBinary},
	{Slug: "learning", Name: "Learning", Type: TrackerBinary},

	// Habits to break
	{Slug: "noalcohol", Name: "No Alcohol", Type: TrackerBinary},
	{Slug: "nosmoking", Name: "No Smoking", Type: TrackerBinary},
	{Slug: "nosocialmedia", Name: "No Social Media", Type: TrackerBinary},

	// Self-care
	{Slug: "skincare", Name: "Skincare", Type: TrackerBinary},
	{Slug: "coldshower", Name: "Cold Shower", Type: TrackerBinary},
	{Slug: "vitamins", Name: "Vitamins", Type: TrackerBinary},

	// Other
	{Slug: "notes", Name: "Notes", Type: TrackerText},
	{Slug: "spending", Name: "Spending", Type: TrackerNumber, Unit: "£"},
	{Slug: "callfamily", Name: "Call Family", Type: TrackerBinary},
	{Slug: "cooking", Name: "Cooking", Type: TrackerBinary},
}

// FindSuggestedTracker looks up a catalogue entry by slug.
func FindSuggestedTracker(slug string) (SuggestedTracker, bool) {
	for _, s := range SuggestedTrackers {
		if s.Slug == slug {
			return s, true
		}
	}
	return SuggestedTracker{}, false
}
