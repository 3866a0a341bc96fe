package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/validation"
)

// EditFormModel holds the raw inputs of the cell edit form.
type EditFormModel struct {
	Value   string
	Hours   string
	Minutes string
	// Prayers has one "", "true" or "false" per models.Prayers.
	Prayers []string
}

// newEditFormModel pre-fills the form from the existing entry.
func newEditFormModel(t models.Tracker, e *models.Entry) *EditFormModel {
	fm := &EditFormModel{Prayers: make([]string, len(models.Prayers))}
	if e == nil {
		return fm
	}
	switch v := e.Value(t.Type).(type) {
	case models.DurationValue:
		fm.Hours = strconv.Itoa(int(v) / 60)
		fm.Minutes = strconv.Itoa(int(v) % 60)
	case models.PrayerValue:
		for i, p := range models.Prayers {
			if b := v[p]; b != nil {
				fm.Prayers[i] = strconv.FormatBool(*b)
			}
		}
	default:
		fm.Value = entrycodec.Encode(e, t.Type)
	}
	return fm
}

// decodeForm turns the form inputs into a value or a delete, checking the
// tracker's bounds so nothing invalid is sent.
func decodeForm(t models.Tracker, fm *EditFormModel) (entrycodec.Decoded, error) {
	var (
		d   entrycodec.Decoded
		err error
	)
	switch t.Type {
	case models.TrackerDuration:
		d, err = entrycodec.DecodeDuration(fm.Hours, fm.Minutes)
	case models.TrackerPrayer:
		values := models.PrayerValues{}
		for i, p := range models.Prayers {
			if i >= len(fm.Prayers) {
				break
			}
			switch fm.Prayers[i] {
			case "true":
				values[p] = models.BoolPtr(true)
			case "false":
				values[p] = models.BoolPtr(false)
			}
		}
		d = entrycodec.DecodePrayer(values)
	default:
		d, err = entrycodec.Decode(t.Type, fm.Value)
	}
	if err != nil {
		return entrycodec.Decoded{}, err
	}
	if !d.Delete {
		if err := validation.ValidateEntry(t, models.FieldsFromValue(d.Value)); err != nil {
			return entrycodec.Decoded{}, err
		}
	}
	return d, nil
}

func newEditForm(t models.Tracker, date string, fm *EditFormModel) *huh.Form {
	title := fmt.Sprintf("%s on %s", t.Label(), date)
	validate := func(string) error {
		_, err := decodeForm(t, fm)
		return err
	}

	var fields []huh.Field
	switch t.Type {
	case models.TrackerDuration:
		fields = append(fields,
			huh.NewInput().Title(title).Description("Hours").Value(&fm.Hours).Validate(validate),
			huh.NewInput().Description("Minutes").Value(&fm.Minutes).Validate(validate),
		)
	case models.TrackerPrayer:
		for i, p := range models.Prayers {
			sel := huh.NewSelect[string]().
				Title(string(p)).
				Options(
					huh.NewOption("not tracked", ""),
					huh.NewOption("prayed", "true"),
					huh.NewOption("missed", "false"),
				).
				Value(&fm.Prayers[i])
			if i == 0 {
				sel.Description(title)
			}
			fields = append(fields, sel)
		}
	case models.TrackerText:
		fields = append(fields,
			huh.NewText().Title(title).Description("Leave empty to clear").Value(&fm.Value),
		)
	default:
		fields = append(fields,
			huh.NewInput().Title(title).Description(inputHint(t)).Value(&fm.Value).Validate(validate),
		)
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true)
}

func inputHint(t models.Tracker) string {
	switch t.Type {
	case models.TrackerTime:
		return "HH:MM, empty to clear"
	case models.TrackerRating:
		lo, hi := 1.0, 5.0
		if t.MinValue != nil {
			lo = *t.MinValue
		}
		if t.MaxValue != nil {
			hi = *t.MaxValue
		}
		return fmt.Sprintf("%g to %g, empty to clear", lo, hi)
	}
	return "Empty to clear"
}
