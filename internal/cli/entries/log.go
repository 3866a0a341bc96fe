package entries

import (
	"fmt"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/utils"
	"github.com/julianstephens/tracked/internal/validation"
)

type LogCmd struct {
	Tracker string `arg:"" help:"Tracker name or ID."`
	Value   string `arg:"" optional:"" help:"Value to record. Empty deletes the entry."`
	Date    string `help:"Date (YYYY-MM-DD). Defaults to today."`
	Hours   string `help:"Hours, for duration trackers."`
	Minutes string `help:"Minutes, for duration trackers."`
	Prayer  string `help:"Prayer values, e.g. fajr=true,dhuhr=false."`
	Delete  bool   `help:"Delete the entry for the date."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Today()
	}
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}

	tracker, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}

	decoded, err := c.decode(tracker)
	if err != nil {
		return err
	}
	if !decoded.Delete {
		if err := validation.ValidateEntry(tracker, models.FieldsFromValue(decoded.Value)); err != nil {
			return err
		}
	}

	entry, err := ctx.Client.SaveEntry(ctx.Context(), entrycodec.Payload(tracker.ID, date, decoded))
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	if entry == nil {
		ctx.Printf("✓ Cleared %s on %s\n", tracker.Name, date)
		return nil
	}
	ctx.Printf("✓ %s on %s: %s\n", tracker.Label(), date, entrycodec.Cell(entry, tracker.Type))
	return nil
}

// decode turns the flags into a value before anything is sent, so malformed
// input never reaches the server.
func (c *LogCmd) decode(tracker models.Tracker) (entrycodec.Decoded, error) {
	switch {
	case c.Delete:
		return entrycodec.Decoded{Delete: true}, nil
	case tracker.Type == models.TrackerDuration && (c.Hours != "" || c.Minutes != ""):
		return entrycodec.DecodeDuration(c.Hours, c.Minutes)
	case tracker.Type == models.TrackerPrayer && c.Prayer != "":
		return entrycodec.Decode(tracker.Type, c.Prayer)
	case c.Value == "" && tracker.Type == models.TrackerBinary:
		// A bare "tracked log gym" marks the habit done.
		return entrycodec.Decoded{Value: models.BinaryValue(true)}, nil
	}
	return entrycodec.Decode(tracker.Type, c.Value)
}
