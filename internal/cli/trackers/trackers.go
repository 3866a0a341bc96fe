package trackers

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/models"
)

type ListCmd struct {
	All     bool `help:"Include inactive trackers."`
	ShowIDs bool `help:"Show tracker IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	trackers, err := client.ListTrackers(ctx.Context(), c.All)
	if err != nil {
		return fmt.Errorf("failed to list trackers: %w", err)
	}
	if len(trackers) == 0 {
		ctx.Println("No trackers found. Add one with 'tracked tracker add' or 'tracked tracker quick-add'.")
		return nil
	}

	ctx.Println("Trackers:")
	for _, t := range trackers {
		status := "active"
		if !t.IsActive {
			status = "inactive"
		}
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", t.ID)
		}
		ctx.Printf("  [%s] %s%s - %s%s\n", status, t.Label(), idStr, t.Type, formatBounds(t))
	}
	return nil
}

func formatBounds(t models.Tracker) string {
	if t.MinValue == nil && t.MaxValue == nil {
		return ""
	}
	lo, hi := "", ""
	if t.MinValue != nil {
		lo = fmt.Sprintf("%g", *t.MinValue)
	}
	if t.MaxValue != nil {
		hi = fmt.Sprintf("%g", *t.MaxValue)
	}
	return fmt.Sprintf(" [%s..%s]", lo, hi)
}

type AddCmd struct {
	Name string   `arg:"" help:"Tracker name."`
	Type string   `short:"t" required:"" enum:"binary,number,rating,duration,time,text,prayer" help:"Tracker type (binary, number, rating, duration, time, text, prayer)."`
	Unit string   `help:"Unit shown next to the name, e.g. glasses."`
	Min  *float64 `help:"Minimum allowed value (number and rating)."`
	Max  *float64 `help:"Maximum allowed value (number and rating)."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	tt, err := models.ParseTrackerType(c.Type)
	if err != nil {
		return err
	}
	created, err := client.CreateTracker(ctx.Context(), models.Tracker{
		Name:     c.Name,
		Type:     tt,
		Unit:     c.Unit,
		IsActive: true,
		MinValue: c.Min,
		MaxValue: c.Max,
	})
	if err != nil {
		return fmt.Errorf("failed to add tracker: %w", err)
	}
	ctx.Printf("✓ Added tracker: %s (%s)\n", created.Label(), created.Type)
	return nil
}

type SuggestedCmd struct{}

func (c *SuggestedCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	suggested, err := client.SuggestedTrackers(ctx.Context())
	if err != nil {
		return fmt.Errorf("failed to list suggestions: %w", err)
	}
	ctx.Println("Suggested trackers (add with 'tracked tracker quick-add <slug>'):")
	for _, s := range suggested {
		unit := ""
		if s.Unit != "" {
			unit = " (" + s.Unit + ")"
		}
		ctx.Printf("  %-14s %s%s - %s\n", s.Slug, s.Name, unit, s.Type)
	}
	return nil
}

type QuickAddCmd struct {
	Slugs []string `arg:"" help:"Suggested tracker slugs."`
}

func (c *QuickAddCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	for _, slug := range c.Slugs {
		created, err := client.QuickAddTracker(ctx.Context(), strings.ToLower(slug))
		if err != nil {
			return fmt.Errorf("failed to add %q: %w", slug, err)
		}
		ctx.Printf("✓ Added tracker: %s (%s)\n", created.Label(), created.Type)
	}
	return nil
}

type RenameCmd struct {
	Tracker string `arg:"" help:"Tracker name or ID."`
	Name    string `arg:"" help:"New name."`
}

func (c *RenameCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	updated, err := ctx.Client.UpdateTracker(ctx.Context(), t.ID, models.TrackerPatch{Name: &c.Name})
	if err != nil {
		return fmt.Errorf("failed to rename tracker: %w", err)
	}
	ctx.Printf("✓ Renamed %s to %s\n", t.Name, updated.Name)
	return nil
}

type ToggleCmd struct {
	Tracker string `arg:"" help:"Tracker name or ID."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	active := !t.IsActive
	if _, err := ctx.Client.UpdateTracker(ctx.Context(), t.ID, models.TrackerPatch{IsActive: &active}); err != nil {
		return fmt.Errorf("failed to update tracker: %w", err)
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	ctx.Printf("✓ Tracker %s %s\n", t.Name, state)
	return nil
}

type ReorderCmd struct {
	Trackers []string `arg:"" help:"Tracker names or IDs in the desired order. Unlisted trackers keep their relative order after these."`
}

func (c *ReorderCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	all, err := client.ListTrackers(ctx.Context(), true)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, ref := range c.Trackers {
		t, err := cli.FindTracker(all, ref)
		if err != nil {
			return err
		}
		if seen[t.ID] {
			return fmt.Errorf("tracker %q listed twice", ref)
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	for _, t := range all {
		if !seen[t.ID] {
			ids = append(ids, t.ID)
		}
	}

	if err := client.ReorderTrackers(ctx.Context(), ids); err != nil {
		return fmt.Errorf("failed to reorder trackers: %w", err)
	}
	ctx.Println("✓ Trackers reordered")
	return nil
}

type DeleteCmd struct {
	Tracker string `arg:"" help:"Tracker name or ID."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.ResolveTracker(c.Tracker)
	if err != nil {
		return err
	}
	if err := ctx.Client.DeleteTracker(ctx.Context(), t.ID); err != nil {
		return fmt.Errorf("failed to delete tracker: %w", err)
	}
	ctx.Printf("✓ Deleted tracker %s and its entries\n", t.Name)
	return nil
}
