package trackers

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/tracked/internal/cli/clitest"
	"github.com/julianstephens/tracked/internal/models"
)

func TestAddAndList(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	ctx := env.Ctx

	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "No trackers found") {
		t.Errorf("empty output = %q", env.Out.String())
	}

	max := 8.0
	if err := (&AddCmd{Name: "Water", Type: "number", Unit: "glasses", Max: &max}).Run(ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := (&AddCmd{Name: "", Type: "binary"}).Run(ctx); err == nil {
		t.Error("expected error for empty name")
	}

	env.Out.Reset()
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if got := env.Out.String(); !strings.Contains(got, "[active] Water (glasses) - number [..8]") {
		t.Errorf("list output = %q", got)
	}
}

func TestQuickAddAndSuggested(t *testing.T) {
	env := clitest.New(t, clitest.Options{})

	if err := (&SuggestedCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "meditate") {
		t.Errorf("suggested output = %q", env.Out.String())
	}

	if err := (&QuickAddCmd{Slugs: []string{"Sleep", "mood"}}).Run(env.Ctx); err != nil {
		t.Fatalf("quick-add failed: %v", err)
	}
	trackers, _ := env.Store.ListTrackers(context.Background(), true)
	if len(trackers) != 2 || trackers[0].Name != "Sleep" || trackers[1].Type != models.TrackerRating {
		t.Errorf("trackers = %+v", trackers)
	}

	if err := (&QuickAddCmd{Slugs: []string{"unicorns"}}).Run(env.Ctx); err == nil {
		t.Error("expected error for unknown slug")
	}
}

func TestRenameToggleDelete(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	bg := context.Background()
	gym := env.AddTracker(t, models.Tracker{Name: "Gym", Type: models.TrackerBinary})

	if err := (&RenameCmd{Tracker: "gym", Name: "Lifting"}).Run(env.Ctx); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if err := (&ToggleCmd{Tracker: gym.ID}).Run(env.Ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	got, _ := env.Store.GetTracker(bg, gym.ID)
	if got.Name != "Lifting" || got.IsActive {
		t.Errorf("tracker = %+v", got)
	}

	if err := (&DeleteCmd{Tracker: "Lifting"}).Run(env.Ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := (&DeleteCmd{Tracker: "Lifting"}).Run(env.Ctx); err == nil {
		t.Error("expected error deleting a missing tracker")
	}
}

func TestReorder(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	a := env.AddTracker(t, models.Tracker{Name: "A", Type: models.TrackerBinary})
	b := env.AddTracker(t, models.Tracker{Name: "B", Type: models.TrackerBinary})
	c := env.AddTracker(t, models.Tracker{Name: "C", Type: models.TrackerBinary})

	if err := (&ReorderCmd{Trackers: []string{"C", "a"}}).Run(env.Ctx); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}
	trackers, _ := env.Store.ListTrackers(context.Background(), false)
	var order []string
	for _, tr := range trackers {
		order = append(order, tr.ID)
	}
	want := []string{c.ID, a.ID, b.ID}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", order, want)
	}

	if err := (&ReorderCmd{Trackers: []string{"A", "a"}}).Run(env.Ctx); err == nil {
		t.Error("expected error for duplicate tracker")
	}
}

func TestCommandsNeedServer(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	env.Ctx.Client = nil
	if err := (&ListCmd{}).Run(env.Ctx); err == nil || !strings.Contains(err.Error(), "no server configured") {
		t.Errorf("error = %v", err)
	}
}
