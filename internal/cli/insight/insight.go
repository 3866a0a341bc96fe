package insight

import (
	"errors"
	"fmt"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/logger"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
)

type LatestCmd struct {
	Type string `arg:"" optional:"" default:"monthly" enum:"daily,weekly,monthly" help:"Report type (daily, weekly, monthly)."`
}

func (c *LatestCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	rt, err := models.ParseReportType(c.Type)
	if err != nil {
		return err
	}

	in, err := client.GetLatestInsight(ctx.Context(), rt)
	if err != nil {
		return fmt.Errorf("failed to load insight: %w", err)
	}
	if in == nil {
		ctx.Printf("No %s insight yet. Run 'tracked insight generate %s' to create one.\n", rt, rt)
		return nil
	}
	ctx.Printf("%s", insights.Format(in))
	return nil
}

type HistoryCmd struct {
	Type  string `arg:"" optional:"" default:"monthly" enum:"daily,weekly,monthly" help:"Report type (daily, weekly, monthly)."`
	Limit int    `help:"Maximum number of insights to list." default:"20"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	rt, err := models.ParseReportType(c.Type)
	if err != nil {
		return err
	}

	list, err := client.InsightHistory(ctx.Context(), rt, c.Limit)
	if err != nil {
		return fmt.Errorf("failed to load insight history: %w", err)
	}
	if len(list) == 0 {
		ctx.Printf("No %s insights found.\n", rt)
		return nil
	}
	for _, in := range list {
		ctx.Printf("%s  %s to %s  %s\n",
			in.GeneratedAt.In(ctx.Location()).Format("2006-01-02 15:04"),
			in.PeriodStart, in.PeriodEnd, truncate(in.Content.Summary, 60))
	}
	return nil
}

type GenerateCmd struct {
	Type     string `arg:"" optional:"" default:"monthly" enum:"daily,weekly,monthly" help:"Report type (daily, weekly, monthly)."`
	NoNotify bool   `help:"Do not send a desktop notification when done."`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	rt, err := models.ParseReportType(c.Type)
	if err != nil {
		return err
	}

	now := ctx.CurrentTime()
	view, err := client.FetchMonthData(ctx.Context(), now.Year(), int(now.Month()))
	if err != nil {
		return fmt.Errorf("failed to fetch month: %w", err)
	}
	coverage := stats.ComputeCoverage(rt, view, view.Trackers, now)

	panel := insights.NewPanel(client, insights.WithOnChange(func(s insights.Snapshot) {
		switch s.State {
		case insights.StateSubmitting:
			ctx.Printf("Generating %s insight...\n", rt)
		case insights.StatePolling:
			ctx.Println("Waiting for analysis to finish...")
		}
	}))
	defer panel.Close()

	panel.SetScope(ctx.Context(), insights.Scope{
		ReportType: rt,
		Month:      models.MonthRef{Year: view.Year, Month: view.Month},
	})
	panel.SetCoverage(coverage)

	snap, err := panel.Generate(ctx.Context())
	if errors.Is(err, insights.ErrNotEnoughData) {
		return fmt.Errorf("%w: %d of %d cells filled, need %.0f%%",
			insights.ErrNotEnoughData, coverage.Filled, coverage.Total, constants.CoverageThreshold*100)
	}
	if err != nil {
		if snap.Error != "" {
			return fmt.Errorf("%s: %w", snap.Error, err)
		}
		return err
	}

	ctx.Printf("✓ Insight ready\n\n%s", insights.Format(snap.Insight))
	if !c.NoNotify {
		c.notify(ctx, rt)
	}
	return nil
}

func (c *GenerateCmd) notify(ctx *cli.Context, rt models.ReportType) {
	if ctx.Notifier == nil {
		return
	}
	if err := ctx.Notifier.Notify(ctx.Context(), fmt.Sprintf("Your %s insight is ready", rt)); err != nil {
		logger.Debug("Insight notification not sent", "error", err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
