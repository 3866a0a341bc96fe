package entries

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
	"github.com/julianstephens/tracked/internal/utils"
)

type MonthCmd struct {
	Year  int `help:"Year. Defaults to the current year."`
	Month int `help:"Month (1-12). Defaults to the current month."`
}

func (c *MonthCmd) Run(ctx *cli.Context) error {
	client, err := ctx.RequireClient()
	if err != nil {
		return err
	}
	year, month, err := ctx.ParseMonth(c.Year, c.Month)
	if err != nil {
		return err
	}

	view, err := client.FetchMonthData(ctx.Context(), year, month)
	if err != nil {
		return fmt.Errorf("failed to fetch month: %w", err)
	}

	ctx.Printf("%s %d\n", view.MonthName, view.Year)
	if len(view.Trackers) == 0 {
		ctx.Println("No active trackers.")
		return nil
	}
	ctx.Println(RenderMonth(view))

	coverage := stats.ComputeCoverage(models.ReportMonthly, view, view.Trackers, ctx.CurrentTime())
	ctx.Printf("Filled %d of %d cells (%.0f%%)\n", coverage.Filled, coverage.Total, coverage.Ratio*100)
	return nil
}

// RenderMonth draws the month as a table: one row per day, a stats row after
// every week and a month total at the bottom.
func RenderMonth(view models.MonthView) string {
	headers := []string{"Day"}
	for _, t := range view.Trackers {
		headers = append(headers, t.Name)
	}

	weekStats := view.WeekStats
	if len(weekStats) != len(view.Weeks) {
		weekStats = stats.WeekStats(view)
	}
	monthStats := view.MonthStats
	if monthStats == nil {
		monthStats = stats.MonthStats(view)
	}

	var rows [][]string
	var statRows []int
	for w, week := range view.Weeks {
		for _, day := range week {
			label := dayLabel(day)
			if day.Date == view.Today {
				label += " *"
			}
			row := []string{label}
			for _, t := range view.Trackers {
				row = append(row, entrycodec.Cell(day.Entry(t.ID), t.Type))
			}
			rows = append(rows, row)
		}
		rows = append(rows, statRow(fmt.Sprintf("Week %d", w+1), view.Trackers, weekStats[w]))
		statRows = append(statRows, len(rows)-1)
	}
	rows = append(rows, statRow("Month", view.Trackers, monthStats))
	statRows = append(statRows, len(rows)-1)

	isStat := make(map[int]bool, len(statRows))
	for _, r := range statRows {
		isStat[r] = true
	}
	bold := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || isStat[row] {
				return bold
			}
			return cell
		}).
		String()
}

func statRow(label string, trackers []models.Tracker, values map[string]string) []string {
	row := []string{label}
	for _, t := range trackers {
		v, ok := values[t.ID]
		if !ok {
			v = constants.Placeholder
		}
		row = append(row, v)
	}
	return row
}

func dayLabel(day models.DayRecord) string {
	d, err := utils.ParseDate(day.Date)
	if err != nil {
		return strconv.Itoa(day.Day)
	}
	return fmt.Sprintf("%s %2d", d.Weekday().String()[:3], day.Day)
}
