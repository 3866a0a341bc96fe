package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/tracked/internal/constants"
	"github.com/julianstephens/tracked/internal/entrycodec"
	"github.com/julianstephens/tracked/internal/insights"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/stats"
	"github.com/julianstephens/tracked/internal/utils"
)

const maxHeaderWidth = 12

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.state == StateEditing && m.form != nil {
		content := m.form.View()
		if m.formError != "" {
			content = lipgloss.JoinVertical(lipgloss.Left, content, dangerStyle.Render(m.formError))
		}
		return docStyle.Render(content)
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewGrid(),
		m.viewSelection(),
		m.viewInsight(),
		m.viewStatus(),
		m.help.View(m.keys),
	)
	return docStyle.Render(ui)
}

func (m Model) viewHeader() string {
	name := m.view.MonthName
	if !m.loaded || m.view.Month != m.month || m.view.Year != m.year {
		name = fmt.Sprintf("%d-%02d", m.year, m.month)
	}
	header := titleStyle.Render(fmt.Sprintf("%s %d", name, m.year))
	if m.loading {
		header += mutedStyle.Render("  loading…")
	}
	return header
}

func (m Model) viewGrid() string {
	if !m.loaded {
		return mutedStyle.Render("Loading month…")
	}
	if len(m.view.Trackers) == 0 {
		return mutedStyle.Render("No active trackers. Add one with 'tracked tracker add'.")
	}

	headers := []string{"Day"}
	for _, t := range m.view.Trackers {
		headers = append(headers, shorten(t.Name, maxHeaderWidth))
	}

	weekStats := m.view.WeekStats
	if len(weekStats) != len(m.view.Weeks) {
		weekStats = stats.WeekStats(m.view)
	}

	var (
		rows      [][]string
		statRows  = map[int]bool{}
		todayRow  = -1
		cursorRow = -1
		dayIndex  = 0
	)
	for w, week := range m.view.Weeks {
		for _, day := range week {
			if dayIndex == m.row {
				cursorRow = len(rows)
			}
			if day.Date == m.view.Today {
				todayRow = len(rows)
			}
			row := []string{dayLabel(day)}
			for _, t := range m.view.Trackers {
				row = append(row, entrycodec.Cell(day.Entry(t.ID), t.Type))
			}
			rows = append(rows, row)
			dayIndex++
		}
		statRows[len(rows)] = true
		row := []string{fmt.Sprintf("wk %d", w+1)}
		for _, t := range m.view.Trackers {
			v, ok := weekStats[w][t.ID]
			if !ok {
				v = constants.Placeholder
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == cursorRow && col == m.col+1:
				return selectedStyle
			case statRows[row]:
				return statStyle
			case row == todayRow && col == 0:
				return todayStyle
			}
			return cellStyle
		}).
		String()
}

func (m Model) viewSelection() string {
	tracker, day, ok := m.selected()
	if !ok {
		return ""
	}
	value := entrycodec.Encode(day.Entry(tracker.ID), tracker.Type)
	if value == "" {
		value = mutedStyle.Render("empty")
	}
	return fmt.Sprintf("%s · %s · %s", tracker.Label(), day.Date, value)
}

func (m Model) viewInsight() string {
	var tabs []string
	for _, rt := range models.ReportTypes {
		label := strings.ToUpper(string(rt[:1])) + string(rt[1:])
		if rt == m.reportType {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	snap := m.insight
	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, tabs...)}

	cov := snap.Coverage
	covLine := fmt.Sprintf("Coverage %.0f%% (%d/%d)", cov.Ratio*100, cov.Filled, cov.Total)
	if !cov.HasEnoughData {
		covLine += warningStyle.Render(fmt.Sprintf("  need %.0f%% to generate", constants.CoverageThreshold*100))
	}
	lines = append(lines, mutedStyle.Render(covLine))

	switch {
	case m.generating || snap.State.InProgress():
		label := "Generating insight…"
		if snap.State == insights.StatePolling {
			label = "Waiting for analysis…"
		}
		lines = append(lines, m.spinner.View()+" "+label)
	case snap.State == insights.StateFailed && snap.Error != "":
		lines = append(lines, dangerStyle.Render(snap.Error))
	}

	if snap.Insight != nil {
		lines = append(lines, "", strings.TrimRight(insights.Format(snap.Insight), "\n"))
	} else if !m.generating && !snap.State.InProgress() {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("No %s insight yet.", m.reportType)))
	}

	style := panelStyle
	if m.width > 8 {
		style = style.Width(m.width - 8)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return mutedStyle.Render(m.status)
}

func dayLabel(day models.DayRecord) string {
	d, err := utils.ParseDate(day.Date)
	if err != nil {
		return fmt.Sprintf("%d", day.Day)
	}
	return fmt.Sprintf("%s %2d", d.Weekday().String()[:2], day.Day)
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
