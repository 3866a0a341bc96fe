package insights

import (
	"fmt"
	"strings"

	"github.com/julianstephens/tracked/internal/models"
)

var trendArrows = map[string]string{
	"up":     "↑",
	"down":   "↓",
	"stable": "→",
}

// TrendArrow returns the arrow for a trend direction, or "•" when unknown.
func TrendArrow(direction string) string {
	if a, ok := trendArrows[strings.ToLower(direction)]; ok {
		return a
	}
	return "•"
}

// Format renders an insight as plain text with one section per content
// field. Empty sections are omitted.
func Format(in *models.Insight) string {
	if in == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s insight for %s to %s\n", titleCase(string(in.ReportType)), in.PeriodStart, in.PeriodEnd)
	if s := strings.TrimSpace(in.Content.Summary); s != "" {
		fmt.Fprintf(&b, "\n%s\n", s)
	}

	if len(in.Content.Trends) > 0 {
		b.WriteString("\nTrends:\n")
		for _, t := range in.Content.Trends {
			line := fmt.Sprintf("  %s %s", TrendArrow(t.Direction), t.Metric)
			if t.Change != "" {
				line += " (" + t.Change + ")"
			}
			if t.Note != "" {
				line += ": " + t.Note
			}
			b.WriteString(line + "\n")
		}
	}

	if len(in.Content.Correlations) > 0 {
		b.WriteString("\nCorrelations:\n")
		for _, c := range in.Content.Correlations {
			fmt.Fprintf(&b, "  %s [%s]: %s\n", c.Pair, c.Strength, c.Description)
		}
	}

	if len(in.Content.Advice) > 0 {
		b.WriteString("\nAdvice:\n")
		for _, a := range in.Content.Advice {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
