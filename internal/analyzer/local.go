package analyzer

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/tracked/internal/models"
)

const (
	maxTrends       = 4
	maxCorrelations = 3
	maxAdvice       = 4
	// stableBand is the relative change below which a metric is "stable".
	stableBand = 0.05
)

// Local summarizes data without a model. It compares the first and second
// half of the period for trends and uses Pearson correlation between
// numeric series.
type Local struct{}

func NewLocal() *Local { return &Local{} }

func (*Local) Name() string { return "local" }

type series struct {
	name   string
	dates  []string
	values map[string]float64
}

func (s *series) mean(dates []string) (float64, int) {
	sum, n := 0.0, 0
	for _, d := range dates {
		if v, ok := s.values[d]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func (l *Local) Analyze(ctx context.Context, req Request) (models.InsightContent, error) {
	if len(req.Data) == 0 {
		return models.InsightContent{}, ErrNoData
	}
	if err := ctx.Err(); err != nil {
		return models.InsightContent{}, err
	}

	dates := make([]string, 0, len(req.Data))
	for d := range req.Data {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	all := collectSeries(req.Data)
	content := fallback(summarize(req, dates, all))

	half := len(dates) / 2
	for _, s := range all {
		if len(content.Trends) == maxTrends {
			break
		}
		if half == 0 {
			break
		}
		before, nb := s.mean(dates[:half])
		after, na := s.mean(dates[half:])
		if nb == 0 || na == 0 {
			continue
		}
		content.Trends = append(content.Trends, trend(s.name, before, after))
	}

	content.Correlations = correlations(all)

	for _, s := range all {
		if len(content.Advice) == maxAdvice {
			break
		}
		if coverage := float64(len(s.values)) / float64(len(dates)); coverage < 0.5 {
			content.Advice = append(content.Advice,
				fmt.Sprintf("%s was logged on %d of %d days. Logging it daily will sharpen these insights.", s.name, len(s.values), len(dates)))
		}
	}
	for _, t := range content.Trends {
		if len(content.Advice) == maxAdvice {
			break
		}
		if t.Direction == "down" {
			content.Advice = append(content.Advice, fmt.Sprintf("%s dipped (%s). Look at what changed in the second half of the period.", t.Metric, t.Change))
		}
	}
	if len(content.Advice) == 0 {
		content.Advice = append(content.Advice, "Keep logging consistently to build a clearer picture over time.")
	}
	return content, nil
}

func summarize(req Request, dates []string, all []*series) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Between %s and %s you logged data on %d day(s) across %d numeric metric(s).",
		req.PeriodStart, req.PeriodEnd, len(dates), len(all))
	if len(all) > 0 {
		best := all[0]
		for _, s := range all[1:] {
			if len(s.values) > len(best.values) {
				best = s
			}
		}
		fmt.Fprintf(&b, " %s was your most consistently tracked metric.", best.name)
	}
	return b.String()
}

// collectSeries converts each tracker's values to numbers. Text is skipped;
// times become minutes after midnight.
func collectSeries(data TrackingData) []*series {
	byName := map[string]*series{}
	for date, day := range data {
		for name, raw := range day {
			v, ok := numeric(raw)
			if !ok {
				continue
			}
			s := byName[name]
			if s == nil {
				s = &series{name: name, values: map[string]float64{}}
				byName[name] = s
			}
			s.values[date] = v
		}
	}
	out := make([]*series, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func numeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case int:
		return float64(v), true
	case float64:
		return v, true
	case string:
		h, m, ok := strings.Cut(v, ":")
		if !ok {
			return 0, false
		}
		hh, err1 := strconv.Atoi(h)
		mm, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return float64(hh*60 + mm), true
	}
	return 0, false
}

func trend(name string, before, after float64) models.Trend {
	t := models.Trend{Metric: name, Direction: "stable"}
	var rel float64
	switch {
	case before != 0:
		rel = (after - before) / math.Abs(before)
		t.Change = fmt.Sprintf("%+.0f%%", rel*100)
	default:
		rel = after
		t.Change = fmt.Sprintf("%+.1f", after-before)
	}
	switch {
	case rel > stableBand:
		t.Direction = "up"
	case rel < -stableBand:
		t.Direction = "down"
	}
	t.Note = fmt.Sprintf("Average moved from %.1f to %.1f", before, after)
	return t
}

func correlations(all []*series) []models.Correlation {
	type scored struct {
		c models.Correlation
		r float64
	}
	var found []scored
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			r, n := pearson(all[i], all[j])
			if n < 3 || math.IsNaN(r) {
				continue
			}
			strength := "weak"
			switch a := math.Abs(r); {
			case a >= 0.7:
				strength = "strong"
			case a >= 0.4:
				strength = "moderate"
			}
			relation := "rises with"
			if r < 0 {
				relation = "falls as"
			}
			found = append(found, scored{
				c: models.Correlation{
					Pair:        all[i].name + " → " + all[j].name,
					Strength:    strength,
					Description: fmt.Sprintf("%s %s %s (r = %.2f over %d days)", all[j].name, relation, all[i].name, r, n),
				},
				r: math.Abs(r),
			})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].r > found[j].r })

	out := []models.Correlation{}
	for _, f := range found {
		if len(out) == maxCorrelations {
			break
		}
		out = append(out, f.c)
	}
	return out
}

// pearson returns the correlation coefficient over the dates both series
// share, and how many dates that was.
func pearson(a, b *series) (float64, int) {
	var xs, ys []float64
	for d, x := range a.values {
		if y, ok := b.values[d]; ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	n := len(xs)
	if n == 0 {
		return math.NaN(), 0
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN(), n
	}
	return cov / math.Sqrt(vx*vy), n
}
