package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ieg-tools/projcodes/domain"
)

// Failure messages of acting on a missing result
const (
	MsgNoOutput = domain.MsgNoOutput
	MsgNoPlot   = domain.MsgNoPlot
)

// missingLabels names the data a grouping reports as missing
var missingLabels = map[domain.GroupKey]string{
	domain.GroupGP: "GP",
	domain.GroupFY: "Approval FY",
}

func lowerLabel(schema *domain.Schema) string {
	if schema == nil {
		return "codes"
	}
	return strings.ToLower(schema.Label)
}

// ascendingBars sorts categories by count, then by label
func ascendingBars(counts map[string]int) []domain.Bar {
	bars := make([]domain.Bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, domain.Bar{Label: label, Value: n})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Value != bars[j].Value {
			return bars[i].Value < bars[j].Value
		}
		return bars[i].Label < bars[j].Label
	})
	return bars
}

// chronologicalBars sorts year categories numerically
func chronologicalBars(counts map[string]int) []domain.Bar {
	bars := make([]domain.Bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, domain.Bar{Label: label, Value: n})
	}
	sort.Slice(bars, func(i, j int) bool {
		a, errA := strconv.Atoi(bars[i].Label)
		b, errB := strconv.Atoi(bars[j].Label)
		if errA == nil && errB == nil {
			return a < b
		}
		return bars[i].Label < bars[j].Label
	})
	return bars
}

// GroupChart counts the distinct projects of a result per category of a
// grouping column. Projects with no row carrying the grouping value are
// reported in a warning notice and fall out of the chart.
func GroupChart(res *domain.QueryResult, schema *domain.Schema, key domain.GroupKey) (*domain.Chart, error) {
	if res.Empty() {
		return nil, domain.NewStateError(MsgNoPlot)
	}
	key, err := domain.ParseGroupKey(string(key), schema.Scheme)
	if err != nil {
		return nil, err
	}
	col, ok := res.ColumnFor(key.Field())
	if !ok {
		return nil, domain.NewMissingColumnError(schema.Header(key.Field()))
	}

	members := make(map[string]map[string]struct{})
	covered := make(map[string]bool)
	for i := range res.Rows {
		r := &res.Rows[i]
		v, present := r.Value(col)
		covered[r.ProjectID] = covered[r.ProjectID] || present
		if !present {
			continue
		}
		if members[v] == nil {
			members[v] = make(map[string]struct{})
		}
		members[v][r.ProjectID] = struct{}{}
	}
	missing := 0
	for _, ok := range covered {
		if !ok {
			missing++
		}
	}

	counts := make(map[string]int, len(members))
	for v, ps := range members {
		counts[v] = len(ps)
	}

	chart := &domain.Chart{
		Title:         "Project count, by " + key.Title(schema),
		CategoryLabel: col.Name,
		ValueLabel:    "Number of projects",
	}
	if key == domain.GroupFY {
		chart.Orientation = domain.OrientationVertical
		chart.Bars = chronologicalBars(counts)
	} else {
		chart.Orientation = domain.OrientationHorizontal
		chart.Bars = ascendingBars(counts)
	}
	chart.Size = domain.SizeForCategories(len(chart.Bars))

	if missing > 0 {
		what, ok := missingLabels[key]
		if !ok {
			what = key.Title(schema)
		}
		chart.Notices = append(chart.Notices, domain.WarningNotice(
			fmt.Sprintf("WARNING! %d project(s) with missing %s data got excluded from the plot.", missing, what)))
	}
	return chart, nil
}
