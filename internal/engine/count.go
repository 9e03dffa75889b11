package engine

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

// projectGroup is the rows of one project in first-seen order
type projectGroup struct {
	id   string
	rows []domain.ClassificationRow
}

func groupByProject(rows []domain.ClassificationRow) []projectGroup {
	index := make(map[string]int)
	groups := make([]projectGroup, 0)
	for _, r := range rows {
		i, ok := index[r.ProjectID]
		if !ok {
			i = len(groups)
			index[r.ProjectID] = i
			groups = append(groups, projectGroup{id: r.ProjectID})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

// CountCodes returns the number of distinct code labels of each requested
// project. A project whose rows carry no code counts zero. The dataset's last
// result is left untouched.
func CountCodes(ds *dataset.Dataset, req domain.CountRequest) (*domain.CountResult, error) {
	if err := requireLoaded(ds); err != nil {
		return nil, err
	}
	ds.Record("count_codes")

	schema := ds.Schema()
	l, err := compileLookup(schema, req.ProjectIDs, req.Levels)
	if err != nil {
		return nil, err
	}

	res := &domain.CountResult{
		ID:          uuid.NewString(),
		Scheme:      schema.Scheme,
		Counts:      make([]domain.CodeCount, 0),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	for _, g := range groupByProject(l.rows(ds)) {
		seen := make(map[string]struct{})
		labels := make([]string, 0)
		for i := range g.rows {
			label := g.rows[i].CodeLabel()
			if label == "" {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
		res.Counts = append(res.Counts, domain.CodeCount{ProjectID: g.id, Count: len(labels), Labels: labels})
	}

	if len(res.Counts) == 0 {
		res.Notices = []domain.Notice{noCodesFound(schema)}
		return res, nil
	}
	res.Notices = []domain.Notice{domain.InfoNotice(fmt.Sprintf("%s codes counted for %d out of %d requested projects.",
		codeNoun(schema), len(res.Counts), len(l.ids)))}
	return res, nil
}

// CountFrequencies is the histogram of code cardinalities: how many projects
// carry each number of distinct codes, ordered by cardinality.
func CountFrequencies(res *domain.CountResult) []domain.Bar {
	if res == nil {
		return nil
	}
	hist := make(map[int]int)
	for _, c := range res.Counts {
		hist[c.Count]++
	}
	keys := make([]int, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	bars := make([]domain.Bar, 0, len(keys))
	for _, k := range keys {
		bars = append(bars, domain.Bar{Label: strconv.Itoa(k), Value: hist[k]})
	}
	return bars
}

// CountChart renders the cardinality histogram as a vertical bar chart
func CountChart(res *domain.CountResult, schema *domain.Schema) (*domain.Chart, error) {
	if res == nil || len(res.Counts) == 0 {
		return nil, domain.NewStateError(MsgNoPlot)
	}
	bars := CountFrequencies(res)
	return &domain.Chart{
		Title:         fmt.Sprintf("Projects by number of %s", lowerLabel(schema)),
		CategoryLabel: fmt.Sprintf("Number of %s", lowerLabel(schema)),
		ValueLabel:    "Number of projects",
		Orientation:   domain.OrientationVertical,
		Bars:          bars,
		Size:          domain.SizeForCategories(len(bars)),
	}, nil
}
