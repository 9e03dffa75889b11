package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

// candidate is one distinct code of a project, first occurrence in row order
type candidate struct {
	code string
	name string
	pct  *float64
}

func candidates(rows []domain.ClassificationRow) []candidate {
	seen := make(map[string]struct{})
	out := make([]candidate, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		if r.Code == "" {
			continue
		}
		if _, dup := seen[r.Code]; dup {
			continue
		}
		seen[r.Code] = struct{}{}
		out = append(out, candidate{code: r.Code, name: r.CodeName, pct: r.Percentage})
	}
	return out
}

func ambiguous(projectID string) domain.DominantCode {
	return domain.DominantCode{ProjectID: projectID, Code: domain.AmbiguousCode, Ambiguous: true}
}

func adopt(projectID string, c candidate) domain.DominantCode {
	return domain.DominantCode{ProjectID: projectID, Code: c.code, CodeName: c.name, Percentage: c.pct}
}

// strictMax picks the code with the strictly highest percentage. A tie for the
// maximum, or no usable percentage at all, is ambiguous.
func strictMax(projectID string, cs []candidate) domain.DominantCode {
	best := -1
	tied := false
	for i, c := range cs {
		if c.pct == nil {
			continue
		}
		switch {
		case best < 0 || *c.pct > *cs[best].pct:
			best, tied = i, false
		case *c.pct == *cs[best].pct:
			tied = true
		}
	}
	if best < 0 || tied {
		return ambiguous(projectID)
	}
	return adopt(projectID, cs[best])
}

// aboveThreshold adopts a lone code unconditionally. Among several codes the
// qualifier with the highest percentage wins; equal qualifiers resolve to the
// one seen first in row order.
func aboveThreshold(projectID string, cs []candidate, threshold int) domain.DominantCode {
	if len(cs) == 1 {
		return adopt(projectID, cs[0])
	}
	best := -1
	for i, c := range cs {
		if !atLeast(c.pct, threshold) {
			continue
		}
		if best < 0 || *c.pct > *cs[best].pct {
			best = i
		}
	}
	if best < 0 {
		return ambiguous(projectID)
	}
	return adopt(projectID, cs[best])
}

// DominantCodes resolves the dominant code of each requested project found in
// the data. The dataset's last result is left untouched.
func DominantCodes(ds *dataset.Dataset, req domain.DominantRequest) (*domain.DominantResult, error) {
	if err := requireLoaded(ds); err != nil {
		return nil, err
	}
	ds.Record("dominant_code")

	var notices []domain.Notice
	if req.Threshold != nil {
		t := *req.Threshold
		notices = append(notices, checkPercent("threshold", t)...)
		if t <= domain.DominantThresholdWarnAt {
			notices = append(notices, domain.WarningNotice(fmt.Sprintf(
				"WARNING! A 'threshold' of %d allows several codes of one project to qualify; the highest qualifying percentage wins and ties go to the first code in row order.", t)))
		}
	}

	schema := ds.Schema()
	l, err := compileLookup(schema, req.ProjectIDs, req.Levels)
	if err != nil {
		return nil, err
	}

	res := &domain.DominantResult{
		ID:          uuid.NewString(),
		Scheme:      schema.Scheme,
		Threshold:   req.Threshold,
		Projects:    make([]domain.DominantCode, 0),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
	ambiguousCount := 0
	for _, g := range groupByProject(l.rows(ds)) {
		cs := candidates(g.rows)
		var d domain.DominantCode
		if req.Threshold == nil {
			d = strictMax(g.id, cs)
		} else {
			d = aboveThreshold(g.id, cs, *req.Threshold)
		}
		if d.Ambiguous {
			ambiguousCount++
		}
		res.Projects = append(res.Projects, d)
	}

	if len(res.Projects) == 0 {
		res.Notices = append(notices, noCodesFound(schema))
		return res, nil
	}
	notices = append(notices, domain.InfoNotice(fmt.Sprintf("Dominant %s codes resolved for %d out of %d requested projects (%d ambiguous).",
		schema.Scheme, len(res.Projects)-ambiguousCount, len(l.ids), ambiguousCount)))
	res.Notices = notices
	return res, nil
}

// DominantFrequencies counts projects per dominant label, ascending by count
func DominantFrequencies(res *domain.DominantResult) []domain.Bar {
	if res == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, d := range res.Projects {
		counts[d.Label()]++
	}
	return ascendingBars(counts)
}

// DominantChart renders dominant-code frequencies as a horizontal bar chart
func DominantChart(res *domain.DominantResult, schema *domain.Schema) (*domain.Chart, error) {
	if res == nil || len(res.Projects) == 0 {
		return nil, domain.NewStateError(MsgNoPlot)
	}
	bars := DominantFrequencies(res)
	return &domain.Chart{
		Title:         fmt.Sprintf("Projects by dominant %s", string(schema.Scheme)),
		CategoryLabel: fmt.Sprintf("Dominant %s", string(schema.Scheme)),
		ValueLabel:    "Number of projects",
		Orientation:   domain.OrientationHorizontal,
		Bars:          bars,
		Size:          domain.SizeForCategories(len(bars)),
	}, nil
}
