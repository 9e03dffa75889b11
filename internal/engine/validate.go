// Package engine implements the project filter and the aggregations over a
// loaded classification dataset. Every function is written once against
// domain.Schema and serves both sector and theme data.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

func titleCase(v string) string { return cases.Title(language.Und).String(v) }

func normalizeProductType(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }

func normalizeStatus(v string) string { return titleCase(strings.TrimSpace(v)) }

func requireLoaded(ds *dataset.Dataset) error {
	if ds == nil || !ds.Loaded() {
		return domain.NewStateError(dataset.MsgNotLoaded)
	}
	return nil
}

// codeSet is the normalized set of queried codes, in input order
type codeSet struct {
	order []string
	set   map[string]struct{}
}

func (c codeSet) has(code string) bool {
	_, ok := c.set[code]
	return ok
}

func normalizeCodes(schema *domain.Schema, codes []string) (codeSet, []domain.Notice, error) {
	if len(codes) == 0 {
		return codeSet{}, nil, domain.NewValidationError("'codes' must be a non-empty list")
	}
	cs := codeSet{set: make(map[string]struct{}, len(codes))}
	major := false
	for _, raw := range codes {
		code, err := schema.NormalizeCode(raw)
		if err != nil {
			return codeSet{}, nil, err
		}
		if schema.IsMajorCode(code) {
			major = true
		}
		if _, dup := cs.set[code]; dup {
			continue
		}
		cs.set[code] = struct{}{}
		cs.order = append(cs.order, code)
	}
	var notices []domain.Notice
	if major {
		notices = append(notices, domain.WarningNotice("WARNING! One or more values in 'codes' is not a sub-sector level code."))
	}
	return cs, notices, nil
}

func checkPercent(name string, v int) []domain.Notice {
	if v < 0 || v > 100 {
		return []domain.Notice{domain.WarningNotice(fmt.Sprintf("WARNING! '%s' is outside expected range of 0 to 100.", name))}
	}
	return nil
}

// fyRange is an inclusive approval-year window. Missing years always pass.
type fyRange struct {
	lo, hi *int
}

func (r fyRange) contains(fy *int) bool {
	if fy == nil {
		return true
	}
	if r.lo != nil && *fy < *r.lo {
		return false
	}
	if r.hi != nil && *fy > *r.hi {
		return false
	}
	return true
}

func resolveFYRange(start, stop *int, st dataset.Stats) (fyRange, error) {
	r := fyRange{lo: st.MinFY, hi: st.MaxFY}
	if start != nil {
		v := *start
		r.lo = &v
	}
	if stop != nil {
		v := *stop
		r.hi = &v
	}
	if r.lo != nil && r.hi != nil && *r.hi < *r.lo {
		return fyRange{}, domain.NewRangeError(fmt.Sprintf("'start_fy' (%d) and 'stop_fy' (%d) are not in chronological order", *r.lo, *r.hi))
	}
	return r, nil
}

// optionFilter is a membership test over raw row values. A nil filter is unset
// and passes every value, missing ones included.
type optionFilter map[string]struct{}

func (f optionFilter) allows(v string) bool {
	if f == nil {
		return true
	}
	if v == "" {
		return false
	}
	_, ok := f[v]
	return ok
}

func resolveOptions(name string, given, observed []string, normalize func(string) string, acceptable string) (optionFilter, error) {
	if given == nil {
		return nil, nil
	}
	wanted := make(map[string]struct{}, len(given))
	for _, g := range given {
		n := normalize(g)
		if n == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("all values in '%s' must be non-empty strings", name))
		}
		wanted[n] = struct{}{}
	}
	allowed := make(optionFilter)
	for _, raw := range observed {
		if _, ok := wanted[normalize(raw)]; ok {
			allowed[raw] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return nil, domain.NewValidationError(fmt.Sprintf("unrecognized %s input. Acceptable values are: %s", name, acceptable))
	}
	return allowed, nil
}

func normalizeProjectIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("'project_ids' must be a non-empty list")
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.ToUpper(strings.TrimSpace(raw))
		if id == "" {
			return nil, domain.NewValidationError("every item in 'project_ids' must be a non-empty string")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// levelFilter restricts theme rows to hierarchy levels. A nil filter passes
// every row; schemas with levels always get a non-nil filter.
type levelFilter map[int]struct{}

func (f levelFilter) allows(level *int) bool {
	if f == nil {
		return true
	}
	if level == nil {
		return false
	}
	_, ok := f[*level]
	return ok
}

func resolveLevels(schema *domain.Schema, levels []int) (levelFilter, error) {
	if !schema.HasLevels {
		if len(levels) > 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("level filtering is not available for %s codes", schema.Scheme))
		}
		return nil, nil
	}
	if len(levels) == 0 {
		levels = domain.ThemeLevels
	}
	f := make(levelFilter)
	for _, l := range levels {
		for _, known := range domain.ThemeLevels {
			if l == known {
				f[l] = struct{}{}
			}
		}
	}
	if len(f) == 0 {
		return nil, domain.NewValidationError("unrecognized level input. Acceptable values are: 1, 2, and 3")
	}
	return f, nil
}

func atLeast(p *float64, min int) bool {
	return p != nil && *p >= float64(min)
}

func countProjects(rows []domain.ClassificationRow) int {
	seen := make(map[string]struct{})
	for i := range rows {
		seen[rows[i].ProjectID] = struct{}{}
	}
	return len(seen)
}

func newResult(schema *domain.Schema, op domain.Operation, cols []domain.Column, rows []domain.ClassificationRow) *domain.QueryResult {
	if rows == nil {
		rows = []domain.ClassificationRow{}
	}
	return &domain.QueryResult{
		ID:          uuid.NewString(),
		Scheme:      schema.Scheme,
		Operation:   op,
		Columns:     cols,
		Rows:        rows,
		Projects:    countProjects(rows),
		GeneratedAt: time.Now().Format(time.RFC3339),
	}
}

func codeNoun(schema *domain.Schema) string {
	return titleCase(string(schema.Scheme))
}
