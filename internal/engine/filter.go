package engine

import (
	"fmt"
	"strings"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

// Notice texts of the project filter
const (
	MsgNoProjects = "No projects meet the specified criteria."
)

// projectFilter is a fully validated ProjectQuery
type projectFilter struct {
	codes    codeSet
	minPct   int
	fy       fyRange
	products optionFilter
	statuses optionFilter
	excludeA bool

	// auxDefault is true when no auxiliary filter was given; eligibility
	// alone then decides which rows are returned.
	auxDefault bool
}

func (f *projectFilter) passesAux(r *domain.ClassificationRow) bool {
	if f.auxDefault {
		return true
	}
	if !f.fy.contains(r.ApprovalFY) {
		return false
	}
	if !f.products.allows(r.ProductType) || !f.statuses.allows(r.Status) {
		return false
	}
	if f.excludeA && r.AdditionalFinancing == domain.AdditionalFinancingYes {
		return false
	}
	return true
}

// matchesQueried reports whether a row's own code was queried and clears the threshold
func (f *projectFilter) matchesQueried(r *domain.ClassificationRow) bool {
	return f.codes.has(r.Code) && atLeast(r.Percentage, f.minPct)
}

func compileProjectQuery(ds *dataset.Dataset, q domain.ProjectQuery) (*projectFilter, []domain.Notice, error) {
	schema := ds.Schema()
	stats := ds.Stats()

	codes, notices, err := normalizeCodes(schema, q.Codes)
	if err != nil {
		return nil, nil, err
	}
	notices = append(notices, checkPercent("min_pct", q.MinPct)...)

	fy, err := resolveFYRange(q.StartFY, q.StopFY, stats)
	if err != nil {
		return nil, nil, err
	}

	products, err := resolveOptions("product_type", q.ProductTypes, stats.ProductTypes, normalizeProductType,
		"'L' for lending products, 'A' for AAA products, and 'S' for standard products")
	if err != nil {
		return nil, nil, err
	}

	statuses, err := resolveOptions("project_status", q.Statuses, stats.Statuses, normalizeStatus,
		`"`+strings.Join(domain.KnownStatuses, `", "`)+`"`)
	if err != nil {
		return nil, nil, err
	}

	return &projectFilter{
		codes:    codes,
		minPct:   q.MinPct,
		fy:       fy,
		products: products,
		statuses: statuses,
		excludeA: !q.IncludeAdditionalFinancing,
		auxDefault: q.StartFY == nil && q.StopFY == nil &&
			q.ProductTypes == nil && q.Statuses == nil &&
			q.IncludeAdditionalFinancing,
	}, notices, nil
}

// eligibleProjects returns the projects with at least one queried code whose
// own percentage reaches minPct. Percentages of different codes are not summed.
func eligibleProjects(rows []domain.ClassificationRow, f *projectFilter) map[string]struct{} {
	eligible := make(map[string]struct{})
	for i := range rows {
		if f.matchesQueried(&rows[i]) {
			eligible[rows[i].ProjectID] = struct{}{}
		}
	}
	return eligible
}

// FilterProjects returns the rows of projects mapped to the queried codes that
// satisfy every auxiliary criterion. An empty result is not an error; it comes
// back with a notice and does not replace the dataset's last result.
func FilterProjects(ds *dataset.Dataset, q domain.ProjectQuery) (*domain.QueryResult, error) {
	if err := requireLoaded(ds); err != nil {
		return nil, err
	}
	ds.Record("get_projects")

	f, notices, err := compileProjectQuery(ds, q)
	if err != nil {
		return nil, err
	}

	rows := ds.Rows()
	eligible := eligibleProjects(rows, f)

	out := make([]domain.ClassificationRow, 0)
	for i := range rows {
		r := &rows[i]
		if _, ok := eligible[r.ProjectID]; !ok {
			continue
		}
		if !f.passesAux(r) {
			continue
		}
		if !q.ShowAllCodes && !f.matchesQueried(r) {
			continue
		}
		out = append(out, *r)
	}

	schema := ds.Schema()
	cols := schema.Columns(schema.ProjectFields)
	if q.ShowMetadata {
		cols = ds.Columns()
	}

	res := newResult(schema, domain.OperationProjects, cols, out)
	if res.Empty() {
		res.Notices = append(notices, domain.InfoNotice(MsgNoProjects))
		return res, nil
	}
	res.Notices = append(notices, domain.InfoNotice(fmt.Sprintf("%d unique projects found.", res.Projects)))
	ds.SetLast(res)
	return res, nil
}
