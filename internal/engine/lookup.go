package engine

import (
	"fmt"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

// noCodesFound is the notice of an empty code lookup, e.g. "No sector codes found."
func noCodesFound(schema *domain.Schema) domain.Notice {
	return domain.InfoNotice(fmt.Sprintf("No %s codes found.", schema.Scheme))
}

// lookup is a validated project id list with its level filter
type lookup struct {
	ids    []string
	idSet  map[string]struct{}
	levels levelFilter
}

func compileLookup(schema *domain.Schema, ids []string, levels []int) (*lookup, error) {
	norm, err := normalizeProjectIDs(ids)
	if err != nil {
		return nil, err
	}
	lf, err := resolveLevels(schema, levels)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(norm))
	for _, id := range norm {
		set[id] = struct{}{}
	}
	return &lookup{ids: norm, idSet: set, levels: lf}, nil
}

// rows returns the matching rows in original data order
func (l *lookup) rows(ds *dataset.Dataset) []domain.ClassificationRow {
	all := ds.Rows()
	out := make([]domain.ClassificationRow, 0)
	for i := range all {
		r := &all[i]
		if _, ok := l.idSet[r.ProjectID]; !ok {
			continue
		}
		if !l.levels.allows(r.ThemeLevel) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// LookupCodes returns every code row of the requested projects. Theme rows are
// restricted to the requested hierarchy levels, all three by default.
func LookupCodes(ds *dataset.Dataset, q domain.LookupQuery) (*domain.QueryResult, error) {
	if err := requireLoaded(ds); err != nil {
		return nil, err
	}
	ds.Record("get_codes")

	schema := ds.Schema()
	l, err := compileLookup(schema, q.ProjectIDs, q.Levels)
	if err != nil {
		return nil, err
	}

	cols := schema.Columns(schema.LookupFields)
	if q.ShowMetadata {
		cols = ds.Columns()
	}

	res := newResult(schema, domain.OperationCodes, cols, l.rows(ds))
	res.Requested = len(l.ids)
	if res.Empty() {
		res.Notices = []domain.Notice{noCodesFound(schema)}
		return res, nil
	}
	res.Notices = []domain.Notice{domain.InfoNotice(fmt.Sprintf("%s codes found for %d out of %d requested projects.",
		codeNoun(schema), res.Projects, res.Requested))}
	ds.SetLast(res)
	return res, nil
}

// Copy returns the whole loaded table with every column
func Copy(ds *dataset.Dataset) (*domain.QueryResult, error) {
	if err := requireLoaded(ds); err != nil {
		return nil, err
	}
	ds.Record("copy_data")
	res := newResult(ds.Schema(), domain.OperationCopy, ds.Columns(), append([]domain.ClassificationRow(nil), ds.Rows()...))
	res.Notices = []domain.Notice{domain.InfoNotice(fmt.Sprintf("Copied %d rows covering %d projects.", len(res.Rows), res.Projects))}
	return res, nil
}
