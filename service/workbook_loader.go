package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

// LoadPhases is the number of progress steps of one workbook load
const LoadPhases = 3

// WorkbookLoader reads the project export workbook and joins one code sheet
// with the project metadata sheet
type WorkbookLoader struct {
	source   config.SourceConfig
	progress domain.ProgressManager
}

// NewWorkbookLoader creates a loader for a source configuration
func NewWorkbookLoader(source config.SourceConfig) *WorkbookLoader {
	return &WorkbookLoader{source: source, progress: noopProgress{}}
}

// WithProgress reports load phases to pm
func (l *WorkbookLoader) WithProgress(pm domain.ProgressManager) *WorkbookLoader {
	if pm != nil {
		l.progress = pm
	}
	return l
}

// Locate returns the workbook to load: the configured path, or the first
// file of the source directory matching the pattern in name order
func (l *WorkbookLoader) Locate() (string, error) {
	if l.source.Path != "" {
		if _, err := os.Stat(l.source.Path); err != nil {
			return "", domain.NewFileNotFoundError(l.source.Path, err)
		}
		return l.source.Path, nil
	}

	matches, err := doublestar.Glob(os.DirFS(l.source.Directory), l.source.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", domain.NewFileNotFoundError(l.source.Directory, err)
	}
	if len(matches) == 0 {
		return "", domain.NewFileNotFoundError(filepath.Join(l.source.Directory, l.source.Pattern), os.ErrNotExist)
	}
	sort.Strings(matches)
	return filepath.Join(l.source.Directory, filepath.FromSlash(matches[0])), nil
}

// DownloadDate extracts the export date from a file name of the form
// <name>.<tag>.<date>.xlsx; it returns "" for other names
func DownloadDate(path string) string {
	parts := strings.Split(filepath.Base(path), ".")
	if len(parts) < 4 {
		return ""
	}
	return parts[2]
}

// Load implements domain.DatasetLoader
func (l *WorkbookLoader) Load(ctx context.Context, schema *domain.Schema) (*domain.LoadedTable, error) {
	path, err := l.Locate()
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.NewLoadError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()
	l.progress.Advance(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta, err := readSheet(f, l.source.MetadataSheet)
	if err != nil {
		return nil, err
	}
	metadata, err := indexMetadata(meta, schema, l.source.DropColumns)
	if err != nil {
		return nil, err
	}
	l.progress.Advance(1)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheetName := l.source.SheetFor(schema.Scheme)
	if sheetName == "" {
		sheetName = schema.Sheet
	}
	codes, err := readSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	rows, err := mergeCodes(codes, metadata, schema)
	if err != nil {
		return nil, err
	}
	l.progress.Advance(1)

	columns := append(schema.Columns(schema.CodeFields), metadata.columns...)
	return &domain.LoadedTable{
		Columns:      columns,
		Rows:         rows,
		Source:       l.source.Label,
		DownloadDate: DownloadDate(path),
	}, nil
}

// sheet is a header row plus string records
type sheet struct {
	name    string
	headers []string
	index   map[string]int
	records [][]string
}

func (s *sheet) cell(record []string, header string) string {
	i, ok := s.index[header]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (s *sheet) require(headers ...string) error {
	for _, h := range headers {
		if _, ok := s.index[h]; !ok {
			return domain.NewLoadError(fmt.Sprintf("sheet %q", s.name), domain.NewMissingColumnError(h))
		}
	}
	return nil
}

func readSheet(f *excelize.File, name string) (*sheet, error) {
	r, err := f.Rows(name)
	if err != nil {
		return nil, domain.NewLoadError(fmt.Sprintf("failed to read sheet %q", name), err)
	}
	defer r.Close()

	s := &sheet{name: name, index: make(map[string]int)}
	for r.Next() {
		vals, err := r.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, domain.NewLoadError(fmt.Sprintf("failed to read sheet %q", name), err)
		}
		if s.headers == nil {
			s.headers = make([]string, len(vals))
			for i, h := range vals {
				h = strings.TrimSpace(h)
				s.headers[i] = h
				if h != "" {
					s.index[h] = i
				}
			}
			continue
		}
		s.records = append(s.records, vals)
	}
	if s.headers == nil {
		return nil, domain.NewLoadError(fmt.Sprintf("sheet %q is empty", name), nil)
	}
	return s, nil
}

// metadataIndex holds one metadata record per project
type metadataIndex struct {
	sheet   *sheet
	columns []domain.Column
	byID    map[string][]string
	order   []string
}

func indexMetadata(s *sheet, schema *domain.Schema, drop []string) (*metadataIndex, error) {
	if err := s.require(domain.HeaderProjectID); err != nil {
		return nil, err
	}

	dropped := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		dropped[d] = struct{}{}
	}
	known := make(map[string]domain.Field, len(domain.MetadataFields))
	for _, f := range domain.MetadataFields {
		known[schema.Header(f)] = f
	}

	idx := &metadataIndex{sheet: s, byID: make(map[string][]string, len(s.records))}
	for _, h := range s.headers {
		if h == "" || h == domain.HeaderProjectID {
			continue
		}
		if _, ok := dropped[h]; ok {
			continue
		}
		field, ok := known[h]
		if !ok {
			field = domain.FieldExtra
		}
		idx.columns = append(idx.columns, domain.Column{Name: h, Field: field})
	}

	for n, rec := range s.records {
		id := strings.ToUpper(s.cell(rec, domain.HeaderProjectID))
		if id == "" {
			continue
		}
		if _, dup := idx.byID[id]; dup {
			return nil, domain.NewValidationError(fmt.Sprintf(
				"metadata sheet %q lists project %s more than once (row %d); each project must have exactly one metadata record", s.name, id, n+2))
		}
		idx.byID[id] = rec
		idx.order = append(idx.order, id)
	}
	return idx, nil
}

// apply copies a project's metadata onto a row
func (m *metadataIndex) apply(row *domain.ClassificationRow, rec []string) error {
	for _, col := range m.columns {
		v := m.sheet.cell(rec, col.Name)
		if v == "" {
			continue
		}
		switch col.Field {
		case domain.FieldApprovalFY:
			fy, err := parseInt(v)
			if err != nil {
				return cellError(m.sheet.name, col.Name, row.ProjectID, err)
			}
			row.ApprovalFY = fy
		case domain.FieldStatus:
			row.Status = v
		case domain.FieldProductType:
			row.ProductType = v
		case domain.FieldAdditionalFinancing:
			row.AdditionalFinancing = v
		case domain.FieldLeadPractice:
			row.LeadPractice = v
		case domain.FieldRegion:
			row.Region = v
		case domain.FieldInstrument:
			row.Instrument = v
		default:
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[col.Name] = v
		}
	}
	return nil
}

// mergeCodes performs the outer many-to-one join of code rows onto metadata.
// Projects present on only one side keep the other side empty. Rows are
// ordered by project id, keeping sheet order within a project.
func mergeCodes(s *sheet, meta *metadataIndex, schema *domain.Schema) ([]domain.ClassificationRow, error) {
	headers := make([]string, 0, len(schema.CodeFields))
	for _, f := range schema.CodeFields {
		headers = append(headers, schema.Header(f))
	}
	if err := s.require(headers...); err != nil {
		return nil, err
	}

	rows := make([]domain.ClassificationRow, 0, len(s.records)+len(meta.order))
	mapped := make(map[string]struct{})
	for _, rec := range s.records {
		id := strings.ToUpper(s.cell(rec, domain.HeaderProjectID))
		if id == "" {
			continue
		}
		row := domain.ClassificationRow{ProjectID: id}
		if err := assignCodeFields(&row, s, rec, schema); err != nil {
			return nil, err
		}
		if m, ok := meta.byID[id]; ok {
			if err := meta.apply(&row, m); err != nil {
				return nil, err
			}
		}
		mapped[id] = struct{}{}
		rows = append(rows, row)
	}

	for _, id := range meta.order {
		if _, ok := mapped[id]; ok {
			continue
		}
		row := domain.ClassificationRow{ProjectID: id}
		if err := meta.apply(&row, meta.byID[id]); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ProjectID < rows[j].ProjectID })
	return rows, nil
}

func assignCodeFields(row *domain.ClassificationRow, s *sheet, rec []string, schema *domain.Schema) error {
	for _, f := range schema.CodeFields {
		header := schema.Header(f)
		v := s.cell(rec, header)
		if v == "" {
			continue
		}
		switch f {
		case domain.FieldMajorCode:
			row.MajorCode = v
		case domain.FieldMajorCodeName:
			row.MajorCodeName = v
		case domain.FieldCode:
			if schema.CodeKind == domain.CodeKindInteger {
				n, err := parseInt(v)
				if err != nil {
					return cellError(s.name, header, row.ProjectID, err)
				}
				v = strconv.Itoa(*n)
			}
			row.Code = v
		case domain.FieldCodeName:
			row.CodeName = v
		case domain.FieldThemeLevel:
			n, err := parseInt(v)
			if err != nil {
				return cellError(s.name, header, row.ProjectID, err)
			}
			row.ThemeLevel = n
		case domain.FieldPercentage:
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cellError(s.name, header, row.ProjectID, err)
			}
			pct := toPercent(p)
			row.Percentage = &pct
		}
	}
	return nil
}

// toPercent scales a stored fraction to a percentage, dropping binary
// rounding noise below 1e-9
func toPercent(fraction float64) float64 {
	return math.Round(fraction*100*1e9) / 1e9
}

// parseInt accepts integral values stored as integers or floats
func parseInt(v string) (*int, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%q is not an integer", v)
	}
	n := int(f)
	return &n, nil
}

func cellError(sheetName, column, projectID string, cause error) error {
	return domain.NewLoadError(fmt.Sprintf("sheet %q, column %q, project %s: unreadable value", sheetName, column, projectID), cause)
}
