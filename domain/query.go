package domain

import (
	"context"
	"strconv"
	"strings"
)

// NoticeLevel is the severity of a user-facing notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a non-fatal status or warning message produced by an operation
type Notice struct {
	Level   NoticeLevel `json:"level" yaml:"level"`
	Message string      `json:"message" yaml:"message"`
}

// InfoNotice creates an informational notice
func InfoNotice(message string) Notice {
	return Notice{Level: NoticeInfo, Message: message}
}

// WarningNotice creates a warning notice
func WarningNotice(message string) Notice {
	return Notice{Level: NoticeWarning, Message: message}
}

// NoticeSink receives notices as they are produced
type NoticeSink interface {
	Notify(n Notice)
}

// Operation names the query that produced a result
type Operation string

const (
	OperationProjects Operation = "projects"
	OperationCodes    Operation = "codes"
	OperationCopy     Operation = "copy"
)

// Default query parameters
const (
	DefaultMinPct = 1

	// DominantThresholdWarnAt is the threshold at or below which several codes
	// of one project may qualify at once
	DominantThresholdWarnAt = 50
)

// ProjectQuery selects projects mapped to the given codes.
// Nil slices and pointers mean "unset"; unset filters keep rows with missing values.
type ProjectQuery struct {
	Codes  []string
	MinPct int

	StartFY *int
	StopFY  *int

	ProductTypes []string
	Statuses     []string

	IncludeAdditionalFinancing bool

	ShowAllCodes bool
	ShowMetadata bool
}

// NewProjectQuery returns a query for codes with every other filter at its default
func NewProjectQuery(codes ...string) ProjectQuery {
	return ProjectQuery{
		Codes:                      codes,
		MinPct:                     DefaultMinPct,
		IncludeAdditionalFinancing: true,
	}
}

// LookupQuery selects every code row of the given projects
type LookupQuery struct {
	ProjectIDs   []string
	Levels       []int
	ShowMetadata bool
}

// CountRequest asks for the number of distinct codes per project
type CountRequest struct {
	ProjectIDs []string
	Levels     []int
}

// DominantRequest asks for the dominant code of each project.
// A nil Threshold selects the strict-maximum rule.
type DominantRequest struct {
	ProjectIDs []string
	Threshold  *int
	Levels     []int
}

// QueryResult is the table produced by a project filter or code lookup
type QueryResult struct {
	ID          string              `json:"id" yaml:"id"`
	Scheme      Scheme              `json:"scheme" yaml:"scheme"`
	Operation   Operation           `json:"operation" yaml:"operation"`
	Columns     []Column            `json:"columns" yaml:"columns"`
	Rows        []ClassificationRow `json:"rows" yaml:"rows"`
	Projects    int                 `json:"projects" yaml:"projects"`
	Requested   int                 `json:"requested,omitempty" yaml:"requested,omitempty"`
	Notices     []Notice            `json:"notices,omitempty" yaml:"notices,omitempty"`
	GeneratedAt string              `json:"generated_at" yaml:"generated_at"`
}

// Empty reports whether the result has no rows
func (r *QueryResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// ColumnFor returns the result column carrying a field
func (r *QueryResult) ColumnFor(f Field) (Column, bool) {
	for _, c := range r.Columns {
		if c.Field == f {
			return c, true
		}
	}
	return Column{}, false
}

// ProjectIDs returns the distinct project identifiers in first-seen order
func (r *QueryResult) ProjectIDs() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.Rows))
	ids := make([]string, 0)
	for _, row := range r.Rows {
		if _, ok := seen[row.ProjectID]; ok {
			continue
		}
		seen[row.ProjectID] = struct{}{}
		ids = append(ids, row.ProjectID)
	}
	return ids
}

// Table renders the result as a header plus string records
func (r *QueryResult) Table() *Table {
	t := &Table{
		Title:   string(r.Operation),
		Columns: make([]string, len(r.Columns)),
		Numeric: make([]bool, len(r.Columns)),
	}
	for i, c := range r.Columns {
		t.Columns[i] = c.Name
		t.Numeric[i] = c.Field.Numeric()
	}
	t.Rows = make([][]string, 0, len(r.Rows))
	for i := range r.Rows {
		rec := make([]string, len(r.Columns))
		for j, c := range r.Columns {
			rec[j], _ = r.Rows[i].Value(c)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// CodeCount is the number of distinct codes mapped to a project
type CodeCount struct {
	ProjectID string   `json:"project_id" yaml:"project_id"`
	Count     int      `json:"count" yaml:"count"`
	Labels    []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// CountResult is the output of a code count
type CountResult struct {
	ID          string      `json:"id" yaml:"id"`
	Scheme      Scheme      `json:"scheme" yaml:"scheme"`
	Counts      []CodeCount `json:"counts" yaml:"counts"`
	Notices     []Notice    `json:"notices,omitempty" yaml:"notices,omitempty"`
	GeneratedAt string      `json:"generated_at" yaml:"generated_at"`
}

// Table renders one row per project with its code count and labels
func (r *CountResult) Table() *Table {
	t := &Table{
		Title:   "counts",
		Columns: []string{HeaderProjectID, "Code Count", "Codes"},
		Numeric: []bool{false, true, false},
		Rows:    make([][]string, 0, len(r.Counts)),
	}
	for _, c := range r.Counts {
		t.Rows = append(t.Rows, []string{c.ProjectID, strconv.Itoa(c.Count), strings.Join(c.Labels, "; ")})
	}
	return t
}

// DominantCode is the code judged most representative of a project
type DominantCode struct {
	ProjectID  string   `json:"project_id" yaml:"project_id"`
	Code       string   `json:"code" yaml:"code"`
	CodeName   string   `json:"code_name,omitempty" yaml:"code_name,omitempty"`
	Percentage *float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Ambiguous  bool     `json:"ambiguous,omitempty" yaml:"ambiguous,omitempty"`
}

// Label is the code name, falling back to the code
func (d DominantCode) Label() string {
	if d.CodeName != "" {
		return d.CodeName
	}
	return d.Code
}

// DominantResult is the output of dominant-code resolution
type DominantResult struct {
	ID          string         `json:"id" yaml:"id"`
	Scheme      Scheme         `json:"scheme" yaml:"scheme"`
	Threshold   *int           `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Projects    []DominantCode `json:"projects" yaml:"projects"`
	Notices     []Notice       `json:"notices,omitempty" yaml:"notices,omitempty"`
	GeneratedAt string         `json:"generated_at" yaml:"generated_at"`
}

// Table renders one row per project with its dominant code
func (r *DominantResult) Table() *Table {
	t := &Table{
		Title:   "dominant",
		Columns: []string{HeaderProjectID, "Dominant Code", "Dominant Code Name", "Percentage"},
		Numeric: []bool{false, false, false, true},
		Rows:    make([][]string, 0, len(r.Projects)),
	}
	for _, d := range r.Projects {
		p := ""
		if d.Percentage != nil {
			p = FormatPercentage(*d.Percentage)
		}
		t.Rows = append(t.Rows, []string{d.ProjectID, d.Code, d.CodeName, p})
	}
	return t
}

// Table is a plain header-plus-records view handed to report sinks
type Table struct {
	Title   string     `json:"title" yaml:"title"`
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`

	// Numeric marks columns whose non-empty values are numbers
	Numeric []bool `json:"-" yaml:"-"`
}

// IsNumeric reports whether column i holds numbers
func (t *Table) IsNumeric(i int) bool {
	return i < len(t.Numeric) && t.Numeric[i]
}

// DatasetInfo summarizes a loaded dataset
type DatasetInfo struct {
	Scheme        Scheme   `json:"scheme" yaml:"scheme"`
	Loaded        bool     `json:"loaded" yaml:"loaded"`
	Rows          int      `json:"rows" yaml:"rows"`
	Projects      int      `json:"projects" yaml:"projects"`
	Codes         int      `json:"codes" yaml:"codes"`
	MinFY         *int     `json:"min_fy,omitempty" yaml:"min_fy,omitempty"`
	MaxFY         *int     `json:"max_fy,omitempty" yaml:"max_fy,omitempty"`
	ProductTypes  []string `json:"product_types,omitempty" yaml:"product_types,omitempty"`
	Statuses      []string `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	Columns       []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	Source        string   `json:"source,omitempty" yaml:"source,omitempty"`
	DownloadDate  string   `json:"download_date,omitempty" yaml:"download_date,omitempty"`
	LoadSeconds   float64  `json:"load_seconds,omitempty" yaml:"load_seconds,omitempty"`
	LastOperation string   `json:"last_operation,omitempty" yaml:"last_operation,omitempty"`
}

// LoadedTable is the merged code/metadata table produced by a loader
type LoadedTable struct {
	Columns      []Column
	Rows         []ClassificationRow
	Source       string
	DownloadDate string
}

// DatasetLoader supplies the merged classification table of a scheme
type DatasetLoader interface {
	Load(ctx context.Context, schema *Schema) (*LoadedTable, error)
}

// ClassificationService is the query surface over loaded classification data
type ClassificationService interface {
	// Load populates the dataset of a scheme; loading twice is a no-op
	Load(ctx context.Context, scheme Scheme) ([]Notice, error)

	// LoadAll populates the datasets of several schemes concurrently
	LoadAll(ctx context.Context, schemes ...Scheme) ([]Notice, error)

	// Unload returns the dataset of a scheme to the empty state
	Unload(scheme Scheme) []Notice

	// Info summarizes the dataset of a scheme
	Info(scheme Scheme) (*DatasetInfo, error)

	// Describe returns a one-line status of the dataset of a scheme
	Describe(scheme Scheme) (string, error)

	// Copy returns every row of the loaded dataset
	Copy(scheme Scheme) (*QueryResult, error)

	// FilterProjects returns rows of projects satisfying a project query
	FilterProjects(ctx context.Context, scheme Scheme, q ProjectQuery) (*QueryResult, error)

	// LookupCodes returns every code row of the requested projects
	LookupCodes(ctx context.Context, scheme Scheme, q LookupQuery) (*QueryResult, error)

	// CountCodes counts distinct codes per project
	CountCodes(ctx context.Context, scheme Scheme, req CountRequest) (*CountResult, error)

	// DominantCodes resolves the dominant code of each project
	DominantCodes(ctx context.Context, scheme Scheme, req DominantRequest) (*DominantResult, error)

	// Last returns the most recent successful query result of a scheme
	Last(scheme Scheme) (*QueryResult, error)
}
