// Package dataset holds the in-memory classification table of one scheme
// together with the statistics the query engine derives from it.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ieg-tools/projcodes/domain"
)

// Status messages
const (
	MsgAlreadyLoaded = "Data already loaded to this object."
	MsgUnloaded      = "Data unloading complete."
	MsgNotLoaded     = "Data not yet loaded."
)

// Stats are the observed option sets of a loaded table
type Stats struct {
	Rows     int
	Projects int
	Codes    int

	MinFY *int
	MaxFY *int

	ProductTypes   []string
	Statuses       []string
	FinancingFlags []string

	NullFY          bool
	NullProductType bool
	NullStatus      bool
	NullFinancing   bool
}

// Dataset is created empty, populated once by Load and cleared by Unload.
// Rows are never modified after load.
type Dataset struct {
	schema *domain.Schema

	loaded       bool
	columns      []domain.Column
	rows         []domain.ClassificationRow
	byProject    map[string][]int
	source       string
	downloadDate string
	loadTime     time.Duration
	stats        Stats

	last          *domain.QueryResult
	lastOperation string
}

// New creates an empty dataset for a schema
func New(schema *domain.Schema) *Dataset {
	return &Dataset{schema: schema}
}

// Schema returns the descriptor of the dataset
func (d *Dataset) Schema() *domain.Schema {
	return d.schema
}

// Loaded reports whether data has been loaded
func (d *Dataset) Loaded() bool {
	return d.loaded
}

// Load populates the dataset through the loader. Loading an already loaded
// dataset leaves it unchanged and returns a notice.
func (d *Dataset) Load(ctx context.Context, loader domain.DatasetLoader) ([]domain.Notice, error) {
	d.lastOperation = "load"
	if d.loaded {
		return []domain.Notice{domain.InfoNotice(MsgAlreadyLoaded)}, nil
	}
	if loader == nil {
		return nil, domain.NewLoadError("no loader configured", nil)
	}

	start := time.Now()
	table, err := loader.Load(ctx, d.schema)
	if err != nil {
		return nil, err
	}
	if err := d.populate(table); err != nil {
		return nil, err
	}
	d.loadTime = time.Since(start)

	msg := fmt.Sprintf("Data loading successful! Loaded data contains %d rows and %d unique WB projects. Total loading time: %.1f seconds.",
		d.stats.Rows, d.stats.Projects, d.loadTime.Seconds())
	notices := []domain.Notice{domain.InfoNotice(msg)}
	if d.source != "" {
		notices = append(notices, domain.InfoNotice("Data source: "+d.source+"."))
	}
	if d.downloadDate != "" {
		notices = append(notices, domain.InfoNotice("Data download date: "+d.downloadDate+"."))
	}
	return notices, nil
}

// Populate loads an already merged table directly. It is a no-op on a loaded dataset.
func (d *Dataset) Populate(table *domain.LoadedTable) error {
	if d.loaded {
		return nil
	}
	return d.populate(table)
}

func (d *Dataset) populate(table *domain.LoadedTable) error {
	if table == nil {
		return domain.NewLoadError("loader returned no table", nil)
	}
	byProject := make(map[string][]int)
	for i := range table.Rows {
		id := table.Rows[i].ProjectID
		if id == "" {
			return domain.NewLoadError(fmt.Sprintf("row %d has no project identifier", i+1), nil)
		}
		byProject[id] = append(byProject[id], i)
	}

	d.columns = table.Columns
	if len(d.columns) == 0 {
		d.columns = d.schema.Columns(append(append([]domain.Field{}, d.schema.CodeFields...), domain.MetadataFields...))
	}
	d.rows = table.Rows
	d.byProject = byProject
	d.source = table.Source
	d.downloadDate = table.DownloadDate
	d.stats = computeStats(table.Rows, len(byProject))
	d.loaded = true
	return nil
}

// Unload returns the dataset to the empty state
func (d *Dataset) Unload() []domain.Notice {
	*d = Dataset{schema: d.schema, lastOperation: "unload"}
	return []domain.Notice{domain.InfoNotice(MsgUnloaded)}
}

// Rows returns the loaded rows. Callers must not modify them.
func (d *Dataset) Rows() []domain.ClassificationRow {
	return d.rows
}

// Columns returns the full column set in export order
func (d *Dataset) Columns() []domain.Column {
	return d.columns
}

// ProjectRows returns the row indexes of a project in original order
func (d *Dataset) ProjectRows(projectID string) []int {
	return d.byProject[projectID]
}

// Stats returns the observed statistics of the loaded table
func (d *Dataset) Stats() Stats {
	return d.stats
}

// DownloadDate returns the export date label of the source file
func (d *Dataset) DownloadDate() string {
	return d.downloadDate
}

// Last returns the most recent successful query result, if any
func (d *Dataset) Last() *domain.QueryResult {
	return d.last
}

// SetLast replaces the last-result slot
func (d *Dataset) SetLast(r *domain.QueryResult) {
	d.last = r
}

// Record notes the most recent operation invoked on the dataset
func (d *Dataset) Record(operation string) {
	d.lastOperation = operation
}

// LastOperation returns the most recent operation invoked on the dataset
func (d *Dataset) LastOperation() string {
	return d.lastOperation
}

// Info summarizes the dataset
func (d *Dataset) Info() *domain.DatasetInfo {
	info := &domain.DatasetInfo{
		Scheme:        d.schema.Scheme,
		Loaded:        d.loaded,
		LastOperation: d.lastOperation,
	}
	if !d.loaded {
		return info
	}
	info.Rows = d.stats.Rows
	info.Projects = d.stats.Projects
	info.Codes = d.stats.Codes
	info.MinFY = d.stats.MinFY
	info.MaxFY = d.stats.MaxFY
	info.ProductTypes = d.stats.ProductTypes
	info.Statuses = d.stats.Statuses
	info.Source = d.source
	info.DownloadDate = d.downloadDate
	info.LoadSeconds = d.loadTime.Seconds()
	for _, c := range d.columns {
		info.Columns = append(info.Columns, c.Name)
	}
	return info
}

func (d *Dataset) String() string {
	last := d.lastOperation
	if last == "" {
		last = "None"
	}
	return fmt.Sprintf("Object class: %s. Holds data: %t. Most recent call: %s.", d.schema.Label, d.loaded, last)
}

func computeStats(rows []domain.ClassificationRow, projects int) Stats {
	st := Stats{Rows: len(rows), Projects: projects}
	products := make(map[string]struct{})
	statuses := make(map[string]struct{})
	flags := make(map[string]struct{})
	codes := make(map[string]struct{})

	for i := range rows {
		r := &rows[i]
		if r.Code != "" {
			codes[r.Code] = struct{}{}
		}
		if r.ApprovalFY == nil {
			st.NullFY = true
		} else {
			fy := *r.ApprovalFY
			if st.MinFY == nil || fy < *st.MinFY {
				st.MinFY = &fy
			}
			if st.MaxFY == nil || fy > *st.MaxFY {
				v := fy
				st.MaxFY = &v
			}
		}
		observe(r.ProductType, products, &st.NullProductType)
		observe(r.Status, statuses, &st.NullStatus)
		observe(r.AdditionalFinancing, flags, &st.NullFinancing)
	}

	st.Codes = len(codes)
	st.ProductTypes = sortedKeys(products)
	st.Statuses = sortedKeys(statuses)
	st.FinancingFlags = sortedKeys(flags)
	return st
}

func observe(v string, seen map[string]struct{}, null *bool) {
	if v == "" {
		*null = true
		return
	}
	seen[v] = struct{}{}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
