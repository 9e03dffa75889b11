package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

var metadataHeader = []interface{}{
	"Project Id", "Project Approval FY", "Project Status Code", "Project Status Name",
	"Product Line Type", "Additional Financing Flag", "Lead GP/Global Themes",
	"Region Name", "Lending Instrument Code", "Lending Instrument Long Name", "Team Leader",
}

func metadataRows() [][]interface{} {
	return [][]interface{}{
		metadataHeader,
		{"P2", 2022, "C", "Closed", "A", "Y", "Water", "East Asia", "", "", "Lee"},
		{"P1", 2020, "A", "Active", "L", "N", "Energy", "Africa", "IPF", "Investment Project Financing", "Diaz"},
		{"P5", 2021.0, "A", "Active", "L", "N", "Energy", "Africa", "", "", ""},
	}
}

func sectorRows() [][]interface{} {
	return [][]interface{}{
		{"Project Id", "Major Sector Code", "Major Sector Long Name", "Sector Code", "Sector Long Name", "Sector Percentage"},
		{"P2", "WX", "Water", "C", "Water supply", 0.5},
		{"P1", "EX", "Energy", "A", "Power", 0.6},
		{"P1", "EX", "Energy", "B", "Grid", 0.4},
		{"p3", "EX", "Energy", "A", "Power", 0.3},
		{"P2", "WX", "Water", "D", "Sanitation", 0.5},
	}
}

func themeRows() [][]interface{} {
	return [][]interface{}{
		{"Project Id", "Theme Code", "Theme Level", "Theme Name", "Theme Percentage"},
		{"P1", 10, 1, "Environment", 0.7},
		{"P1", 11.0, 2, "Climate", 0.3},
		{"P2", 20, "", "Gender", 1},
	}
}

// writeWorkbook saves a workbook with one sheet per entry
func writeWorkbook(t *testing.T, path string, sheets map[string][][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
}

func exportWorkbook(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "WB_Project_data.export.2024-05-01.xlsx"), map[string][][]interface{}{
		"metadata": metadataRows(),
		"sectors":  sectorRows(),
		"themes":   themeRows(),
	})
	return dir
}

func sourceFor(dir string) config.SourceConfig {
	src := config.DefaultConfig().Source
	src.Directory = dir
	return src
}

type countingProgress struct {
	noopProgress
	mu       sync.Mutex
	advanced int
}

func (p *countingProgress) Advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanced += n
}

func TestWorkbookLoader_Sector(t *testing.T) {
	dir := exportWorkbook(t)
	progress := &countingProgress{}
	loader := NewWorkbookLoader(sourceFor(dir)).WithProgress(progress)

	table, err := loader.Load(context.Background(), domain.SectorSchema)
	require.NoError(t, err)
	assert.Equal(t, LoadPhases, progress.advanced)
	assert.Equal(t, config.DefaultSourceLabel, table.Source)
	assert.Equal(t, "2024-05-01", table.DownloadDate)

	ids := make([]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		ids = append(ids, r.ProjectID+"/"+r.Code)
	}
	// outer merge ordered by project id, sheet order kept within a project
	assert.Equal(t, []string{"P1/A", "P1/B", "P2/C", "P2/D", "P3/A", "P5/"}, ids)

	p1 := table.Rows[0]
	require.NotNil(t, p1.Percentage)
	assert.Equal(t, 60.0, *p1.Percentage)
	require.NotNil(t, p1.ApprovalFY)
	assert.Equal(t, 2020, *p1.ApprovalFY)
	assert.Equal(t, "Active", p1.Status)
	assert.Equal(t, "Energy", p1.LeadPractice)
	assert.Equal(t, "Investment Project Financing", p1.Instrument)
	assert.Equal(t, map[string]string{"Team Leader": "Diaz"}, p1.Extra)

	p3 := table.Rows[4]
	assert.Nil(t, p3.ApprovalFY)
	assert.Empty(t, p3.Status)

	p5 := table.Rows[5]
	assert.Nil(t, p5.Percentage)
	require.NotNil(t, p5.ApprovalFY)
	assert.Equal(t, 2021, *p5.ApprovalFY)

	names := make([]string, 0, len(table.Columns))
	for _, c := range table.Columns {
		names = append(names, c.Name)
	}
	assert.NotContains(t, names, "Project Status Code")
	assert.NotContains(t, names, "Lending Instrument Code")
	assert.Contains(t, names, "Team Leader")
	assert.Equal(t, "Project Id", names[0])
}

func TestWorkbookLoader_Theme(t *testing.T) {
	dir := exportWorkbook(t)
	table, err := NewWorkbookLoader(sourceFor(dir)).Load(context.Background(), domain.ThemeSchema)
	require.NoError(t, err)

	require.Len(t, table.Rows, 4)
	assert.Equal(t, "10", table.Rows[0].Code)
	assert.Equal(t, "11", table.Rows[1].Code)
	require.NotNil(t, table.Rows[1].ThemeLevel)
	assert.Equal(t, 2, *table.Rows[1].ThemeLevel)
	assert.Nil(t, table.Rows[2].ThemeLevel)
	require.NotNil(t, table.Rows[2].Percentage)
	assert.Equal(t, 100.0, *table.Rows[2].Percentage)
	assert.Equal(t, "P5", table.Rows[3].ProjectID)
}

func TestWorkbookLoader_DuplicateMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := append(metadataRows(), []interface{}{"P1", 2019, "A", "Active", "L", "N", "Energy", "Africa", "", "", ""})
	writeWorkbook(t, filepath.Join(dir, "Project_data.x.2024.xlsx"), map[string][][]interface{}{
		"metadata": meta,
		"sectors":  sectorRows(),
	})

	_, err := NewWorkbookLoader(sourceFor(dir)).Load(context.Background(), domain.SectorSchema)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))
	assert.Contains(t, err.Error(), "P1")
}

func TestWorkbookLoader_MissingCodeColumn(t *testing.T) {
	dir := t.TempDir()
	rows := sectorRows()
	rows[0] = []interface{}{"Project Id", "Major Sector Code", "Major Sector Long Name", "Sector Code", "Sector Long Name"}
	writeWorkbook(t, filepath.Join(dir, "Project_data.x.2024.xlsx"), map[string][][]interface{}{
		"metadata": metadataRows(),
		"sectors":  rows,
	})

	_, err := NewWorkbookLoader(sourceFor(dir)).Load(context.Background(), domain.SectorSchema)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeLoadError))
	assert.Contains(t, err.Error(), "Sector Percentage")
}

func TestWorkbookLoader_MissingSheet(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "Project_data.x.2024.xlsx"), map[string][][]interface{}{
		"metadata": metadataRows(),
	})

	_, err := NewWorkbookLoader(sourceFor(dir)).Load(context.Background(), domain.ThemeSchema)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeLoadError))
}

func TestWorkbookLoader_Locate(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "B_Project_data.x.2024-02.xlsx"), map[string][][]interface{}{"metadata": metadataRows()})
	writeWorkbook(t, filepath.Join(dir, "A_Project_data.x.2024-01.xlsx"), map[string][][]interface{}{"metadata": metadataRows()})
	writeWorkbook(t, filepath.Join(dir, "unrelated.xlsx"), map[string][][]interface{}{"metadata": metadataRows()})

	path, err := NewWorkbookLoader(sourceFor(dir)).Locate()
	require.NoError(t, err)
	assert.Equal(t, "A_Project_data.x.2024-01.xlsx", filepath.Base(path))

	explicit := sourceFor(t.TempDir())
	explicit.Path = filepath.Join(dir, "unrelated.xlsx")
	path, err = NewWorkbookLoader(explicit).Locate()
	require.NoError(t, err)
	assert.Equal(t, explicit.Path, path)

	_, err = NewWorkbookLoader(sourceFor(t.TempDir())).Locate()
	assert.True(t, domain.HasCode(err, domain.ErrCodeFileNotFound))

	missing := sourceFor(dir)
	missing.Path = filepath.Join(dir, "nope.xlsx")
	_, err = NewWorkbookLoader(missing).Locate()
	assert.True(t, domain.HasCode(err, domain.ErrCodeFileNotFound))
}

func TestWorkbookLoader_Cancelled(t *testing.T) {
	dir := exportWorkbook(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkbookLoader(sourceFor(dir)).Load(ctx, domain.SectorSchema)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownloadDate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{`N:\BASE_DATA\WB_Project_data.export.2024-05-01.xlsx`, "2024-05-01"},
		{"/data/Project_data.x.20240501.xlsx", "20240501"},
		{"Project_data.xlsx", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DownloadDate(filepath.FromSlash(tt.path)), tt.path)
	}
}

func TestToPercent(t *testing.T) {
	assert.Equal(t, 7.0, toPercent(0.07))
	assert.Equal(t, 33.333333333, toPercent(1.0/3))
}
