package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

// writeExport saves a small project export and points the configuration at it
func writeExport(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WB_Project_data.export.2024-05-01.xlsx")
	sheets := map[string][][]interface{}{
		"metadata": {
			{"Project Id", "Project Approval FY", "Project Status Name", "Product Line Type", "Additional Financing Flag", "Lead GP/Global Themes", "Region Name"},
			{"P1", 2020, "Active", "L", "N", "Energy", "Africa"},
			{"P2", 2022, "Closed", "A", "Y", "Water", "East Asia"},
		},
		"sectors": {
			{"Project Id", "Major Sector Code", "Major Sector Long Name", "Sector Code", "Sector Long Name", "Sector Percentage"},
			{"P1", "EX", "Energy", "EA", "Power", 0.6},
			{"P1", "EX", "Energy", "EB", "Grid", 0.4},
			{"P2", "WX", "Water", "WC", "Water supply", 0.5},
			{"P2", "WX", "Water", "WD", "Sanitation", 0.5},
		},
	}

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

	t.Setenv("PROJCODES_SOURCE_PATH", path)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--quiet"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "projcodes dev")
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", ".projcodes.toml")

	out, err := execute(t, "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[source]")
	assert.Contains(t, string(data), "dominant_threshold = 0")

	_, err = execute(t, "init", "--output", path)
	assert.Error(t, err)

	_, err = execute(t, "init", "--output", path, "--force")
	assert.NoError(t, err)
}

func TestInitCommand_Effective(t *testing.T) {
	t.Setenv("PROJCODES_QUERY_MIN_PCT", "25")
	path := filepath.Join(t.TempDir(), "effective.toml")

	_, err := execute(t, "init", "--effective", "--output", path)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Query.MinPct)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "min_pct = 25")
}

func TestProjectsCommand_JSON(t *testing.T) {
	writeExport(t)

	out, err := execute(t, "projects", "EA", "--format", "json")
	require.NoError(t, err)

	var res domain.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"P1"}, res.ProjectIDs())
}

func TestProjectsCommand_FiscalYearFilter(t *testing.T) {
	writeExport(t)

	out, err := execute(t, "projects", "EA", "WC", "--start-fy", "2021", "--format", "json")
	require.NoError(t, err)

	var res domain.QueryResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"P2"}, res.ProjectIDs())
}

func TestInfoCommand(t *testing.T) {
	writeExport(t)

	out, err := execute(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Sector data")
	assert.Contains(t, out, "2024-05-01")
	assert.Contains(t, out, "2020 - 2022")
}

func TestCountCommand_Save(t *testing.T) {
	writeExport(t)
	dir := t.TempDir()

	out, err := execute(t, "count", "P1", "P2", "--save", "counts.csv", "--output-dir", dir)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "counts.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "P1,2"))
}

func TestCodesCommand_TerminalPlot(t *testing.T) {
	writeExport(t)

	out, err := execute(t, "codes", "P1", "P2", "--show-meta", "--plot", "gp", "--chart-format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Energy")
	assert.Contains(t, out, "█")
}

func TestUnknownScheme(t *testing.T) {
	writeExport(t)

	_, err := execute(t, "--scheme", "region", "info")
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.ErrCodeValidation))

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), string(domain.ErrorCategoryInput))
}
