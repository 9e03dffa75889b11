package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/ieg-tools/projcodes/domain"
)

func sampleTable() *domain.Table {
	return &domain.Table{
		Title:   "projects",
		Columns: []string{"Project Id", "Sector Code", "Sector Percentage", "Project Approval FY"},
		Numeric: []bool{false, false, true, true},
		Rows: [][]string{
			{"P1", "A", "60", "2020"},
			{"P3", "A", "12.5", ""},
		},
	}
}

func TestTableReportWriter_XLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, sampleTable(), domain.OutputFormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Project Id", "Sector Code", "Sector Percentage", "Project Approval FY"}, rows[0])
	assert.Equal(t, []string{"P1", "A", "60", "2020"}, rows[1])
	assert.Equal(t, []string{"P3", "A", "12.5"}, rows[2])

	textTypes := []excelize.CellType{excelize.CellTypeInlineString, excelize.CellTypeSharedString}
	typ, err := f.GetCellType(DefaultSheetName, "C2")
	require.NoError(t, err)
	assert.NotContains(t, textTypes, typ)
	typ, err = f.GetCellType(DefaultSheetName, "A2")
	require.NoError(t, err)
	assert.Contains(t, textTypes, typ)
}

func TestTableReportWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, sampleTable(), domain.OutputFormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Project Id", "Sector Code", "Sector Percentage", "Project Approval FY"},
		{"P1", "A", "60", "2020"},
		{"P3", "A", "12.5", ""},
	}, records)
}

func TestTableReportWriter_JSONAndYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, sampleTable(), domain.OutputFormatJSON))
	var decoded domain.Table
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "projects", decoded.Title)
	assert.Len(t, decoded.Rows, 2)

	buf.Reset()
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, sampleTable(), domain.OutputFormatYAML))
	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "projects", doc["title"])
}

func TestTableReportWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, sampleTable(), domain.OutputFormatText))

	out := buf.String()
	assert.Contains(t, out, "Sector Percentage")
	assert.Contains(t, out, "12.5")
	assert.Contains(t, out, "2 rows")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[1], "---"))
}

func TestTableReportWriter_HTML(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"<P9>", "B", "1", "2021"})

	var buf bytes.Buffer
	require.NoError(t, NewTableReportWriter().WriteTable(&buf, table, domain.OutputFormatHTML))

	out := buf.String()
	assert.Contains(t, out, "<th>Sector Percentage</th>")
	assert.Contains(t, out, `<td class="num">12.5</td>`)
	assert.Contains(t, out, "&lt;P9&gt;")
}

func TestTableReportWriter_Errors(t *testing.T) {
	w := NewTableReportWriter()
	var buf bytes.Buffer

	err := w.WriteTable(&buf, sampleTable(), domain.OutputFormat("pdf"))
	assert.True(t, domain.HasCode(err, domain.ErrCodeUnsupportedFormat))

	err = w.WriteTable(&buf, nil, domain.OutputFormatCSV)
	assert.True(t, domain.IsSoft(err))
}
