package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/xuri/excelize/v2"

	"github.com/ieg-tools/projcodes/domain"
)

// DefaultSheetName is the worksheet a saved result is written to
const DefaultSheetName = "Sheet1"

// TableReportWriter implements domain.ReportSink
type TableReportWriter struct {
	sheet string
}

// NewTableReportWriter creates a report writer
func NewTableReportWriter() *TableReportWriter {
	return &TableReportWriter{sheet: DefaultSheetName}
}

// WriteTable encodes the table to w in the given format
func (rw *TableReportWriter) WriteTable(w io.Writer, table *domain.Table, format domain.OutputFormat) error {
	if table == nil {
		return domain.NewStateError(domain.MsgNoOutput)
	}
	switch format {
	case domain.OutputFormatXLSX:
		return rw.writeWorkbook(w, table)
	case domain.OutputFormatCSV:
		return writeCSV(w, table)
	case domain.OutputFormatJSON:
		return WriteJSON(w, table)
	case domain.OutputFormatYAML:
		return WriteYAML(w, table)
	case domain.OutputFormatText:
		return writeText(w, table)
	case domain.OutputFormatHTML:
		page := newHTMLPage(table.Title)
		page.Table = table
		return renderPage(w, page)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// writeWorkbook stores the table on one worksheet with a header row.
// Numeric columns are written as numbers so spreadsheet formulas work on them.
func (rw *TableReportWriter) writeWorkbook(w io.Writer, table *domain.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(rw.sheet)
	if err != nil {
		return domain.NewOutputError("failed to start worksheet", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return domain.NewOutputError("failed to write header row", err)
	}

	for r, rec := range table.Rows {
		cells := make([]interface{}, len(rec))
		for i, v := range rec {
			cells[i] = cellValue(table, i, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return domain.NewOutputError("failed to address row", err)
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to write row %d", r+2), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return domain.NewOutputError("failed to flush worksheet", err)
	}
	if err := f.Write(w); err != nil {
		return domain.NewOutputError("failed to write workbook", err)
	}
	return nil
}

// cellValue converts a numeric column value; missing values stay empty cells
func cellValue(table *domain.Table, i int, v string) interface{} {
	if v == "" {
		return nil
	}
	if table.IsNumeric(i) {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}

func writeCSV(w io.Writer, table *domain.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return domain.NewOutputError("failed to write CSV rows", err)
	}
	return nil
}

var (
	textHeaderStyle = lipgloss.NewStyle().Bold(true).PaddingRight(2)
	textCellStyle   = lipgloss.NewStyle().PaddingRight(2)
	textRuleStyle   = lipgloss.NewStyle().Faint(true)
)

// writeText renders aligned columns for the terminal
func writeText(w io.Writer, table *domain.Table) error {
	widths := make([]int, len(table.Columns))
	for i, c := range table.Columns {
		widths[i] = lipgloss.Width(c)
	}
	for _, rec := range table.Rows {
		for i, v := range rec {
			if i < len(widths) && lipgloss.Width(v) > widths[i] {
				widths[i] = lipgloss.Width(v)
			}
		}
	}

	var sb strings.Builder
	total := 0
	for i, c := range table.Columns {
		sb.WriteString(textHeaderStyle.Width(widths[i] + 2).Render(c))
		total += widths[i] + 2
	}
	sb.WriteString("\n")
	sb.WriteString(textRuleStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")

	for _, rec := range table.Rows {
		for i, v := range rec {
			if i >= len(widths) {
				break
			}
			style := textCellStyle.Width(widths[i] + 2)
			if table.IsNumeric(i) {
				style = style.Align(lipgloss.Right)
			}
			sb.WriteString(style.Render(v))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%d rows\n", len(table.Rows))

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return domain.NewOutputError("failed to write table", err)
	}
	return nil
}
