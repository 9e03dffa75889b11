package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/ieg-tools/projcodes/domain"
)

// OutputFormatterImpl writes query results and dataset summaries
type OutputFormatterImpl struct {
	tables domain.ReportSink
}

// NewOutputFormatter creates a formatter delegating tabular formats to sink.
// A nil sink uses a TableReportWriter.
func NewOutputFormatter(sink domain.ReportSink) *OutputFormatterImpl {
	if sink == nil {
		sink = NewTableReportWriter()
	}
	return &OutputFormatterImpl{tables: sink}
}

// Write encodes a result. JSON and YAML keep the full result structure
// including notices; the other formats write its table view.
func (f *OutputFormatterImpl) Write(result domain.Tabular, format domain.OutputFormat, w io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(w, result)
	case domain.OutputFormatYAML:
		return WriteYAML(w, result)
	default:
		return f.tables.WriteTable(w, result.Table(), format)
	}
}

// WriteInfo encodes a dataset summary
func (f *OutputFormatterImpl) WriteInfo(info *domain.DatasetInfo, format domain.OutputFormat, w io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(w, info)
	case domain.OutputFormatYAML:
		return WriteYAML(w, info)
	case domain.OutputFormatText:
		if _, err := io.WriteString(w, formatInfoText(info)); err != nil {
			return domain.NewOutputError("failed to write dataset summary", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func formatInfoText(info *domain.DatasetInfo) string {
	var b strings.Builder
	b.WriteString(FormatMainHeader(strings.ToUpper(string(info.Scheme[:1])) + string(info.Scheme[1:]) + " data"))
	b.WriteString(FormatLabel("Loaded", info.Loaded))
	if info.LastOperation != "" {
		b.WriteString(FormatLabel("Last operation", info.LastOperation))
	}
	if !info.Loaded {
		return b.String()
	}
	b.WriteString(FormatLabel("Rows", info.Rows))
	b.WriteString(FormatLabel("Projects", info.Projects))
	b.WriteString(FormatLabel("Codes", info.Codes))
	if info.MinFY != nil && info.MaxFY != nil {
		b.WriteString(FormatLabel("Approval FY", formatRange(*info.MinFY, *info.MaxFY)))
	}
	b.WriteString(FormatLabel("Product types", FormatList(info.ProductTypes)))
	b.WriteString(FormatLabel("Statuses", FormatList(info.Statuses)))
	if info.Source != "" {
		b.WriteString(FormatLabel("Source", info.Source))
	}
	if info.DownloadDate != "" {
		b.WriteString(FormatLabel("Download date", info.DownloadDate))
	}
	b.WriteString(FormatLabel("Columns", len(info.Columns)))
	return b.String()
}

func formatRange(min, max int) string {
	return fmt.Sprintf("%d - %d", min, max)
}
