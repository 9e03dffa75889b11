package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ieg-tools/projcodes/domain"
)

// terminalBarWidth is the length of the longest bar in a terminal chart
const terminalBarWidth = 40

var (
	chartTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	chartBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	chartAxisStyle  = lipgloss.NewStyle().Faint(true)
)

// ChartRenderer implements domain.ChartSink
type ChartRenderer struct{}

// NewChartRenderer creates a chart renderer
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{}
}

// Render draws the chart as terminal bars, a standalone SVG page, or its data
func (r *ChartRenderer) Render(w io.Writer, chart *domain.Chart, format domain.OutputFormat) error {
	if chart == nil {
		return domain.NewStateError(domain.MsgNoPlot)
	}
	switch format {
	case domain.OutputFormatText:
		return renderTerminal(w, chart)
	case domain.OutputFormatHTML:
		page := newHTMLPage(chart.Title)
		page.Chart = layoutSVG(chart)
		page.Notices = chart.Notices
		return renderPage(w, page)
	case domain.OutputFormatJSON:
		return WriteJSON(w, chart)
	case domain.OutputFormatYAML:
		return WriteYAML(w, chart)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// renderTerminal draws one labelled row per bar regardless of orientation;
// vertical charts keep their category order
func renderTerminal(w io.Writer, chart *domain.Chart) error {
	labelWidth := lipgloss.Width(chart.CategoryLabel)
	for _, b := range chart.Bars {
		if n := lipgloss.Width(b.Label); n > labelWidth {
			labelWidth = n
		}
	}
	if labelWidth > maxHorizontalText {
		labelWidth = maxHorizontalText
	}
	max := chart.MaxValue()

	var sb strings.Builder
	sb.WriteString(chartTitleStyle.Render(chart.Title))
	sb.WriteString("\n\n")
	label := lipgloss.NewStyle().Width(labelWidth).Align(lipgloss.Right)
	sb.WriteString(chartAxisStyle.Render(label.Render(chart.CategoryLabel) + " | " + chart.ValueLabel))
	sb.WriteString("\n")

	for _, b := range chart.Bars {
		n := 0
		if max > 0 {
			n = b.Value * terminalBarWidth / max
		}
		if n == 0 && b.Value > 0 {
			n = 1
		}
		sb.WriteString(label.Render(truncate(b.Label, labelWidth)))
		sb.WriteString(chartAxisStyle.Render(" | "))
		sb.WriteString(chartBarStyle.Render(strings.Repeat("█", n)))
		fmt.Fprintf(&sb, " %d\n", b.Value)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return domain.NewOutputError("failed to draw chart", err)
	}
	return nil
}
