package service

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/version"
)

// htmlPage is the data of a standalone HTML report or chart
type htmlPage struct {
	Title       string
	GeneratedAt string
	Version     string
	Table       *domain.Table
	Chart       *svgChart
	Notices     []domain.Notice
}

func newHTMLPage(title string) *htmlPage {
	return &htmlPage{
		Title:       title,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Version:     version.Short(),
	}
}

// svgChart is a chart laid out in pixel coordinates
type svgChart struct {
	Width, Height int
	Left, Top     int
	Right, Bottom int

	Bars  []svgBar
	Ticks []svgTick

	CategoryLabel svgText
	ValueLabel    svgText
}

type svgBar struct {
	X, Y, W, H int
	Value      int
	ValueAt    svgText
	Label      svgText
}

type svgTick struct {
	X1, Y1, X2, Y2 int
	Text           svgText
}

type svgText struct {
	X, Y   int
	Text   string
	Anchor string
	Rotate int
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; color: #222; margin: 24px; }
  h1 { font-size: 20px; margin-bottom: 4px; }
  .meta { color: #777; font-size: 12px; margin-bottom: 16px; }
  .notice { font-size: 13px; margin: 2px 0; }
  .notice.warning { color: #b25b00; }
  table { border-collapse: collapse; font-size: 13px; }
  th { background: #1f4e79; color: #fff; text-align: left; }
  th, td { padding: 4px 10px; border: 1px solid #ccd; }
  td.num { text-align: right; }
  tr:nth-child(even) td { background: #f4f6fa; }
  svg text { font-size: 12px; fill: #333; }
  svg .title { font-size: 16px; font-weight: 600; }
  svg .axis { stroke: #444; }
  svg .grid { stroke: #ddd; }
  svg .bar { fill: #2e75b6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Generated {{.GeneratedAt}} by projcodes {{.Version}}</div>
{{range .Notices}}<div class="notice {{.Level}}">{{.Message}}</div>
{{end}}
{{- with .Chart}}
<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
{{- range .Ticks}}
  <line class="grid" x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}"/>
  <text x="{{.Text.X}}" y="{{.Text.Y}}" text-anchor="{{.Text.Anchor}}">{{.Text.Text}}</text>
{{- end}}
{{- range .Bars}}
  <rect class="bar" x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}"><title>{{.Label.Text}}: {{.Value}}</title></rect>
  <text x="{{.Label.X}}" y="{{.Label.Y}}" text-anchor="{{.Label.Anchor}}"{{if .Label.Rotate}} transform="rotate({{.Label.Rotate}} {{.Label.X}} {{.Label.Y}})"{{end}}>{{.Label.Text}}</text>
  <text x="{{.ValueAt.X}}" y="{{.ValueAt.Y}}" text-anchor="{{.ValueAt.Anchor}}">{{.Value}}</text>
{{- end}}
  <line class="axis" x1="{{.Left}}" y1="{{.Bottom}}" x2="{{.Right}}" y2="{{.Bottom}}"/>
  <line class="axis" x1="{{.Left}}" y1="{{.Top}}" x2="{{.Left}}" y2="{{.Bottom}}"/>
  <text x="{{.CategoryLabel.X}}" y="{{.CategoryLabel.Y}}" text-anchor="middle"{{if .CategoryLabel.Rotate}} transform="rotate({{.CategoryLabel.Rotate}} {{.CategoryLabel.X}} {{.CategoryLabel.Y}})"{{end}}>{{.CategoryLabel.Text}}</text>
  <text x="{{.ValueLabel.X}}" y="{{.ValueLabel.Y}}" text-anchor="middle"{{if .ValueLabel.Rotate}} transform="rotate({{.ValueLabel.Rotate}} {{.ValueLabel.X}} {{.ValueLabel.Y}})"{{end}}>{{.ValueLabel.Text}}</text>
</svg>
{{- end}}
{{- with .Table}}
<table>
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- $t := .}}
{{- range .Rows}}
<tr>{{range $i, $v := .}}<td{{if $t.IsNumeric $i}} class="num"{{end}}>{{$v}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
</body>
</html>
`))

// renderPage writes a page through the shared layout
func renderPage(w io.Writer, page *htmlPage) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to render %q as HTML", page.Title), err)
	}
	return nil
}

// Plot margins in pixels
const (
	marginTop         = 30
	marginRight       = 40
	horizontalLeft    = 260
	horizontalBottom  = 60
	verticalLeft      = 70
	verticalBottom    = 110
	barFill           = 0.7
	maxHorizontalText = 40
)

// layoutSVG places the bars of a chart on its canvas
func layoutSVG(c *domain.Chart) *svgChart {
	s := &svgChart{Width: c.Size.Width, Height: c.Size.Height, Top: marginTop, Right: c.Size.Width - marginRight}
	n := len(c.Bars)
	if n == 0 {
		n = 1
	}
	ticks := domain.IntegerTicks(c.MaxValue(), 5)
	axisMax := ticks[len(ticks)-1]

	if c.Orientation == domain.OrientationVertical {
		s.Left, s.Bottom = verticalLeft, c.Size.Height-verticalBottom
		plotW, plotH := s.Right-s.Left, s.Bottom-s.Top
		band := float64(plotW) / float64(n)
		for i, b := range c.Bars {
			h := b.Value * plotH / axisMax
			x := s.Left + int(float64(i)*band+band*(1-barFill)/2)
			w := int(band * barFill)
			mid := x + w/2
			s.Bars = append(s.Bars, svgBar{
				X: x, Y: s.Bottom - h, W: w, H: h, Value: b.Value,
				ValueAt: svgText{X: mid, Y: s.Bottom - h - 4, Anchor: "middle"},
				Label:   svgText{X: mid, Y: s.Bottom + 14, Text: b.Label, Anchor: "end", Rotate: -45},
			})
		}
		for _, t := range ticks {
			y := s.Bottom - t*plotH/axisMax
			s.Ticks = append(s.Ticks, svgTick{
				X1: s.Left, Y1: y, X2: s.Right, Y2: y,
				Text: svgText{X: s.Left - 6, Y: y + 4, Text: fmt.Sprint(t), Anchor: "end"},
			})
		}
		s.CategoryLabel = svgText{X: (s.Left + s.Right) / 2, Y: c.Size.Height - 8, Text: c.CategoryLabel}
		s.ValueLabel = svgText{X: 18, Y: (s.Top + s.Bottom) / 2, Text: c.ValueLabel, Rotate: -90}
		return s
	}

	s.Left, s.Bottom = horizontalLeft, c.Size.Height-horizontalBottom
	plotW, plotH := s.Right-s.Left, s.Bottom-s.Top
	band := float64(plotH) / float64(n)
	for i, b := range c.Bars {
		w := b.Value * plotW / axisMax
		y := s.Top + int(float64(i)*band+band*(1-barFill)/2)
		h := int(band * barFill)
		mid := y + h/2 + 4
		s.Bars = append(s.Bars, svgBar{
			X: s.Left, Y: y, W: w, H: h, Value: b.Value,
			ValueAt: svgText{X: s.Left + w + 4, Y: mid, Anchor: "start"},
			Label:   svgText{X: s.Left - 6, Y: mid, Text: truncate(b.Label, maxHorizontalText), Anchor: "end"},
		})
	}
	for _, t := range ticks {
		x := s.Left + t*plotW/axisMax
		s.Ticks = append(s.Ticks, svgTick{
			X1: x, Y1: s.Top, X2: x, Y2: s.Bottom,
			Text: svgText{X: x, Y: s.Bottom + 16, Text: fmt.Sprint(t), Anchor: "middle"},
		})
	}
	s.CategoryLabel = svgText{X: 16, Y: (s.Top + s.Bottom) / 2, Text: c.CategoryLabel, Rotate: -90}
	s.ValueLabel = svgText{X: (s.Left + s.Right) / 2, Y: c.Size.Height - 12, Text: c.ValueLabel}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
