package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieg-tools/projcodes/domain"
)

func sampleChart(orientation domain.Orientation) *domain.Chart {
	bars := []domain.Bar{{Label: "Water", Value: 1}, {Label: "Energy", Value: 4}}
	return &domain.Chart{
		Title:         "Project count, by Global Practice",
		CategoryLabel: "Global Practice",
		ValueLabel:    "Number of projects",
		Orientation:   orientation,
		Bars:          bars,
		Size:          domain.SizeForCategories(len(bars)),
		Notices:       []domain.Notice{domain.WarningNotice("WARNING! 1 project(s) with missing GP data got excluded from the plot.")},
	}
}

func TestChartRenderer_Terminal(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChartRenderer().Render(&buf, sampleChart(domain.OrientationHorizontal), domain.OutputFormatText))

	out := buf.String()
	assert.Contains(t, out, "Project count, by Global Practice")
	var energy, water string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "Energy"):
			energy = line
		case strings.Contains(line, "Water"):
			water = line
		}
	}
	assert.Equal(t, terminalBarWidth, strings.Count(energy, "█"))
	assert.Equal(t, terminalBarWidth/4, strings.Count(water, "█"))
	assert.True(t, strings.HasSuffix(energy, " 4"))
}

func TestChartRenderer_HTML(t *testing.T) {
	for _, o := range []domain.Orientation{domain.OrientationHorizontal, domain.OrientationVertical} {
		t.Run(string(o), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewChartRenderer().Render(&buf, sampleChart(o), domain.OutputFormatHTML))

			out := buf.String()
			assert.Contains(t, out, "<svg")
			assert.Equal(t, 2, strings.Count(out, `<rect class="bar"`))
			assert.Contains(t, out, "<title>Energy: 4</title>")
			assert.Contains(t, out, "missing GP data")
		})
	}
}

func TestLayoutSVG(t *testing.T) {
	chart := sampleChart(domain.OrientationHorizontal)
	s := layoutSVG(chart)
	require.Len(t, s.Bars, 2)
	assert.Greater(t, s.Bars[1].W, s.Bars[0].W)
	assert.Equal(t, s.Left, s.Bars[0].X)
	assert.LessOrEqual(t, s.Left+s.Bars[1].W, s.Right)

	chart.Orientation = domain.OrientationVertical
	s = layoutSVG(chart)
	assert.Greater(t, s.Bars[1].H, s.Bars[0].H)
	assert.Equal(t, s.Bottom, s.Bars[1].Y+s.Bars[1].H)
	assert.Equal(t, -45, s.Bars[0].Label.Rotate)
}

func TestChartRenderer_DataAndErrors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChartRenderer().Render(&buf, sampleChart(domain.OrientationVertical), domain.OutputFormatJSON))
	var decoded domain.Chart
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.Bars, 2)

	err := NewChartRenderer().Render(&buf, sampleChart(domain.OrientationVertical), domain.OutputFormatXLSX)
	assert.True(t, domain.HasCode(err, domain.ErrCodeUnsupportedFormat))

	err = NewChartRenderer().Render(&buf, nil, domain.OutputFormatHTML)
	assert.True(t, domain.IsSoft(err))
}
