package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ieg-tools/projcodes/domain"
)

// PlotRequest describes a chart and where it goes
type PlotRequest struct {
	// GroupBy is the grouping key of a projects or codes chart
	GroupBy string

	// Name is the file name; empty selects a default such as Sectors_by_GP
	Name string

	// Format is html for a file or text for the terminal; empty uses the default
	Format string

	// Directory overrides the configured output directory
	Directory string

	// NoOpen keeps HTML charts from being opened in a browser
	NoOpen bool

	// Terminal receives text charts
	Terminal io.Writer
}

// PlotUseCase renders result charts
type PlotUseCase struct {
	service   domain.ClassificationService
	charts    domain.ChartBuilder
	renderer  domain.ChartSink
	writer    domain.ReportWriter
	resolver  domain.FormatResolver
	sink      domain.NoticeSink
	directory string
}

// Plot charts the distinct projects of a result per grouping value and
// returns the written path, or "" for terminal output
func (uc *PlotUseCase) Plot(result *domain.QueryResult, req PlotRequest) (string, []domain.Notice, error) {
	if result.Empty() {
		return "", publish(uc.sink, []domain.Notice{domain.WarningNotice(domain.MsgNoPlot)}), nil
	}
	schema, err := domain.SchemaFor(result.Scheme)
	if err != nil {
		return "", nil, err
	}
	key, err := domain.ParseGroupKey(req.GroupBy, schema.Scheme)
	if err != nil {
		return "", nil, err
	}
	chart, err := uc.charts.GroupChart(result, string(key))
	return uc.draw(chart, err, schema.ChartPrefix+"_by_"+key.Slug(), req)
}

// PlotCount charts how many projects carry each number of codes
func (uc *PlotUseCase) PlotCount(result *domain.CountResult, req PlotRequest) (string, []domain.Notice, error) {
	if result == nil || len(result.Counts) == 0 {
		return "", publish(uc.sink, []domain.Notice{domain.WarningNotice(domain.MsgNoPlot)}), nil
	}
	chart, err := uc.charts.CountChart(result)
	return uc.draw(chart, err, chartPrefix(result.Scheme)+"_by_Count", req)
}

// PlotDominant charts how many projects have each dominant code
func (uc *PlotUseCase) PlotDominant(result *domain.DominantResult, req PlotRequest) (string, []domain.Notice, error) {
	if result == nil || len(result.Projects) == 0 {
		return "", publish(uc.sink, []domain.Notice{domain.WarningNotice(domain.MsgNoPlot)}), nil
	}
	chart, err := uc.charts.DominantChart(result)
	return uc.draw(chart, err, chartPrefix(result.Scheme)+"_by_Dominant", req)
}

// PlotLast charts the most recent projects or codes result of a scheme
func (uc *PlotUseCase) PlotLast(scheme domain.Scheme, req PlotRequest) (string, []domain.Notice, error) {
	if uc.service == nil {
		return "", nil, fmt.Errorf("classification service is required to plot the last result")
	}
	last, err := uc.service.Last(scheme)
	if err != nil {
		if domain.HasCode(err, domain.ErrCodeState) {
			return "", publish(uc.sink, []domain.Notice{domain.WarningNotice(domain.MsgNoPlot)}), nil
		}
		return "", nil, err
	}
	return uc.Plot(last, req)
}

func (uc *PlotUseCase) draw(chart *domain.Chart, err error, defaultName string, req PlotRequest) (string, []domain.Notice, error) {
	if err != nil {
		notices, err := soften(nil, err)
		return "", publish(uc.sink, notices), err
	}
	notices := append([]domain.Notice(nil), chart.Notices...)

	name := req.Name
	if name == "" {
		name = defaultName
	}
	format, name, err := uc.resolver.Determine(req.Format, name)
	if err != nil {
		return "", publish(uc.sink, notices), err
	}
	render := func(w io.Writer) error { return uc.renderer.Render(w, chart, format) }

	if format == domain.OutputFormatText {
		out := req.Terminal
		if out == nil {
			out = os.Stdout
		}
		if err := uc.writer.Write(out, "", format, true, render); err != nil {
			return "", publish(uc.sink, notices), err
		}
		return "", publish(uc.sink, notices), nil
	}

	dir := req.Directory
	if dir == "" {
		dir = uc.directory
	}
	path := filepath.Join(dir, name)
	if err := uc.writer.Write(nil, path, format, req.NoOpen, render); err != nil {
		notices, err = soften(notices, err)
		return "", publish(uc.sink, notices), err
	}
	notices = append(notices, domain.InfoNotice(domain.MsgPlotSaved))
	return path, publish(uc.sink, notices), nil
}

func chartPrefix(scheme domain.Scheme) string {
	schema, err := domain.SchemaFor(scheme)
	if err != nil {
		return "Chart"
	}
	return schema.ChartPrefix
}

// PlotUseCaseBuilder provides a builder pattern for creating PlotUseCase
type PlotUseCaseBuilder struct {
	service   domain.ClassificationService
	charts    domain.ChartBuilder
	renderer  domain.ChartSink
	writer    domain.ReportWriter
	resolver  domain.FormatResolver
	sink      domain.NoticeSink
	directory string
}

// NewPlotUseCaseBuilder creates a new builder
func NewPlotUseCaseBuilder() *PlotUseCaseBuilder {
	return &PlotUseCaseBuilder{}
}

// WithService sets the classification service used by PlotLast
func (b *PlotUseCaseBuilder) WithService(service domain.ClassificationService) *PlotUseCaseBuilder {
	b.service = service
	return b
}

// WithChartBuilder sets the chart builder
func (b *PlotUseCaseBuilder) WithChartBuilder(charts domain.ChartBuilder) *PlotUseCaseBuilder {
	b.charts = charts
	return b
}

// WithRenderer sets the chart sink
func (b *PlotUseCaseBuilder) WithRenderer(renderer domain.ChartSink) *PlotUseCaseBuilder {
	b.renderer = renderer
	return b
}

// WithWriter sets the report writer
func (b *PlotUseCaseBuilder) WithWriter(writer domain.ReportWriter) *PlotUseCaseBuilder {
	b.writer = writer
	return b
}

// WithResolver sets the format resolver
func (b *PlotUseCaseBuilder) WithResolver(resolver domain.FormatResolver) *PlotUseCaseBuilder {
	b.resolver = resolver
	return b
}

// WithNoticeSink sets where notices are forwarded
func (b *PlotUseCaseBuilder) WithNoticeSink(sink domain.NoticeSink) *PlotUseCaseBuilder {
	b.sink = sink
	return b
}

// WithDirectory sets the default output directory
func (b *PlotUseCaseBuilder) WithDirectory(dir string) *PlotUseCaseBuilder {
	b.directory = dir
	return b
}

// Build creates the PlotUseCase
func (b *PlotUseCaseBuilder) Build() (*PlotUseCase, error) {
	if b.charts == nil {
		return nil, fmt.Errorf("chart builder is required")
	}
	if b.renderer == nil {
		return nil, fmt.Errorf("chart renderer is required")
	}
	if b.writer == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	if b.resolver == nil {
		return nil, fmt.Errorf("format resolver is required")
	}
	return &PlotUseCase{
		service:   b.service,
		charts:    b.charts,
		renderer:  b.renderer,
		writer:    b.writer,
		resolver:  b.resolver,
		sink:      b.sink,
		directory: b.directory,
	}, nil
}
