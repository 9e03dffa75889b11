package mcp

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ieg-tools/projcodes/app"
	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
	"github.com/ieg-tools/projcodes/internal/logging"
	"github.com/ieg-tools/projcodes/service"
)

// Dependencies aggregates the session shared by MCP handlers: one
// classification service, the use cases over it and the result registry.
type Dependencies struct {
	config    *config.Config
	log       *zap.Logger
	formatter domain.ResultFormatter
	results   *ResultRegistry

	datasets *app.DatasetUseCase
	queries  *app.QueryUseCase
	saver    *app.SaveUseCase
	plotter  *app.PlotUseCase
}

// NewDependencies constructs the session from a configuration. A nil
// configuration uses the defaults and a nil logger discards notices.
func NewDependencies(cfg *config.Config, log *zap.Logger) (*Dependencies, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	sink := logging.NewNoticeLogger(log)

	// stdout carries JSON-RPC; progress bars are never drawn
	progress := service.NewNoopProgressManager()
	loader := service.NewWorkbookLoader(cfg.Source).WithProgress(progress)
	svc := service.NewClassificationService(loader).
		WithProgress(progress).
		WithExecutor(service.NewLoadExecutor(cfg.Source))
	return newDependencies(cfg, log, svc, sink)
}

func newDependencies(cfg *config.Config, log *zap.Logger, svc domain.ClassificationService, sink domain.NoticeSink) (*Dependencies, error) {
	formatter := service.NewOutputFormatter(service.NewTableReportWriter())
	writer := service.NewFileOutputWriter(sink)

	d := &Dependencies{
		config:    cfg,
		log:       log,
		formatter: formatter,
		results:   NewResultRegistry(DefaultRegistrySize),
	}

	var err error
	if d.datasets, err = app.NewDatasetUseCaseBuilder().
		WithService(svc).
		WithNoticeSink(sink).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create dataset use case: %w", err)
	}
	if d.queries, err = app.NewQueryUseCaseBuilder().
		WithService(svc).
		WithNoticeSink(sink).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create query use case: %w", err)
	}
	if d.saver, err = app.NewSaveUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithWriter(writer).
		WithResolver(service.NewOutputFormatResolver(domain.OutputFormat(cfg.Output.Format))).
		WithNoticeSink(sink).
		WithDirectory(cfg.Output.Directory).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create save use case: %w", err)
	}
	if d.plotter, err = app.NewPlotUseCaseBuilder().
		WithService(svc).
		WithChartBuilder(service.NewChartBuilder()).
		WithRenderer(service.NewChartRenderer()).
		WithWriter(writer).
		WithResolver(service.NewOutputFormatResolver(domain.OutputFormatHTML)).
		WithNoticeSink(sink).
		WithDirectory(cfg.Output.Directory).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create plot use case: %w", err)
	}
	return d, nil
}

// Config exposes the loaded configuration snapshot.
func (d *Dependencies) Config() *config.Config {
	return d.config
}

// Results exposes the session's result registry.
func (d *Dependencies) Results() *ResultRegistry {
	return d.results
}
