package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ieg-tools/projcodes/app"
	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
	"github.com/ieg-tools/projcodes/internal/logging"
	"github.com/ieg-tools/projcodes/service"
)

// session wires one command invocation: configuration, logging and the use cases
type session struct {
	cfg       *config.Config
	scheme    domain.Scheme
	log       *zap.Logger
	progress  domain.ProgressManager
	formatter domain.ResultFormatter

	datasets *app.DatasetUseCase
	queries  *app.QueryUseCase
	saver    *app.SaveUseCase
	plotter  *app.PlotUseCase
}

// newSession loads configuration, applies explicitly set global flags and
// builds the use cases. Queries load their scheme on first use.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(globals.configPath)
	if err != nil {
		return nil, err
	}

	ft := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	cfg.Logging.Level = ft.MergeString(cfg.Logging.Level, globals.logLevel, "log-level")
	cfg.Logging.Format = ft.MergeString(cfg.Logging.Format, globals.logFormat, "log-format")
	if globals.quiet {
		cfg.Logging.Level = "warn"
	}

	schema, err := domain.SchemaFor(domain.Scheme(globals.scheme))
	if err != nil {
		return nil, err
	}

	log, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, domain.NewConfigError("invalid logging settings", err)
	}
	sink := logging.NewNoticeLogger(log)

	progress := service.NewProgressManager()
	progress.SetWriter(cmd.ErrOrStderr())
	if globals.quiet {
		progress = service.NewNoopProgressManager()
	}
	loader := service.NewWorkbookLoader(cfg.Source).WithProgress(progress)
	svc := service.NewClassificationService(loader).
		WithProgress(progress).
		WithExecutor(service.NewLoadExecutor(cfg.Source))

	formatter := service.NewOutputFormatter(service.NewTableReportWriter())
	writer := service.NewFileOutputWriter(sink)

	s := &session{
		cfg:       cfg,
		scheme:    schema.Scheme,
		log:       log,
		progress:  progress,
		formatter: formatter,
	}

	if s.datasets, err = app.NewDatasetUseCaseBuilder().
		WithService(svc).
		WithNoticeSink(sink).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create dataset use case: %w", err)
	}

	if s.queries, err = app.NewQueryUseCaseBuilder().
		WithService(svc).
		WithNoticeSink(sink).
		WithAutoLoad(true).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create query use case: %w", err)
	}

	if s.saver, err = app.NewSaveUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithWriter(writer).
		WithResolver(service.NewOutputFormatResolver(domain.OutputFormat(cfg.Output.Format))).
		WithNoticeSink(sink).
		WithDirectory(cfg.Output.Directory).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create save use case: %w", err)
	}

	if s.plotter, err = app.NewPlotUseCaseBuilder().
		WithService(svc).
		WithChartBuilder(service.NewChartBuilder()).
		WithRenderer(service.NewChartRenderer()).
		WithWriter(writer).
		WithResolver(service.NewOutputFormatResolver(domain.OutputFormat(cfg.Output.ChartFormat))).
		WithNoticeSink(sink).
		WithDirectory(cfg.Output.Directory).
		Build(); err != nil {
		return nil, fmt.Errorf("failed to create plot use case: %w", err)
	}

	return s, nil
}

// close flushes the logger and tears down the progress bar
func (s *session) close() {
	s.progress.Close()
	_ = s.log.Sync()
}

// print renders a result to w; a nil result prints nothing
func (s *session) print(w io.Writer, result domain.Tabular, format string) error {
	if isNilResult(result) {
		return nil
	}
	f, err := domain.ParseOutputFormat(format)
	if err != nil {
		return err
	}
	return s.formatter.Write(result, f, w)
}

func isNilResult(result domain.Tabular) bool {
	switch r := result.(type) {
	case nil:
		return true
	case *domain.QueryResult:
		return r == nil
	case *domain.CountResult:
		return r == nil
	case *domain.DominantResult:
		return r == nil
	default:
		return false
	}
}
