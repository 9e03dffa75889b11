package app

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ieg-tools/projcodes/domain"
)

// SaveRequest describes where a result is saved
type SaveRequest struct {
	// Name is the file name; empty selects the scheme's default report name
	Name string

	// Format overrides the format implied by Name
	Format string

	// Directory overrides the configured output directory
	Directory string
}

// SaveUseCase writes results to report files
type SaveUseCase struct {
	service   domain.ClassificationService
	formatter domain.ResultFormatter
	writer    domain.ReportWriter
	resolver  domain.FormatResolver
	sink      domain.NoticeSink
	directory string
}

// Save writes a result and returns the written path. A missing or empty
// result and an unwritable target are reported as notices.
func (uc *SaveUseCase) Save(result domain.Tabular, req SaveRequest) (string, []domain.Notice, error) {
	if isEmpty(result) {
		return "", publish(uc.sink, []domain.Notice{domain.WarningNotice(domain.MsgNoOutput)}), nil
	}

	name := req.Name
	if name == "" {
		name = defaultReportName(result)
	}
	format, name, err := uc.resolver.Determine(req.Format, name)
	if err != nil {
		return "", nil, err
	}
	dir := req.Directory
	if dir == "" {
		dir = uc.directory
	}
	path := filepath.Join(dir, name)

	err = uc.writer.Write(nil, path, format, true, func(w io.Writer) error {
		return uc.formatter.Write(result, format, w)
	})
	if err != nil {
		notices, err := soften(nil, err)
		return "", publish(uc.sink, notices), err
	}
	return path, publish(uc.sink, []domain.Notice{domain.InfoNotice(domain.MsgOutputSaved)}), nil
}

// SaveLast saves the most recent projects or codes result of a scheme
func (uc *SaveUseCase) SaveLast(scheme domain.Scheme, req SaveRequest) (string, []domain.Notice, error) {
	if uc.service == nil {
		return "", nil, fmt.Errorf("classification service is required to save the last result")
	}
	last, err := uc.service.Last(scheme)
	if err != nil {
		notices, err := soften(nil, err)
		return "", publish(uc.sink, notices), err
	}
	return uc.Save(last, req)
}

func isEmpty(result domain.Tabular) bool {
	switch r := result.(type) {
	case nil:
		return true
	case *domain.QueryResult:
		return r.Empty()
	case *domain.CountResult:
		return r == nil || len(r.Counts) == 0
	case *domain.DominantResult:
		return r == nil || len(r.Projects) == 0
	default:
		return len(r.Table().Rows) == 0
	}
}

// defaultReportName names a report after its scheme and the query behind it
func defaultReportName(result domain.Tabular) string {
	var scheme domain.Scheme
	suffix := ""
	switch r := result.(type) {
	case *domain.QueryResult:
		scheme = r.Scheme
	case *domain.CountResult:
		scheme, suffix = r.Scheme, "_code_counts"
	case *domain.DominantResult:
		scheme, suffix = r.Scheme, "_dominant_codes"
	}
	schema, err := domain.SchemaFor(scheme)
	if err != nil {
		return "extract" + suffix
	}
	return schema.ReportName + suffix
}

// SaveUseCaseBuilder provides a builder pattern for creating SaveUseCase
type SaveUseCaseBuilder struct {
	service   domain.ClassificationService
	formatter domain.ResultFormatter
	writer    domain.ReportWriter
	resolver  domain.FormatResolver
	sink      domain.NoticeSink
	directory string
}

// NewSaveUseCaseBuilder creates a new builder
func NewSaveUseCaseBuilder() *SaveUseCaseBuilder {
	return &SaveUseCaseBuilder{}
}

// WithService sets the classification service used by SaveLast
func (b *SaveUseCaseBuilder) WithService(service domain.ClassificationService) *SaveUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the result formatter
func (b *SaveUseCaseBuilder) WithFormatter(formatter domain.ResultFormatter) *SaveUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithWriter sets the report writer
func (b *SaveUseCaseBuilder) WithWriter(writer domain.ReportWriter) *SaveUseCaseBuilder {
	b.writer = writer
	return b
}

// WithResolver sets the format resolver
func (b *SaveUseCaseBuilder) WithResolver(resolver domain.FormatResolver) *SaveUseCaseBuilder {
	b.resolver = resolver
	return b
}

// WithNoticeSink sets where notices are forwarded
func (b *SaveUseCaseBuilder) WithNoticeSink(sink domain.NoticeSink) *SaveUseCaseBuilder {
	b.sink = sink
	return b
}

// WithDirectory sets the default output directory
func (b *SaveUseCaseBuilder) WithDirectory(dir string) *SaveUseCaseBuilder {
	b.directory = dir
	return b
}

// Build creates the SaveUseCase
func (b *SaveUseCaseBuilder) Build() (*SaveUseCase, error) {
	if b.formatter == nil {
		return nil, fmt.Errorf("result formatter is required")
	}
	if b.writer == nil {
		return nil, fmt.Errorf("report writer is required")
	}
	if b.resolver == nil {
		return nil, fmt.Errorf("format resolver is required")
	}
	return &SaveUseCase{
		service:   b.service,
		formatter: b.formatter,
		writer:    b.writer,
		resolver:  b.resolver,
		sink:      b.sink,
		directory: b.directory,
	}, nil
}
