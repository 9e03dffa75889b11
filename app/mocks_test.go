package app

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ieg-tools/projcodes/domain"
)

type mockClassificationService struct {
	mock.Mock
}

func (m *mockClassificationService) Load(ctx context.Context, scheme domain.Scheme) ([]domain.Notice, error) {
	args := m.Called(ctx, scheme)
	notices, _ := args.Get(0).([]domain.Notice)
	return notices, args.Error(1)
}

func (m *mockClassificationService) LoadAll(ctx context.Context, schemes ...domain.Scheme) ([]domain.Notice, error) {
	args := m.Called(ctx, schemes)
	notices, _ := args.Get(0).([]domain.Notice)
	return notices, args.Error(1)
}

func (m *mockClassificationService) Unload(scheme domain.Scheme) []domain.Notice {
	args := m.Called(scheme)
	notices, _ := args.Get(0).([]domain.Notice)
	return notices
}

func (m *mockClassificationService) Info(scheme domain.Scheme) (*domain.DatasetInfo, error) {
	args := m.Called(scheme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DatasetInfo), args.Error(1)
}

func (m *mockClassificationService) Describe(scheme domain.Scheme) (string, error) {
	args := m.Called(scheme)
	return args.String(0), args.Error(1)
}

func (m *mockClassificationService) Copy(scheme domain.Scheme) (*domain.QueryResult, error) {
	args := m.Called(scheme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func (m *mockClassificationService) FilterProjects(ctx context.Context, scheme domain.Scheme, q domain.ProjectQuery) (*domain.QueryResult, error) {
	args := m.Called(ctx, scheme, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func (m *mockClassificationService) LookupCodes(ctx context.Context, scheme domain.Scheme, q domain.LookupQuery) (*domain.QueryResult, error) {
	args := m.Called(ctx, scheme, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func (m *mockClassificationService) CountCodes(ctx context.Context, scheme domain.Scheme, req domain.CountRequest) (*domain.CountResult, error) {
	args := m.Called(ctx, scheme, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CountResult), args.Error(1)
}

func (m *mockClassificationService) DominantCodes(ctx context.Context, scheme domain.Scheme, req domain.DominantRequest) (*domain.DominantResult, error) {
	args := m.Called(ctx, scheme, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DominantResult), args.Error(1)
}

func (m *mockClassificationService) Last(scheme domain.Scheme) (*domain.QueryResult, error) {
	args := m.Called(scheme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

type mockResultFormatter struct {
	mock.Mock
}

func (m *mockResultFormatter) Write(result domain.Tabular, format domain.OutputFormat, w io.Writer) error {
	args := m.Called(result, format, w)
	return args.Error(0)
}

func (m *mockResultFormatter) WriteInfo(info *domain.DatasetInfo, format domain.OutputFormat, w io.Writer) error {
	args := m.Called(info, format, w)
	return args.Error(0)
}

// mockReportWriter runs writeFunc against a discard writer unless told to fail
type mockReportWriter struct {
	mock.Mock
}

func (m *mockReportWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, noOpen bool, writeFunc func(io.Writer) error) error {
	args := m.Called(writer, outputPath, format, noOpen)
	if err := args.Error(0); err != nil {
		return err
	}
	if writer == nil {
		writer = io.Discard
	}
	return writeFunc(writer)
}

type mockFormatResolver struct {
	mock.Mock
}

func (m *mockFormatResolver) Determine(name, path string) (domain.OutputFormat, string, error) {
	args := m.Called(name, path)
	return args.Get(0).(domain.OutputFormat), args.String(1), args.Error(2)
}

type mockChartBuilder struct {
	mock.Mock
}

func (m *mockChartBuilder) GroupChart(result *domain.QueryResult, groupBy string) (*domain.Chart, error) {
	args := m.Called(result, groupBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chart), args.Error(1)
}

func (m *mockChartBuilder) CountChart(result *domain.CountResult) (*domain.Chart, error) {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chart), args.Error(1)
}

func (m *mockChartBuilder) DominantChart(result *domain.DominantResult) (*domain.Chart, error) {
	args := m.Called(result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chart), args.Error(1)
}

type mockChartSink struct {
	mock.Mock
}

func (m *mockChartSink) Render(w io.Writer, chart *domain.Chart, format domain.OutputFormat) error {
	args := m.Called(w, chart, format)
	return args.Error(0)
}

type noticeRecorder struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (r *noticeRecorder) Notify(n domain.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Message)
	}
	return out
}

func sectorResult(ids ...string) *domain.QueryResult {
	res := &domain.QueryResult{
		Scheme:    domain.SchemeSector,
		Operation: domain.OperationProjects,
	}
	for _, id := range ids {
		res.Rows = append(res.Rows, domain.ClassificationRow{ProjectID: id, Code: "A"})
	}
	res.Projects = len(ids)
	return res
}
