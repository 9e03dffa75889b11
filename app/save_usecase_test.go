package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ieg-tools/projcodes/domain"
)

type saveMocks struct {
	service   *mockClassificationService
	formatter *mockResultFormatter
	writer    *mockReportWriter
	resolver  *mockFormatResolver
	sink      *noticeRecorder
}

func setupSaveUseCase(t *testing.T) (*SaveUseCase, *saveMocks) {
	t.Helper()
	m := &saveMocks{
		service:   &mockClassificationService{},
		formatter: &mockResultFormatter{},
		writer:    &mockReportWriter{},
		resolver:  &mockFormatResolver{},
		sink:      &noticeRecorder{},
	}
	uc, err := NewSaveUseCaseBuilder().
		WithService(m.service).
		WithFormatter(m.formatter).
		WithWriter(m.writer).
		WithResolver(m.resolver).
		WithNoticeSink(m.sink).
		WithDirectory("out").
		Build()
	require.NoError(t, err)
	return uc, m
}

func TestSaveUseCaseBuilder_RequiresCollaborators(t *testing.T) {
	_, err := NewSaveUseCaseBuilder().Build()
	assert.Error(t, err)
	_, err = NewSaveUseCaseBuilder().WithFormatter(&mockResultFormatter{}).WithWriter(&mockReportWriter{}).Build()
	assert.Error(t, err)
}

func TestSaveUseCase_DefaultName(t *testing.T) {
	uc, m := setupSaveUseCase(t)
	res := sectorResult("P1", "P2")
	path := filepath.Join("out", "Sector_extract.xlsx")

	m.resolver.On("Determine", "", "Sector_extract").Return(domain.OutputFormatXLSX, "Sector_extract.xlsx", nil)
	m.writer.On("Write", nil, path, domain.OutputFormatXLSX, true).Return(nil)
	m.formatter.On("Write", res, domain.OutputFormatXLSX, mock.Anything).Return(nil)

	got, notices, err := uc.Save(res, SaveRequest{})
	require.NoError(t, err)
	assert.Equal(t, path, got)
	require.Len(t, notices, 1)
	assert.Equal(t, domain.MsgOutputSaved, notices[0].Message)
	assert.Equal(t, []string{domain.MsgOutputSaved}, m.sink.messages())
	m.formatter.AssertExpectations(t)
}

func TestSaveUseCase_AggregateNames(t *testing.T) {
	tests := []struct {
		result domain.Tabular
		want   string
	}{
		{&domain.CountResult{Scheme: domain.SchemeTheme, Counts: []domain.CodeCount{{ProjectID: "P1", Count: 1}}}, "Themes_extract_code_counts"},
		{&domain.DominantResult{Scheme: domain.SchemeSector, Projects: []domain.DominantCode{{ProjectID: "P1", Code: "A"}}}, "Sector_extract_dominant_codes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, defaultReportName(tt.result))
	}
}

func TestSaveUseCase_EmptyResult(t *testing.T) {
	uc, m := setupSaveUseCase(t)

	var typedNil *domain.QueryResult
	for _, result := range []domain.Tabular{nil, typedNil, sectorResult(), &domain.CountResult{}} {
		path, notices, err := uc.Save(result, SaveRequest{})
		require.NoError(t, err)
		assert.Empty(t, path)
		require.Len(t, notices, 1)
		assert.Equal(t, domain.MsgNoOutput, notices[0].Message)
	}
	m.writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveUseCase_LockedFile(t *testing.T) {
	uc, m := setupSaveUseCase(t)
	res := sectorResult("P1")
	locked := domain.NewResourceError("out/report.xlsx cannot be written; close it in any other application and retry", errors.New("permission denied"))

	m.resolver.On("Determine", "xlsx", "report").Return(domain.OutputFormatXLSX, "report.xlsx", nil)
	m.writer.On("Write", nil, mock.Anything, domain.OutputFormatXLSX, true).Return(locked)

	path, notices, err := uc.Save(res, SaveRequest{Name: "report", Format: "xlsx"})
	require.NoError(t, err)
	assert.Empty(t, path)
	require.Len(t, notices, 1)
	assert.Equal(t, domain.NoticeWarning, notices[0].Level)
	assert.Contains(t, notices[0].Message, "permission denied")
}

func TestSaveUseCase_UnsupportedFormat(t *testing.T) {
	uc, m := setupSaveUseCase(t)
	m.resolver.On("Determine", "pdf", "Sector_extract").Return(domain.OutputFormat(""), "", domain.NewUnsupportedFormatError("pdf"))

	_, _, err := uc.Save(sectorResult("P1"), SaveRequest{Format: "pdf"})
	assert.True(t, domain.HasCode(err, domain.ErrCodeUnsupportedFormat))
}

func TestSaveUseCase_SaveLastWithoutResult(t *testing.T) {
	uc, m := setupSaveUseCase(t)
	m.service.On("Last", domain.SchemeSector).Return(nil, domain.NewStateError(domain.MsgNoOutput))

	path, notices, err := uc.SaveLast(domain.SchemeSector, SaveRequest{})
	require.NoError(t, err)
	assert.Empty(t, path)
	require.Len(t, notices, 1)
	assert.Equal(t, domain.MsgNoOutput, notices[0].Message)
}

func TestSaveUseCase_Directory(t *testing.T) {
	uc, m := setupSaveUseCase(t)
	res := sectorResult("P1")
	m.resolver.On("Determine", "", "x.csv").Return(domain.OutputFormatCSV, "x.csv", nil)
	m.writer.On("Write", nil, filepath.Join("elsewhere", "x.csv"), domain.OutputFormatCSV, true).Return(nil)
	m.formatter.On("Write", res, domain.OutputFormatCSV, mock.Anything).Return(nil)

	path, _, err := uc.Save(res, SaveRequest{Name: "x.csv", Directory: "elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("elsewhere", "x.csv"), path)
}
