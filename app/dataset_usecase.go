package app

import (
	"context"
	"fmt"

	"github.com/ieg-tools/projcodes/domain"
)

// DatasetUseCase manages the lifecycle of the classification datasets
type DatasetUseCase struct {
	service domain.ClassificationService
	sink    domain.NoticeSink
}

// Load populates one scheme
func (uc *DatasetUseCase) Load(ctx context.Context, scheme domain.Scheme) ([]domain.Notice, error) {
	notices, err := uc.service.Load(ctx, scheme)
	notices, err = soften(notices, err)
	return publish(uc.sink, notices), err
}

// LoadAll populates several schemes side by side; no schemes means all of them
func (uc *DatasetUseCase) LoadAll(ctx context.Context, schemes ...domain.Scheme) ([]domain.Notice, error) {
	notices, err := uc.service.LoadAll(ctx, schemes...)
	notices, err = soften(notices, err)
	return publish(uc.sink, notices), err
}

// Unload clears one scheme
func (uc *DatasetUseCase) Unload(scheme domain.Scheme) []domain.Notice {
	return publish(uc.sink, uc.service.Unload(scheme))
}

// Info summarizes one scheme
func (uc *DatasetUseCase) Info(scheme domain.Scheme) (*domain.DatasetInfo, error) {
	return uc.service.Info(scheme)
}

// Describe returns the one-line status of a scheme
func (uc *DatasetUseCase) Describe(scheme domain.Scheme) (string, error) {
	return uc.service.Describe(scheme)
}

// Copy returns every loaded row of a scheme. An unloaded scheme yields a
// notice and a nil result.
func (uc *DatasetUseCase) Copy(scheme domain.Scheme) (*domain.QueryResult, []domain.Notice, error) {
	res, err := uc.service.Copy(scheme)
	if err != nil {
		notices, err := soften(nil, err)
		return nil, publish(uc.sink, notices), err
	}
	return res, publish(uc.sink, res.Notices), nil
}

// DatasetUseCaseBuilder provides a builder pattern for creating DatasetUseCase
type DatasetUseCaseBuilder struct {
	service domain.ClassificationService
	sink    domain.NoticeSink
}

// NewDatasetUseCaseBuilder creates a new builder
func NewDatasetUseCaseBuilder() *DatasetUseCaseBuilder {
	return &DatasetUseCaseBuilder{}
}

// WithService sets the classification service
func (b *DatasetUseCaseBuilder) WithService(service domain.ClassificationService) *DatasetUseCaseBuilder {
	b.service = service
	return b
}

// WithNoticeSink sets where notices are forwarded
func (b *DatasetUseCaseBuilder) WithNoticeSink(sink domain.NoticeSink) *DatasetUseCaseBuilder {
	b.sink = sink
	return b
}

// Build creates the DatasetUseCase
func (b *DatasetUseCaseBuilder) Build() (*DatasetUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("classification service is required")
	}
	return &DatasetUseCase{service: b.service, sink: b.sink}, nil
}
