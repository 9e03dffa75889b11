package app

import (
	"context"
	"fmt"

	"github.com/ieg-tools/projcodes/domain"
)

// QueryUseCase runs filter, lookup and aggregation queries. Every method
// returns the result, the notices produced on the way, and an error only for
// hard failures; workflow failures leave a nil result and a warning notice.
type QueryUseCase struct {
	service  domain.ClassificationService
	sink     domain.NoticeSink
	autoLoad bool
}

// ensureLoaded loads the scheme on first use when auto-loading is enabled
func (uc *QueryUseCase) ensureLoaded(ctx context.Context, scheme domain.Scheme) ([]domain.Notice, error) {
	if !uc.autoLoad {
		return nil, nil
	}
	info, err := uc.service.Info(scheme)
	if err != nil {
		return nil, err
	}
	if info.Loaded {
		return nil, nil
	}
	return uc.service.Load(ctx, scheme)
}

// Projects filters projects by code and auxiliary criteria
func (uc *QueryUseCase) Projects(ctx context.Context, scheme domain.Scheme, q domain.ProjectQuery) (*domain.QueryResult, []domain.Notice, error) {
	notices, err := uc.ensureLoaded(ctx, scheme)
	if err != nil {
		return uc.fail(notices, err)
	}
	res, err := uc.service.FilterProjects(ctx, scheme, q)
	if err != nil {
		return uc.fail(notices, err)
	}
	return res, publish(uc.sink, append(notices, res.Notices...)), nil
}

// Codes looks up every code row of the requested projects
func (uc *QueryUseCase) Codes(ctx context.Context, scheme domain.Scheme, q domain.LookupQuery) (*domain.QueryResult, []domain.Notice, error) {
	notices, err := uc.ensureLoaded(ctx, scheme)
	if err != nil {
		return uc.fail(notices, err)
	}
	res, err := uc.service.LookupCodes(ctx, scheme, q)
	if err != nil {
		return uc.fail(notices, err)
	}
	return res, publish(uc.sink, append(notices, res.Notices...)), nil
}

// Count counts the distinct codes of each requested project
func (uc *QueryUseCase) Count(ctx context.Context, scheme domain.Scheme, req domain.CountRequest) (*domain.CountResult, []domain.Notice, error) {
	notices, err := uc.ensureLoaded(ctx, scheme)
	if err == nil {
		var res *domain.CountResult
		if res, err = uc.service.CountCodes(ctx, scheme, req); err == nil {
			return res, publish(uc.sink, append(notices, res.Notices...)), nil
		}
	}
	notices, err = soften(notices, err)
	return nil, publish(uc.sink, notices), err
}

// Dominant resolves the dominant code of each requested project
func (uc *QueryUseCase) Dominant(ctx context.Context, scheme domain.Scheme, req domain.DominantRequest) (*domain.DominantResult, []domain.Notice, error) {
	notices, err := uc.ensureLoaded(ctx, scheme)
	if err == nil {
		var res *domain.DominantResult
		if res, err = uc.service.DominantCodes(ctx, scheme, req); err == nil {
			return res, publish(uc.sink, append(notices, res.Notices...)), nil
		}
	}
	notices, err = soften(notices, err)
	return nil, publish(uc.sink, notices), err
}

// Last returns the most recent non-empty projects or codes result of a scheme
func (uc *QueryUseCase) Last(scheme domain.Scheme) (*domain.QueryResult, []domain.Notice, error) {
	res, err := uc.service.Last(scheme)
	if err != nil {
		return uc.fail(nil, err)
	}
	return res, nil, nil
}

func (uc *QueryUseCase) fail(notices []domain.Notice, err error) (*domain.QueryResult, []domain.Notice, error) {
	notices, err = soften(notices, err)
	return nil, publish(uc.sink, notices), err
}

// QueryUseCaseBuilder provides a builder pattern for creating QueryUseCase
type QueryUseCaseBuilder struct {
	service  domain.ClassificationService
	sink     domain.NoticeSink
	autoLoad bool
}

// NewQueryUseCaseBuilder creates a new builder
func NewQueryUseCaseBuilder() *QueryUseCaseBuilder {
	return &QueryUseCaseBuilder{}
}

// WithService sets the classification service
func (b *QueryUseCaseBuilder) WithService(service domain.ClassificationService) *QueryUseCaseBuilder {
	b.service = service
	return b
}

// WithNoticeSink sets where notices are forwarded
func (b *QueryUseCaseBuilder) WithNoticeSink(sink domain.NoticeSink) *QueryUseCaseBuilder {
	b.sink = sink
	return b
}

// WithAutoLoad makes queries load their scheme on first use
func (b *QueryUseCaseBuilder) WithAutoLoad(autoLoad bool) *QueryUseCaseBuilder {
	b.autoLoad = autoLoad
	return b
}

// Build creates the QueryUseCase
func (b *QueryUseCaseBuilder) Build() (*QueryUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("classification service is required")
	}
	return &QueryUseCase{service: b.service, sink: b.sink, autoLoad: b.autoLoad}, nil
}
