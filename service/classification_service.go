package service

import (
	"context"
	"sync"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
	"github.com/ieg-tools/projcodes/internal/engine"
)

// guardedDataset serializes access to one scheme's dataset
type guardedDataset struct {
	mu sync.Mutex
	ds *dataset.Dataset
}

// ClassificationServiceImpl implements domain.ClassificationService over one
// dataset per scheme. Schemes are independent and may be queried concurrently.
type ClassificationServiceImpl struct {
	datasets map[domain.Scheme]*guardedDataset
	loader   domain.DatasetLoader
	progress domain.ProgressManager
	executor domain.ParallelExecutor
}

// NewClassificationService creates a service with empty sector and theme datasets
func NewClassificationService(loader domain.DatasetLoader) *ClassificationServiceImpl {
	return &ClassificationServiceImpl{
		datasets: map[domain.Scheme]*guardedDataset{
			domain.SchemeSector: {ds: dataset.New(domain.SectorSchema)},
			domain.SchemeTheme:  {ds: dataset.New(domain.ThemeSchema)},
		},
		loader:   loader,
		progress: noopProgress{},
		executor: NewParallelExecutor(),
	}
}

// WithProgress reports loads to pm; the loader should report its phases to the same manager
func (s *ClassificationServiceImpl) WithProgress(pm domain.ProgressManager) *ClassificationServiceImpl {
	if pm != nil {
		s.progress = pm
	}
	return s
}

// WithExecutor replaces the executor used by LoadAll
func (s *ClassificationServiceImpl) WithExecutor(pe domain.ParallelExecutor) *ClassificationServiceImpl {
	if pe != nil {
		s.executor = pe
	}
	return s
}

func (s *ClassificationServiceImpl) dataset(scheme domain.Scheme) (*guardedDataset, error) {
	schema, err := domain.SchemaFor(scheme)
	if err != nil {
		return nil, err
	}
	return s.datasets[schema.Scheme], nil
}

// Load implements domain.ClassificationService
func (s *ClassificationServiceImpl) Load(ctx context.Context, scheme domain.Scheme) ([]domain.Notice, error) {
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ds.Loaded() {
		return g.ds.Load(ctx, s.loader)
	}
	s.progress.Initialize(LoadPhases)
	s.progress.Start("Loading " + g.ds.Schema().Label)
	notices, err := g.ds.Load(ctx, s.loader)
	s.progress.Complete(err == nil)
	return notices, err
}

// LoadAll implements domain.ClassificationService. With no schemes given,
// every scheme is loaded. Notices are returned in scheme order.
func (s *ClassificationServiceImpl) LoadAll(ctx context.Context, schemes ...domain.Scheme) ([]domain.Notice, error) {
	if len(schemes) == 0 {
		schemes = []domain.Scheme{domain.SchemeSector, domain.SchemeTheme}
	}

	targets := make([]*guardedDataset, 0, len(schemes))
	seen := make(map[*guardedDataset]struct{}, len(schemes))
	for _, scheme := range schemes {
		g, err := s.dataset(scheme)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		targets = append(targets, g)
	}

	pending := 0
	for _, g := range targets {
		g.mu.Lock()
		if !g.ds.Loaded() {
			pending++
		}
		g.mu.Unlock()
	}
	if pending > 0 {
		s.progress.Initialize(LoadPhases * pending)
		s.progress.Start("Loading classification data")
	}

	results := make([][]domain.Notice, len(targets))
	tasks := make([]domain.ExecutableTask, len(targets))
	for i, g := range targets {
		i, g := i, g
		tasks[i] = NewFuncTask(string(g.ds.Schema().Scheme), true, func(ctx context.Context) (interface{}, error) {
			g.mu.Lock()
			defer g.mu.Unlock()
			notices, err := g.ds.Load(ctx, s.loader)
			results[i] = notices
			return notices, err
		})
	}

	err := s.executor.Execute(ctx, tasks)
	if pending > 0 {
		s.progress.Complete(err == nil)
	}

	var notices []domain.Notice
	for _, r := range results {
		notices = append(notices, r...)
	}
	return notices, err
}

// Unload implements domain.ClassificationService
func (s *ClassificationServiceImpl) Unload(scheme domain.Scheme) []domain.Notice {
	g, err := s.dataset(scheme)
	if err != nil {
		return []domain.Notice{domain.WarningNotice(err.Error())}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ds.Unload()
}

// Info implements domain.ClassificationService
func (s *ClassificationServiceImpl) Info(scheme domain.Scheme) (*domain.DatasetInfo, error) {
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ds.Info(), nil
}

// Describe returns the one-line status of a scheme's dataset
func (s *ClassificationServiceImpl) Describe(scheme domain.Scheme) (string, error) {
	g, err := s.dataset(scheme)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ds.String(), nil
}

// Copy implements domain.ClassificationService
func (s *ClassificationServiceImpl) Copy(scheme domain.Scheme) (*domain.QueryResult, error) {
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.Copy(g.ds)
}

// FilterProjects implements domain.ClassificationService
func (s *ClassificationServiceImpl) FilterProjects(ctx context.Context, scheme domain.Scheme, q domain.ProjectQuery) (*domain.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.FilterProjects(g.ds, q)
}

// LookupCodes implements domain.ClassificationService
func (s *ClassificationServiceImpl) LookupCodes(ctx context.Context, scheme domain.Scheme, q domain.LookupQuery) (*domain.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.LookupCodes(g.ds, q)
}

// CountCodes implements domain.ClassificationService
func (s *ClassificationServiceImpl) CountCodes(ctx context.Context, scheme domain.Scheme, req domain.CountRequest) (*domain.CountResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.CountCodes(g.ds, req)
}

// DominantCodes implements domain.ClassificationService
func (s *ClassificationServiceImpl) DominantCodes(ctx context.Context, scheme domain.Scheme, req domain.DominantRequest) (*domain.DominantResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return engine.DominantCodes(g.ds, req)
}

// Last implements domain.ClassificationService. It is a state error when no
// query of the scheme has produced a non-empty result yet.
func (s *ClassificationServiceImpl) Last(scheme domain.Scheme) (*domain.QueryResult, error) {
	g, err := s.dataset(scheme)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if last := g.ds.Last(); last != nil {
		return last, nil
	}
	return nil, domain.NewStateError(engine.MsgNoOutput)
}
