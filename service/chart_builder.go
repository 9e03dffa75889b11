package service

import (
	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/engine"
)

// ChartBuilderImpl implements domain.ChartBuilder on the query engine
type ChartBuilderImpl struct{}

// NewChartBuilder creates a chart builder
func NewChartBuilder() *ChartBuilderImpl {
	return &ChartBuilderImpl{}
}

// GroupChart implements domain.ChartBuilder
func (b *ChartBuilderImpl) GroupChart(result *domain.QueryResult, groupBy string) (*domain.Chart, error) {
	if result.Empty() {
		return nil, domain.NewStateError(engine.MsgNoPlot)
	}
	schema, err := domain.SchemaFor(result.Scheme)
	if err != nil {
		return nil, err
	}
	return engine.GroupChart(result, schema, domain.GroupKey(groupBy))
}

// CountChart implements domain.ChartBuilder
func (b *ChartBuilderImpl) CountChart(result *domain.CountResult) (*domain.Chart, error) {
	if result == nil {
		return nil, domain.NewStateError(engine.MsgNoPlot)
	}
	schema, err := domain.SchemaFor(result.Scheme)
	if err != nil {
		return nil, err
	}
	return engine.CountChart(result, schema)
}

// DominantChart implements domain.ChartBuilder
func (b *ChartBuilderImpl) DominantChart(result *domain.DominantResult) (*domain.Chart, error) {
	if result == nil {
		return nil, domain.NewStateError(engine.MsgNoPlot)
	}
	schema, err := domain.SchemaFor(result.Scheme)
	if err != nil {
		return nil, err
	}
	return engine.DominantChart(result, schema)
}
