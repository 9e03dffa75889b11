package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/dataset"
)

func intp(v int) *int { return &v }

func pct(v float64) *float64 { return &v }

func sectorRow(id, code, name string, p *float64) domain.ClassificationRow {
	return domain.ClassificationRow{ProjectID: id, Code: code, CodeName: name, Percentage: p}
}

func withMeta(r domain.ClassificationRow, fy *int, status, product, af, gp, region string) domain.ClassificationRow {
	r.ApprovalFY = fy
	r.Status = status
	r.ProductType = product
	r.AdditionalFinancing = af
	r.LeadPractice = gp
	r.Region = region
	return r
}

// sectorDataset builds a small sector table:
//
//	P1: A 60, B 40 (FY2020, Active, L, no AF, Energy, Africa)
//	P2: C 50, D 50 (FY2022, Closed, A, AF, Water)
//	P3: A 30 with no metadata
//	P4: AX 100 (FY2018, Pipeline, S, no AF, no GP)
//	P5: no code mappings (FY2021, Active, L)
func sectorDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	p1 := func(r domain.ClassificationRow) domain.ClassificationRow {
		return withMeta(r, intp(2020), domain.StatusActive, domain.ProductLending, "N", "Energy", "Africa")
	}
	p2 := func(r domain.ClassificationRow) domain.ClassificationRow {
		return withMeta(r, intp(2022), domain.StatusClosed, domain.ProductAAA, "Y", "Water", "East Asia")
	}
	rows := []domain.ClassificationRow{
		p1(sectorRow("P1", "A", "Agriculture", pct(60))),
		p1(sectorRow("P1", "B", "Banking", pct(40))),
		p2(sectorRow("P2", "C", "Crops", pct(50))),
		p2(sectorRow("P2", "D", "Dams", pct(50))),
		sectorRow("P3", "A", "Agriculture", pct(30)),
		withMeta(sectorRow("P4", "AX", "Agriculture major", pct(100)), intp(2018), domain.StatusPipeline, domain.ProductStandard, "N", "", ""),
		withMeta(domain.ClassificationRow{ProjectID: "P5"}, intp(2021), domain.StatusActive, domain.ProductLending, "N", "Energy", "Africa"),
	}
	ds := dataset.New(domain.SectorSchema)
	require.NoError(t, ds.Populate(&domain.LoadedTable{Rows: rows}))
	return ds
}

func themeRow(id, code, name string, level *int, p *float64) domain.ClassificationRow {
	return domain.ClassificationRow{ProjectID: id, Code: code, CodeName: name, ThemeLevel: level, Percentage: p}
}

// themeDataset builds a small theme table:
//
//	T1: 10 (level 1, 70), 11 (level 2, 30)
//	T2: 20 with no level (100)
func themeDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	rows := []domain.ClassificationRow{
		withMeta(themeRow("T1", "10", "Gender", intp(1), pct(70)), intp(2019), domain.StatusActive, domain.ProductLending, "N", "Social", "Africa"),
		withMeta(themeRow("T1", "11", "Gender equality", intp(2), pct(30)), intp(2019), domain.StatusActive, domain.ProductLending, "N", "Social", "Africa"),
		themeRow("T2", "20", "Urban", nil, pct(100)),
	}
	ds := dataset.New(domain.ThemeSchema)
	require.NoError(t, ds.Populate(&domain.LoadedTable{Rows: rows}))
	return ds
}

func codesOf(rows []domain.ClassificationRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ProjectID+":"+r.Code)
	}
	return out
}

func messages(ns []domain.Notice) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Message)
	}
	return out
}
