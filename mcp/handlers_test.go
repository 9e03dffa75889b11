package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

func setupExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "WB_Project_data.export.2024-05-01.xlsx")
	sheets := map[string][][]interface{}{
		"metadata": {
			{"Project Id", "Project Approval FY", "Project Status Name", "Product Line Type", "Lead GP/Global Themes"},
			{"P1", 2020, "Active", "L", "Energy"},
			{"P2", 2022, "Closed", "L", "Water"},
		},
		"sectors": {
			{"Project Id", "Major Sector Code", "Major Sector Long Name", "Sector Code", "Sector Long Name", "Sector Percentage"},
			{"P1", "EX", "Energy", "EA", "Power", 0.6},
			{"P1", "WX", "Water", "WC", "Water supply", 0.4},
			{"P2", "WX", "Water", "WC", "Water supply", 1},
		},
	}

	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestHandlers(t *testing.T) *HandlerSet {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Source.Path = setupExport(t)
	cfg.Output.Directory = t.TempDir()
	deps, err := NewDependencies(cfg, nil)
	require.NoError(t, err)
	return NewHandlerSet(deps)
}

func call(t *testing.T, handler func(context.Context, mcplib.CallToolRequest) (*mcplib.CallToolResult, error), args map[string]interface{}) *mcplib.CallToolResult {
	t.Helper()
	req := mcplib.CallToolRequest{Params: mcplib.CallToolParams{Arguments: args}}
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	content, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return content.Text
}

func decode(t *testing.T, res *mcplib.CallToolResult) map[string]interface{} {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	return body
}

func TestHandleQueriesBeforeLoad(t *testing.T) {
	h := newTestHandlers(t)

	res := call(t, h.HandleGetCodes, map[string]interface{}{"project_ids": []interface{}{"P1"}})
	assert.False(t, res.IsError)
	assert.Equal(t, "Data not yet loaded.", text(t, res))

	info := decode(t, call(t, h.HandleDataInfo, map[string]interface{}{}))
	assert.Equal(t, false, info["result"].(map[string]interface{})["loaded"])
}

func TestHandleLoadAndQuery(t *testing.T) {
	h := newTestHandlers(t)

	body := decode(t, call(t, h.HandleLoadData, map[string]interface{}{"scheme": "sector"}))
	infos := body["result"].([]interface{})
	require.Len(t, infos, 1)
	assert.Equal(t, float64(2), infos[0].(map[string]interface{})["projects"])

	body = decode(t, call(t, h.HandleGetProjects, map[string]interface{}{
		"codes":    []interface{}{"wc"},
		"start_fy": float64(2021),
	}))
	id, ok := body["result_id"].(string)
	require.True(t, ok)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, h.deps.Results().Len())

	result := body["result"].(map[string]interface{})
	assert.Equal(t, float64(1), result["projects"])
}

func TestHandleCountAndDominant(t *testing.T) {
	h := newTestHandlers(t)
	decode(t, call(t, h.HandleLoadData, map[string]interface{}{}))

	body := decode(t, call(t, h.HandleCountCodes, map[string]interface{}{"project_ids": []interface{}{"P1", "P2"}}))
	counts := body["result"].(map[string]interface{})["counts"].([]interface{})
	require.Len(t, counts, 2)
	assert.Equal(t, float64(2), counts[0].(map[string]interface{})["count"])

	body = decode(t, call(t, h.HandleDominantCode, map[string]interface{}{"project_ids": []interface{}{"P1"}}))
	projects := body["result"].(map[string]interface{})["projects"].([]interface{})
	require.Len(t, projects, 1)
	assert.Equal(t, "EA", projects[0].(map[string]interface{})["code"])
}

func TestHandleSaveAndPlot(t *testing.T) {
	h := newTestHandlers(t)
	decode(t, call(t, h.HandleLoadData, map[string]interface{}{}))
	body := decode(t, call(t, h.HandleGetCodes, map[string]interface{}{
		"project_ids":   []interface{}{"P1", "P2"},
		"show_metadata": true,
	}))
	id := body["result_id"].(string)

	saved := decode(t, call(t, h.HandleSaveResult, map[string]interface{}{"result_id": id, "name": "codes.csv"}))
	path := saved["path"].(string)
	assert.Equal(t, "codes.csv", filepath.Base(path))
	_, err := os.Stat(path)
	assert.NoError(t, err)

	plotted := decode(t, call(t, h.HandlePlotResult, map[string]interface{}{
		"result_id": id,
		"group_by":  "gp",
		"format":    "text",
	}))
	assert.Contains(t, plotted["chart"], "Energy")

	plotted = decode(t, call(t, h.HandlePlotResult, map[string]interface{}{"group_by": "fy"}))
	assert.FileExists(t, plotted["path"].(string))
}

func TestHandleSaveWithoutResult(t *testing.T) {
	h := newTestHandlers(t)

	res := call(t, h.HandleSaveResult, map[string]interface{}{"scheme": "theme"})
	assert.False(t, res.IsError)
	assert.Equal(t, domain.MsgNoOutput, text(t, res))

	res = call(t, h.HandleSaveResult, map[string]interface{}{"result_id": "missing"})
	assert.True(t, res.IsError)
}

func TestHandleErrors(t *testing.T) {
	h := newTestHandlers(t)
	decode(t, call(t, h.HandleLoadData, map[string]interface{}{}))

	res := call(t, h.HandleDataInfo, map[string]interface{}{"scheme": "region"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), string(domain.ErrorCategoryInput))

	res = call(t, h.HandleGetProjects, map[string]interface{}{})
	assert.True(t, res.IsError)

	res = call(t, h.HandleGetProjects, map[string]interface{}{
		"codes":    []interface{}{"WC"},
		"start_fy": float64(2023),
		"stop_fy":  float64(2021),
	})
	assert.True(t, res.IsError)
}

func TestHandleUnload(t *testing.T) {
	h := newTestHandlers(t)
	decode(t, call(t, h.HandleLoadData, map[string]interface{}{}))

	res := call(t, h.HandleUnloadData, map[string]interface{}{})
	assert.False(t, res.IsError)

	info := decode(t, call(t, h.HandleDataInfo, map[string]interface{}{}))
	assert.Equal(t, false, info["result"].(map[string]interface{})["loaded"])
}
