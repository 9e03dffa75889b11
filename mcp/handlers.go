package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ieg-tools/projcodes/app"
	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/service"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps        *Dependencies
	categorizer domain.ErrorCategorizer
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	return &HandlerSet{deps: deps, categorizer: service.NewErrorCategorizer()}
}

// toolResponse is the JSON body of a successful tool call
type toolResponse struct {
	ResultID string          `json:"result_id,omitempty"`
	Path     string          `json:"path,omitempty"`
	Notices  []domain.Notice `json:"notices,omitempty"`
	Result   interface{}     `json:"result,omitempty"`
	Chart    string          `json:"chart,omitempty"`
}

// HandleLoadData handles the load_data tool
func (h *HandlerSet) HandleLoadData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	name := strings.ToLower(stringArg(args, "scheme", string(domain.SchemeSector)))

	var schemes []domain.Scheme
	var notices []domain.Notice
	var err error
	if name == "all" {
		schemes = []domain.Scheme{domain.SchemeSector, domain.SchemeTheme}
		notices, err = h.deps.datasets.LoadAll(ctx, schemes...)
	} else {
		var scheme domain.Scheme
		if scheme, err = parseScheme(name); err != nil {
			return h.failure(err), nil
		}
		schemes = []domain.Scheme{scheme}
		notices, err = h.deps.datasets.Load(ctx, scheme)
	}
	if err != nil {
		return h.failure(err), nil
	}

	infos := make([]*domain.DatasetInfo, 0, len(schemes))
	for _, s := range schemes {
		info, err := h.deps.datasets.Info(s)
		if err != nil {
			return h.failure(err), nil
		}
		infos = append(infos, info)
	}
	return respond(toolResponse{Notices: notices, Result: infos})
}

// HandleUnloadData handles the unload_data tool
func (h *HandlerSet) HandleUnloadData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scheme, err := parseScheme(stringArg(arguments(request), "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	return noticesText(h.deps.datasets.Unload(scheme)), nil
}

// HandleDataInfo handles the data_info tool
func (h *HandlerSet) HandleDataInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scheme, err := parseScheme(stringArg(arguments(request), "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	info, err := h.deps.datasets.Info(scheme)
	if err != nil {
		return h.failure(err), nil
	}
	return respond(toolResponse{Result: info})
}

// HandleGetProjects handles the get_projects tool
func (h *HandlerSet) HandleGetProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	scheme, err := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	codes := stringSliceArg(args, "codes")
	if len(codes) == 0 {
		return mcp.NewToolResultError("codes parameter is required and must be a list of codes"), nil
	}

	q := domain.NewProjectQuery(codes...)
	q.MinPct = intArg(args, "min_pct", h.deps.config.Query.MinPct)
	q.StartFY = optionalIntArg(args, "start_fy")
	q.StopFY = optionalIntArg(args, "stop_fy")
	q.ProductTypes = stringSliceArg(args, "product_types")
	q.Statuses = stringSliceArg(args, "statuses")
	q.IncludeAdditionalFinancing = boolArg(args, "include_additional_financing", h.deps.config.Query.IncludeAdditionalFinancing)
	q.ShowAllCodes = boolArg(args, "show_all_codes", false)
	q.ShowMetadata = boolArg(args, "show_metadata", false)

	res, notices, err := h.deps.queries.Projects(ctx, scheme, q)
	return h.result(res, notices, err)
}

// HandleGetCodes handles the get_codes tool
func (h *HandlerSet) HandleGetCodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	scheme, err := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	q := domain.LookupQuery{
		ProjectIDs:   stringSliceArg(args, "project_ids"),
		Levels:       intSliceArg(args, "levels"),
		ShowMetadata: boolArg(args, "show_metadata", false),
	}
	res, notices, err := h.deps.queries.Codes(ctx, scheme, q)
	return h.result(res, notices, err)
}

// HandleCountCodes handles the count_codes tool
func (h *HandlerSet) HandleCountCodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	scheme, err := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	req := domain.CountRequest{
		ProjectIDs: stringSliceArg(args, "project_ids"),
		Levels:     intSliceArg(args, "levels"),
	}
	res, notices, err := h.deps.queries.Count(ctx, scheme, req)
	return h.result(res, notices, err)
}

// HandleDominantCode handles the dominant_code tool
func (h *HandlerSet) HandleDominantCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	scheme, err := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
	if err != nil {
		return h.failure(err), nil
	}
	req := domain.DominantRequest{
		ProjectIDs: stringSliceArg(args, "project_ids"),
		Threshold:  optionalIntArg(args, "threshold"),
		Levels:     intSliceArg(args, "levels"),
	}
	if req.Threshold == nil {
		req.Threshold = h.deps.config.Query.Threshold()
	}
	res, notices, err := h.deps.queries.Dominant(ctx, scheme, req)
	return h.result(res, notices, err)
}

// HandleSaveResult handles the save_result tool
func (h *HandlerSet) HandleSaveResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	req := app.SaveRequest{
		Name:      stringArg(args, "name", ""),
		Format:    stringArg(args, "format", ""),
		Directory: stringArg(args, "directory", ""),
	}

	var path string
	var notices []domain.Notice
	var err error
	if id := stringArg(args, "result_id", ""); id != "" {
		res, ok := h.deps.results.Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown result_id %q; run a query first", id)), nil
		}
		path, notices, err = h.deps.saver.Save(res, req)
	} else {
		scheme, perr := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
		if perr != nil {
			return h.failure(perr), nil
		}
		path, notices, err = h.deps.saver.SaveLast(scheme, req)
	}
	if err != nil {
		return h.failure(err), nil
	}
	if path == "" {
		return noticesText(notices), nil
	}
	return respond(toolResponse{Path: path, Notices: notices})
}

// HandlePlotResult handles the plot_result tool
func (h *HandlerSet) HandlePlotResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	var terminal bytes.Buffer
	req := app.PlotRequest{
		GroupBy:   stringArg(args, "group_by", ""),
		Name:      stringArg(args, "name", ""),
		Format:    stringArg(args, "format", ""),
		Directory: stringArg(args, "directory", ""),
		NoOpen:    !boolArg(args, "open_browser", false),
		Terminal:  &terminal,
	}

	var path string
	var notices []domain.Notice
	var err error
	if id := stringArg(args, "result_id", ""); id != "" {
		res, ok := h.deps.results.Get(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown result_id %q; run a query first", id)), nil
		}
		switch r := res.(type) {
		case *domain.QueryResult:
			path, notices, err = h.deps.plotter.Plot(r, req)
		case *domain.CountResult:
			path, notices, err = h.deps.plotter.PlotCount(r, req)
		case *domain.DominantResult:
			path, notices, err = h.deps.plotter.PlotDominant(r, req)
		}
	} else {
		scheme, perr := parseScheme(stringArg(args, "scheme", string(domain.SchemeSector)))
		if perr != nil {
			return h.failure(perr), nil
		}
		path, notices, err = h.deps.plotter.PlotLast(scheme, req)
	}
	if err != nil {
		return h.failure(err), nil
	}
	if path == "" && terminal.Len() == 0 {
		return noticesText(notices), nil
	}
	return respond(toolResponse{Path: path, Notices: notices, Chart: terminal.String()})
}

// result registers a query result and encodes it; a nil result means the
// query failed softly and only its notices are returned
func (h *HandlerSet) result(res domain.Tabular, notices []domain.Notice, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return h.failure(err), nil
	}
	if resultID(res) == "" {
		return noticesText(notices), nil
	}
	id := h.deps.results.Put(res)
	return respond(toolResponse{ResultID: id, Notices: notices, Result: res})
}

// failure turns a hard error into a tool error carrying its category
func (h *HandlerSet) failure(err error) *mcp.CallToolResult {
	categorized := h.categorizer.Categorize(err)
	h.deps.log.Sugar().Debugw("tool failed", "category", categorized.Category, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", categorized.Category, err))
}

func respond(body toolResponse) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func noticesText(notices []domain.Notice) *mcp.CallToolResult {
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, n.Message)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n"))
}

func parseScheme(name string) (domain.Scheme, error) {
	schema, err := domain.SchemaFor(domain.Scheme(name))
	if err != nil {
		return "", err
	}
	return schema.Scheme, nil
}
