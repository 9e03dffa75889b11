package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all projcodes MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	schemeOption := mcp.WithString("scheme",
		mcp.Enum("sector", "theme"),
		mcp.Description("Classification scheme: sector or theme (default: sector)"))

	s.AddTool(mcp.NewTool("load_data",
		mcp.WithDescription("Load sector or theme codes from the project export workbook and summarize them"),
		mcp.WithString("scheme",
			mcp.Enum("sector", "theme", "all"),
			mcp.Description("Scheme to load; all loads both concurrently (default: sector)")),
	), h.HandleLoadData)

	s.AddTool(mcp.NewTool("unload_data",
		mcp.WithDescription("Release the loaded data of a scheme"),
		schemeOption,
	), h.HandleUnloadData)

	s.AddTool(mcp.NewTool("data_info",
		mcp.WithDescription("Summarize the loaded data: projects, codes, approval years, statuses, columns and source"),
		schemeOption,
	), h.HandleDataInfo)

	s.AddTool(mcp.NewTool("get_projects",
		mcp.WithDescription("Find projects mapped to at least one of the given codes"),
		schemeOption,
		mcp.WithArray("codes",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Sector codes (e.g. WX, WAS) or integer theme codes")),
		mcp.WithNumber("min_pct",
			mcp.Description("Minimum percentage of a queried code, 0-100 (default: 1)")),
		mcp.WithNumber("start_fy",
			mcp.Description("First approval fiscal year")),
		mcp.WithNumber("stop_fy",
			mcp.Description("Last approval fiscal year")),
		mcp.WithArray("product_types",
			mcp.WithStringItems(),
			mcp.Description("Product line types to keep: L, A or S")),
		mcp.WithArray("statuses",
			mcp.WithStringItems(),
			mcp.Description("Project statuses to keep, e.g. Active, Closed, Pipeline")),
		mcp.WithBoolean("include_additional_financing",
			mcp.Description("Keep additional financing projects (default: true)")),
		mcp.WithBoolean("show_all_codes",
			mcp.Description("Return every code of matching projects (default: false)")),
		mcp.WithBoolean("show_metadata",
			mcp.Description("Add project metadata columns (default: false)")),
	), h.HandleGetProjects)

	s.AddTool(mcp.NewTool("get_codes",
		mcp.WithDescription("List every code mapped to the given projects"),
		schemeOption,
		mcp.WithArray("project_ids",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Project identifiers, e.g. P123456")),
		mcp.WithArray("levels",
			mcp.WithNumberItems(),
			mcp.Description("Theme levels to keep, 1-3")),
		mcp.WithBoolean("show_metadata",
			mcp.Description("Add project metadata columns (default: false)")),
	), h.HandleGetCodes)

	s.AddTool(mcp.NewTool("count_codes",
		mcp.WithDescription("Count the distinct codes of each project"),
		schemeOption,
		mcp.WithArray("project_ids",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Project identifiers")),
		mcp.WithArray("levels",
			mcp.WithNumberItems(),
			mcp.Description("Theme levels to count, 1-3")),
	), h.HandleCountCodes)

	s.AddTool(mcp.NewTool("dominant_code",
		mcp.WithDescription("Resolve the code with the highest percentage of each project"),
		schemeOption,
		mcp.WithArray("project_ids",
			mcp.Required(),
			mcp.WithStringItems(),
			mcp.Description("Project identifiers")),
		mcp.WithNumber("threshold",
			mcp.Description("Every code at or above this percentage is dominant; omit for the strict maximum")),
		mcp.WithArray("levels",
			mcp.WithNumberItems(),
			mcp.Description("Theme levels to consider, 1-3")),
	), h.HandleDominantCode)

	s.AddTool(mcp.NewTool("save_result",
		mcp.WithDescription("Save a query result as xlsx, csv, json, yaml, text or html"),
		mcp.WithString("result_id",
			mcp.Description("Result to save; defaults to the scheme's last projects or codes result")),
		schemeOption,
		mcp.WithString("name",
			mcp.Description("File name; the extension selects the format when format is omitted")),
		mcp.WithString("format",
			mcp.Enum("xlsx", "csv", "json", "yaml", "text", "html"),
			mcp.Description("Report format (default: configured output.format)")),
		mcp.WithString("directory",
			mcp.Description("Output directory (default: configured output.directory)")),
	), h.HandleSaveResult)

	s.AddTool(mcp.NewTool("plot_result",
		mcp.WithDescription("Plot project counts of a result as an HTML bar chart or a text chart"),
		mcp.WithString("result_id",
			mcp.Description("Result to plot; defaults to the scheme's last projects or codes result")),
		schemeOption,
		mcp.WithString("group_by",
			mcp.Description("Grouping of projects or codes results: sectors/themes, gp, fy, region, instrument, status")),
		mcp.WithString("name",
			mcp.Description("Chart file name")),
		mcp.WithString("format",
			mcp.Enum("html", "text"),
			mcp.Description("html writes a file, text returns the chart inline (default: html)")),
		mcp.WithString("directory",
			mcp.Description("Output directory (default: configured output.directory)")),
		mcp.WithBoolean("open_browser",
			mcp.Description("Open the HTML chart in the browser (default: false)")),
	), h.HandlePlotResult)
}
