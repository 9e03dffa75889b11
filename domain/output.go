package domain

import (
	"context"
	"io"
	"time"
)

// Status messages of saving and plotting
const (
	MsgNoOutput    = "No output to save."
	MsgNoPlot      = "No output to plot."
	MsgOutputSaved = "Output saved."
	MsgPlotSaved   = "Plot saved."
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatXLSX OutputFormat = "xlsx"
	OutputFormatHTML OutputFormat = "html"
)

// Extension returns the file extension of a format
func (f OutputFormat) Extension() string {
	if f == OutputFormatText {
		return "txt"
	}
	return string(f)
}

// ParseOutputFormat validates a format name
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML, OutputFormatCSV, OutputFormatXLSX, OutputFormatHTML:
		return f, nil
	default:
		return "", NewUnsupportedFormatError(name)
	}
}

// ReportWriter abstracts writing reports to a destination (file or writer)
// and handling side-effects like opening HTML reports in a browser.
//
// Implementations live in the service layer.
type ReportWriter interface {
	// Write writes formatted content using the provided writeFunc.
	// - If outputPath is non-empty, implementations should create/truncate the file
	//   at that path and pass the file as the writer to writeFunc.
	// - If outputPath is empty, implementations should pass the provided writer to writeFunc.
	// A target that cannot be opened for writing yields a RESOURCE error.
	Write(writer io.Writer, outputPath string, format OutputFormat, noOpen bool, writeFunc func(io.Writer) error) error
}

// Tabular is a result that renders as a table
type Tabular interface {
	Table() *Table
}

// FormatResolver picks an output format from an explicit name or a file name
type FormatResolver interface {
	// Determine returns the format and the file name carrying its extension
	Determine(name, path string) (OutputFormat, string, error)
}

// ReportSink persists a result table in a tabular format
type ReportSink interface {
	// WriteTable encodes the table to w in the given format
	WriteTable(w io.Writer, table *Table, format OutputFormat) error
}

// ResultFormatter encodes results and dataset summaries
type ResultFormatter interface {
	Write(result Tabular, format OutputFormat, w io.Writer) error
	WriteInfo(info *DatasetInfo, format OutputFormat, w io.Writer) error
}

// ChartBuilder turns results into bar charts
type ChartBuilder interface {
	// GroupChart counts the projects of a result per value of a grouping column
	GroupChart(result *QueryResult, groupBy string) (*Chart, error)

	// CountChart is the histogram of code counts
	CountChart(result *CountResult) (*Chart, error)

	// DominantChart counts projects per dominant code
	DominantChart(result *DominantResult) (*Chart, error)
}

// ChartSink renders a bar chart
type ChartSink interface {
	// Render draws the chart to w; format is text (terminal) or html
	Render(w io.Writer, chart *Chart, format OutputFormat) error
}

// ProgressManager tracks the phases of long-running loads
type ProgressManager interface {
	// Initialize sets the total number of phases
	Initialize(maxValue int)

	// Start shows the progress bar with a description
	Start(description string)

	// Advance marks n more phases done; safe for concurrent use
	Advance(n int)

	// Complete marks the progress as completed
	Complete(success bool)

	// SetWriter sets the output writer for progress bars
	SetWriter(writer io.Writer)

	// IsInteractive returns true if progress bars should be shown
	IsInteractive() bool

	// Close cleans up any resources
	Close()
}

// ExecutableTask is a named unit of work run by a ParallelExecutor
type ExecutableTask interface {
	Name() string
	Execute(ctx context.Context) (interface{}, error)
	IsEnabled() bool
}

// ParallelExecutor runs independent tasks concurrently
type ParallelExecutor interface {
	Execute(ctx context.Context, tasks []ExecutableTask) error
	SetMaxConcurrency(max int)
	SetTimeout(timeout time.Duration)
}

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	ErrorCategoryInput      ErrorCategory = "Input Error"
	ErrorCategoryState      ErrorCategory = "State Error"
	ErrorCategoryConfig     ErrorCategory = "Configuration Error"
	ErrorCategoryProcessing ErrorCategory = "Processing Error"
	ErrorCategoryOutput     ErrorCategory = "Output Error"
	ErrorCategoryUnknown    ErrorCategory = "Unknown Error"
)

// CategorizedError represents an error with category information
type CategorizedError struct {
	Category ErrorCategory
	Message  string
	Original error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Original != nil {
		return e.Original.Error()
	}
	return e.Message
}

// ErrorCategorizer categorizes errors for better reporting
type ErrorCategorizer interface {
	// Categorize determines the category of an error
	Categorize(err error) *CategorizedError

	// GetRecoverySuggestions returns recovery suggestions for an error category
	GetRecoverySuggestions(category ErrorCategory) []string
}
