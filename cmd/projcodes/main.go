package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ieg-tools/projcodes/internal/version"
	"github.com/ieg-tools/projcodes/service"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	quiet      bool
	scheme     string
}

var globals globalOptions

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projcodes",
		Short: "Query sector and theme codes of World Bank projects",
		Long: `projcodes loads the periodic project export workbook and answers
questions about the sector and theme codes mapped to each project.

Features:
  • Find projects mapped to codes, with approval year, status and product filters
  • Look up every code of a list of projects
  • Count codes per project and resolve each project's dominant code
  • Save results as xlsx, csv, json, yaml or text
  • Plot project counts by code, practice, year, region, instrument or status`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&globals.configPath, "config", "c", "", "Configuration file path (default: .projcodes.toml lookup)")
	pf.StringVar(&globals.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	pf.StringVar(&globals.logFormat, "log-format", "console", "Log format (console|json)")
	pf.BoolVarP(&globals.quiet, "quiet", "q", false, "Only report warnings and errors")
	pf.StringVarP(&globals.scheme, "scheme", "s", "sector", "Classification scheme (sector|theme)")

	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewInfoCmd())
	cmd.AddCommand(NewCopyCmd())
	cmd.AddCommand(NewProjectsCmd())
	cmd.AddCommand(NewCodesCmd())
	cmd.AddCommand(NewCountCmd())
	cmd.AddCommand(NewDominantCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())
	return cmd
}

var (
	errorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorHintStyle  = lipgloss.NewStyle().Faint(true)
)

// reportError prints a categorized error with recovery suggestions
func reportError(w io.Writer, err error) {
	categorized := service.NewErrorCategorizer().Categorize(err)
	fmt.Fprintf(w, "%s %s\n", errorTitleStyle.Render(string(categorized.Category)+":"), categorized.Error())
	suggestions := service.NewErrorCategorizer().GetRecoverySuggestions(categorized.Category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, s := range suggestions {
		fmt.Fprintln(w, errorHintStyle.Render("  • "+s))
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}
