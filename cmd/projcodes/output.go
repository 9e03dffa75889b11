package main

import (
	"github.com/spf13/cobra"

	"github.com/ieg-tools/projcodes/app"
	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

// plotMode selects which chart a command offers
type plotMode int

const (
	plotNone plotMode = iota
	// plotGroup charts projects per grouping key
	plotGroup
	// plotFrequency charts a count or dominant-code distribution
	plotFrequency
)

// outputOptions are the printing, saving and plotting flags of result commands
type outputOptions struct {
	mode plotMode

	format     string
	save       string
	saveFormat string
	directory  string

	groupBy     string
	plot        bool
	chartName   string
	chartFormat string
	noOpen      bool
}

func (o *outputOptions) register(cmd *cobra.Command, mode plotMode) {
	o.mode = mode
	f := cmd.Flags()
	f.StringVarP(&o.format, "format", "f", "text", "Print format (text|json|yaml|csv)")
	f.StringVar(&o.save, "save", "", "Save the result under this file name (empty for the default name)")
	f.StringVar(&o.saveFormat, "save-format", "", "Saved report format (xlsx|csv|json|yaml|text|html)")
	f.StringVarP(&o.directory, "output-dir", "o", "", "Directory for saved reports and charts")

	switch mode {
	case plotGroup:
		f.StringVar(&o.groupBy, "plot", "", "Plot project counts by sectors/themes, gp, fy, region, instrument or status")
	case plotFrequency:
		f.BoolVar(&o.plot, "plot", false, "Plot the distribution")
	}
	if mode != plotNone {
		f.StringVar(&o.chartName, "chart-name", "", "Chart file name (empty for the default name)")
		f.StringVar(&o.chartFormat, "chart-format", "", "Chart format (html|text)")
		f.BoolVar(&o.noOpen, "no-open", false, "Don't open HTML charts in the browser")
	}
}

// emit prints, saves and plots a result as requested. The result is printed
// unless it is only being saved or plotted.
func (o *outputOptions) emit(cmd *cobra.Command, s *session, result domain.Tabular) error {
	ft := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	saving := ft.WasSet("save")
	plotting := ft.WasSet("plot")

	if ft.WasSet("format") || (!saving && !plotting) {
		if err := s.print(cmd.OutOrStdout(), result, o.format); err != nil {
			return err
		}
	}

	if saving {
		req := app.SaveRequest{Name: o.save, Format: o.saveFormat, Directory: o.directory}
		if _, _, err := s.saver.Save(result, req); err != nil {
			return err
		}
	}

	if !plotting {
		return nil
	}
	req := app.PlotRequest{
		GroupBy:   o.groupBy,
		Name:      o.chartName,
		Format:    o.chartFormat,
		Directory: o.directory,
		NoOpen:    o.noOpen,
		Terminal:  cmd.OutOrStdout(),
	}
	var err error
	switch r := result.(type) {
	case *domain.QueryResult:
		_, _, err = s.plotter.Plot(r, req)
	case *domain.CountResult:
		if o.plot {
			_, _, err = s.plotter.PlotCount(r, req)
		}
	case *domain.DominantResult:
		if o.plot {
			_, _, err = s.plotter.PlotDominant(r, req)
		}
	}
	return err
}
