package main

import (
	"github.com/spf13/cobra"

	"github.com/ieg-tools/projcodes/domain"
	"github.com/ieg-tools/projcodes/internal/config"
)

// ProjectsCommand finds projects mapped to codes
type ProjectsCommand struct {
	minPct       int
	startFY      int
	stopFY       int
	productTypes []string
	statuses     []string
	excludeAF    bool
	showAll      bool
	showMeta     bool
	out          outputOptions
}

// NewProjectsCmd creates the projects command
func NewProjectsCmd() *cobra.Command {
	p := &ProjectsCommand{}
	cmd := &cobra.Command{
		Use:   "projects CODE...",
		Short: "Find projects mapped to sector or theme codes",
		Long: `Find the projects mapped to at least one of the given codes with a
percentage of at least --min-pct.

Sector codes are two-letter major sector codes (e.g. WX) or three-letter
sector codes (e.g. WAS). Theme codes are integers.

Examples:
  # Water projects approved from FY2015
  projcodes projects WX --start-fy 2015

  # Active lending projects on a theme, with metadata, saved to Excel
  projcodes projects 331 --scheme theme --status Active --product-type L --show-meta --save ""

  # Plot matching projects by Global Practice
  projcodes projects WX --show-meta --plot gp`,
		Args: cobra.MinimumNArgs(1),
		RunE: p.run,
	}

	f := cmd.Flags()
	f.IntVar(&p.minPct, "min-pct", domain.DefaultMinPct, "Minimum percentage of a queried code (0-100)")
	f.IntVar(&p.startFY, "start-fy", 0, "First approval fiscal year")
	f.IntVar(&p.stopFY, "stop-fy", 0, "Last approval fiscal year")
	f.StringSliceVar(&p.productTypes, "product-type", nil, "Product line types to keep (e.g. L, A)")
	f.StringSliceVar(&p.statuses, "status", nil, "Project statuses to keep (e.g. Active, Closed)")
	f.BoolVar(&p.excludeAF, "exclude-af", false, "Exclude additional financing projects")
	f.BoolVar(&p.showAll, "show-all", false, "Show every code of matching projects")
	f.BoolVar(&p.showMeta, "show-meta", false, "Add project metadata columns")
	p.out.register(cmd, plotGroup)
	return cmd
}

func (p *ProjectsCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ft := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	q := domain.NewProjectQuery(args...)
	q.MinPct = ft.MergeInt(s.cfg.Query.MinPct, p.minPct, "min-pct")
	q.IncludeAdditionalFinancing = ft.MergeBool(s.cfg.Query.IncludeAdditionalFinancing, !p.excludeAF, "exclude-af")
	q.ProductTypes = ft.StringSlice(p.productTypes, "product-type")
	q.Statuses = ft.StringSlice(p.statuses, "status")
	q.ShowAllCodes = p.showAll
	q.ShowMetadata = p.showMeta
	q.StartFY = ft.IntPtr(p.startFY, "start-fy")
	q.StopFY = ft.IntPtr(p.stopFY, "stop-fy")

	res, _, err := s.queries.Projects(cmd.Context(), s.scheme, q)
	if err != nil {
		return err
	}
	return p.out.emit(cmd, s, res)
}

// CodesCommand looks up every code of projects
type CodesCommand struct {
	levels   []int
	showMeta bool
	out      outputOptions
}

// NewCodesCmd creates the codes command
func NewCodesCmd() *cobra.Command {
	c := &CodesCommand{}
	cmd := &cobra.Command{
		Use:   "codes PROJECT_ID...",
		Short: "Look up the codes of projects",
		Long: `List every sector or theme code mapped to the given projects.

Examples:
  projcodes codes P123456 P654321
  projcodes codes P123456 --scheme theme --level 1 --level 2
  projcodes codes P123456 P654321 --plot sectors`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().IntSliceVar(&c.levels, "level", nil, "Theme levels to keep (1-3)")
	cmd.Flags().BoolVar(&c.showMeta, "show-meta", false, "Add project metadata columns")
	c.out.register(cmd, plotGroup)
	return cmd
}

func (c *CodesCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	q := domain.LookupQuery{ProjectIDs: args, Levels: c.levels, ShowMetadata: c.showMeta}
	res, _, err := s.queries.Codes(cmd.Context(), s.scheme, q)
	if err != nil {
		return err
	}
	return c.out.emit(cmd, s, res)
}

// CountCommand counts the distinct codes of projects
type CountCommand struct {
	levels []int
	out    outputOptions
}

// NewCountCmd creates the count command
func NewCountCmd() *cobra.Command {
	c := &CountCommand{}
	cmd := &cobra.Command{
		Use:   "count PROJECT_ID...",
		Short: "Count the distinct codes of projects",
		Long: `Count how many distinct sector or theme codes each project is mapped to.

Examples:
  projcodes count P123456 P654321
  projcodes count P123456 --scheme theme --level 2 --plot`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().IntSliceVar(&c.levels, "level", nil, "Theme levels to count (1-3)")
	c.out.register(cmd, plotFrequency)
	return cmd
}

func (c *CountCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, _, err := s.queries.Count(cmd.Context(), s.scheme, domain.CountRequest{ProjectIDs: args, Levels: c.levels})
	if err != nil {
		return err
	}
	return c.out.emit(cmd, s, res)
}

// DominantCommand resolves the dominant code of projects
type DominantCommand struct {
	threshold int
	levels    []int
	out       outputOptions
}

// NewDominantCmd creates the dominant command
func NewDominantCmd() *cobra.Command {
	d := &DominantCommand{}
	cmd := &cobra.Command{
		Use:   "dominant PROJECT_ID...",
		Short: "Resolve the dominant code of projects",
		Long: `Resolve the code with the highest percentage of each project.

Without --threshold a project has a dominant code only when one code has
the strictly highest percentage. With --threshold a project with a single
code adopts it, and otherwise the highest code at or above the threshold
wins, ties going to the code listed first. Thresholds at or below 50 warn
because several codes of one project may qualify.

Examples:
  projcodes dominant P123456 P654321
  projcodes dominant P123456 --threshold 60 --plot`,
		Args: cobra.MinimumNArgs(1),
		RunE: d.run,
	}
	cmd.Flags().IntVar(&d.threshold, "threshold", 0, "Minimum percentage of a dominant code (1-100)")
	cmd.Flags().IntSliceVar(&d.levels, "level", nil, "Theme levels to consider (1-3)")
	d.out.register(cmd, plotFrequency)
	return cmd
}

func (d *DominantCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	req := domain.DominantRequest{ProjectIDs: args, Levels: d.levels, Threshold: s.cfg.Query.Threshold()}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = &d.threshold
	}
	res, _, err := s.queries.Dominant(cmd.Context(), s.scheme, req)
	if err != nil {
		return err
	}
	return d.out.emit(cmd, s, res)
}
