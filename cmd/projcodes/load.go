package main

import (
	"github.com/spf13/cobra"

	"github.com/ieg-tools/projcodes/domain"
)

// LoadCommand loads one or both schemes and prints their summary
type LoadCommand struct {
	all    bool
	format string
}

// NewLoadCmd creates the load command
func NewLoadCmd() *cobra.Command {
	l := &LoadCommand{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the project export and summarize it",
		Long: `Load the sector or theme codes of the project export workbook and print
a summary of the loaded data.

The workbook is taken from source.path, or discovered as the first file in
source.directory matching source.pattern.

Examples:
  # Load sector data
  projcodes load

  # Load theme data
  projcodes load --scheme theme

  # Load both schemes side by side
  projcodes load --all`,
		Args: cobra.NoArgs,
		RunE: l.run,
	}
	cmd.Flags().BoolVar(&l.all, "all", false, "Load sector and theme data concurrently")
	cmd.Flags().StringVarP(&l.format, "format", "f", "text", "Summary format (text|json|yaml)")
	return cmd
}

func (l *LoadCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	schemes := []domain.Scheme{s.scheme}
	if l.all {
		schemes = []domain.Scheme{domain.SchemeSector, domain.SchemeTheme}
		_, err = s.datasets.LoadAll(cmd.Context(), schemes...)
	} else {
		_, err = s.datasets.Load(cmd.Context(), s.scheme)
	}
	if err != nil {
		return err
	}
	return writeInfo(cmd, s, l.format, schemes...)
}

// InfoCommand prints the summary of a scheme
type InfoCommand struct {
	format string
}

// NewInfoCmd creates the info command
func NewInfoCmd() *cobra.Command {
	i := &InfoCommand{}
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize the project export",
		Long: `Load the project export and print the number of projects and codes, the
approval year range, the product types and statuses present, the columns
available and the data source with its download date.`,
		Args: cobra.NoArgs,
		RunE: i.run,
	}
	cmd.Flags().StringVarP(&i.format, "format", "f", "text", "Summary format (text|json|yaml)")
	return cmd
}

func (i *InfoCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.datasets.Load(cmd.Context(), s.scheme); err != nil {
		return err
	}
	return writeInfo(cmd, s, i.format, s.scheme)
}

func writeInfo(cmd *cobra.Command, s *session, format string, schemes ...domain.Scheme) error {
	f, err := domain.ParseOutputFormat(format)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		info, err := s.datasets.Info(scheme)
		if err != nil {
			return err
		}
		if !info.Loaded {
			continue
		}
		if err := s.formatter.WriteInfo(info, f, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// CopyCommand exports every loaded row of a scheme
type CopyCommand struct {
	out outputOptions
}

// NewCopyCmd creates the copy command
func NewCopyCmd() *cobra.Command {
	c := &CopyCommand{}
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Export the whole merged code and metadata table",
		Long: `Export every row of the merged code and metadata table.

Examples:
  # Save the sector table as Sector_extract.xlsx
  projcodes copy --save ""

  # Save the theme table as CSV
  projcodes copy --scheme theme --save themes.csv`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	c.out.register(cmd, plotNone)
	return cmd
}

func (c *CopyCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.datasets.Load(cmd.Context(), s.scheme); err != nil {
		return err
	}
	res, _, err := s.datasets.Copy(s.scheme)
	if err != nil {
		return err
	}
	return c.out.emit(cmd, s, res)
}
