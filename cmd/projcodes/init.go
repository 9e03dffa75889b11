package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ieg-tools/projcodes/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	effective  bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: config.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize projcodes configuration file",
		Long: `Initialize a projcodes configuration file in the current directory.

Creates a .projcodes.toml file with every setting and a comment explaining
it. The generated configuration covers:
• Where the project export workbook is found and which sheets it has
• Query defaults such as the minimum percentage and dominant threshold
• Output directory and formats
• Logging level and format

Examples:
  # Create .projcodes.toml in current directory
  projcodes init

  # Create config file with custom name
  projcodes init --output myconfig.toml

  # Overwrite existing configuration file
  projcodes init --force

  # Save the settings in effect (config file and PROJCODES_* variables)
  projcodes init --effective --output shared.toml`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVar(&i.force, "force", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&i.effective, "effective", false, "Write the effective settings instead of the commented defaults")
	cmd.Flags().StringVarP(&i.configPath, "output", "o", config.ConfigFileName, "Configuration file path")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	if i.effective {
		cfg, err := config.LoadConfig(globals.configPath)
		if err != nil {
			return err
		}
		if err := config.SaveConfig(cfg, configPath); err != nil {
			return err
		}
	} else if err := writeDefaultConfig(configPath); err != nil {
		return err
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "\nTo point projcodes at your export:\n")
	fmt.Fprintf(cmd.OutOrStdout(), "  1. Edit source.directory or source.path in %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "  2. Run 'projcodes load' to check the data is found\n")

	return nil
}

// writeDefaultConfig renders the commented defaults and checks they parse back
// before anything is written
func writeDefaultConfig(path string) error {
	configData, err := config.GenerateDefaultConfigTOML()
	if err != nil {
		return err
	}
	if _, err := config.ParseConfigTOML(configData); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(configData), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
