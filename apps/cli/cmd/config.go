package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/config"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is written by `config init` when no path is given.
const DefaultConfigFile = "jsonrpc.config.json"

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the jsonrpc config file",
	}
	configCmd.AddCommand(newConfigInitCmd())
	return configCmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a config file with the default settings",
		Long: `Write a config file with the default settings.

The format follows the extension: .yaml and .yml are written as YAML,
anything else as JSON.

Examples:
  jsonrpc config init
  jsonrpc config init ~/.config/jsonrpc/config.yaml
  jsonrpc config init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("file already exists: %s (use --force to overwrite)", path)
				}
			}

			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return initCmd
}
