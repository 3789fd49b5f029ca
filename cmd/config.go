package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
		Long: `Show or initialize the conversa configuration.

Settings are resolved in order: defaults, the config file
(~/.conversa/config.yaml or --config), .env, CONVERSA_* environment
variables and finally command flags.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			path, err = config.SaveConfig(config.DefaultConfig())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}
