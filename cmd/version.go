package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/pkg/buildinfo"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildinfo.Get("conversa")
			if ok, err := writeStructured(cmd.OutOrStdout(), config.OutputFormat(output), info); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "conversa %s\n", buildinfo.String())
			fmt.Fprintf(cmd.OutOrStdout(), "  go:       %s\n", info.GoVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "  platform: %s\n", info.Platform)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}
