package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/credentials"
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the OpenAI API key",
		Long: `Manage the OpenAI API key used by the openai classifier.

The key is stored in the system keyring (service "conversa").
The OPENAI_API_KEY environment variable takes precedence over the stored key.`,
	}

	cmd.AddCommand(newAuthSetKeyCommand(deps))
	cmd.AddCommand(newAuthStatusCommand(deps))
	cmd.AddCommand(newAuthClearCommand(deps))
	return cmd
}

func newAuthSetKeyCommand(deps *CommandDeps) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store the OpenAI API key in the keyring",
		Example: `  # Prompt for the key
  conversa auth set-key

  # Non-interactive
  echo "$KEY" | conversa auth set-key`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("key") {
				var err error
				key, err = deps.ReadSecret(cmd, "OpenAI API key: ")
				if err != nil {
					return err
				}
			}
			if err := deps.Credentials.Save(key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key stored (%s)\n", credentials.MaskAPIKey(strings.TrimSpace(key)))
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "API key (prompted when omitted)")
	return cmd
}

func newAuthStatusCommand(deps *CommandDeps) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where the API key comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := deps.Credentials.Status()
			if err != nil {
				return err
			}
			if ok, err := writeStructured(cmd.OutOrStdout(), config.OutputFormat(output), status); ok {
				return err
			}
			printAuthStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json, yaml")
	return cmd
}

func printAuthStatus(w io.Writer, s credentials.Status) {
	if !s.Configured {
		fmt.Fprintln(w, "API key: not configured")
		fmt.Fprintln(w, "Run 'conversa auth set-key' or set OPENAI_API_KEY.")
		return
	}
	fmt.Fprintf(w, "API key: %s\n", s.Masked)
	fmt.Fprintf(w, "Source:  %s\n", s.Source)
	if s.Shadowed {
		fmt.Fprintln(w, "Note:    a key is also stored in the keyring but the environment takes precedence.")
	}
}

func newAuthClearCommand(deps *CommandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Credentials.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored API key removed.")
			return nil
		},
	}
}
