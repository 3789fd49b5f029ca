// Package main provides the conversa CLI entry point.
// conversa analyzes exported chat transcripts and writes a report of
// activity, latency, lexical, humor and sentiment patterns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/cmd"
	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/pkg/buildinfo"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	cfgFile   string
	debug     bool
	logFormat string
}

// newRootCmd builds the command tree. A nil deps, or one without a
// LoadConfig, gets a config loader bound to the global flags.
func newRootCmd(deps *cmd.CommandDeps) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "conversa",
		Short: "Chat transcript analytics",
		Long: `conversa reads an exported group chat transcript and writes a report
covering who talks, when and how: message streaks, response latency,
laughter, emoji, word habits, activity periods, slang and formality,
optional spelling and sentiment classification, and duplicate media.

COMMON WORKFLOWS:
  Analyze a chat:     conversa analyze conversa.txt --media pastaconversa --audio pastaaudio
  Check the parse:    conversa inspect conversa.txt
  Use OpenAI:         conversa auth set-key  →  conversa analyze conversa.txt --classifier openai
  Show settings:      conversa config show`,
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.cfgFile, "config", "", "config file (default ~/.conversa/config.yaml)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: console, json")

	if deps == nil {
		deps = cmd.DefaultDeps()
		deps.LoadConfig = nil
	}
	if deps.LoadConfig == nil {
		deps.LoadConfig = flags.loadConfig(rootCmd)
	}

	rootCmd.AddCommand(cmd.NewAnalyzeCommand(deps))
	rootCmd.AddCommand(cmd.NewInspectCommand(deps))
	rootCmd.AddCommand(cmd.NewAuthCommand(deps))
	rootCmd.AddCommand(cmd.NewConfigCommand(deps))
	rootCmd.AddCommand(cmd.NewVersionCommand())

	return rootCmd
}

// loadConfig returns a loader that applies the global flags on top of
// the file and environment settings.
func (f *globalFlags) loadConfig(root *cobra.Command) func() (*config.Config, error) {
	return func() (*config.Config, error) {
		cfg, err := config.LoadConfig(f.cfgFile)
		if err != nil {
			return nil, err
		}
		if root.PersistentFlags().Changed("debug") {
			cfg.Debug = f.debug
		}
		if root.PersistentFlags().Changed("log-format") {
			cfg.LogFormat = f.logFormat
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

func main() {
	// Cancel the run on interrupt so in-flight sections stop early.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
