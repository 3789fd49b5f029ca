package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// inspectTimeLayout renders message timestamps in the report's date order.
const inspectTimeLayout = "02/01/2006 15:04:05"

// InspectResult summarizes how a transcript was parsed.
type InspectResult struct {
	Source   string   `json:"source" yaml:"source"`
	Dialect  string   `json:"dialect" yaml:"dialect"`
	Lines    int      `json:"lines" yaml:"lines"`
	Matched  int      `json:"matched" yaml:"matched"`
	Dropped  int      `json:"dropped" yaml:"dropped"`
	Authors  []string `json:"authors" yaml:"authors"`
	First    string   `json:"first,omitempty" yaml:"first,omitempty"`
	Last     string   `json:"last,omitempty" yaml:"last,omitempty"`
	SpanDays int      `json:"span_days" yaml:"span_days"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()
	var (
		dialect  string
		encoding string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "inspect <transcript>",
		Short: "Show how a transcript parses without running the analysis",
		Long: `Parse a transcript and report the detected dialect, how many lines
matched the message grammar, the authors and the time span covered.

Useful to check a dialect or encoding choice before a full analysis.`,
		Example: `  conversa inspect conversa.txt
  conversa inspect conversa.txt --encoding latin1 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if cmd.Flags().Changed("dialect") {
				cfg.Dialect = transcript.Dialect(dialect)
			}
			if cmd.Flags().Changed("encoding") {
				cfg.Encoding = encoding
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputFormat = config.OutputFormat(output)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := transcript.ReadOptions{Dialect: cfg.Dialect, Encoding: cfg.Encoding}
			var tr *transcript.Transcript
			if args[0] == stdioPath {
				tr, err = transcript.Read(cmd.InOrStdin(), opts)
			} else {
				tr, err = transcript.ReadFile(args[0], opts)
			}
			if err != nil {
				return err
			}

			result := inspect(args[0], tr)
			if ok, err := writeStructured(cmd.OutOrStdout(), cfg.OutputFormat, result); ok {
				return err
			}
			printInspect(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&dialect, "dialect", "", "transcript dialect: auto, seconds, minutes")
	cmd.Flags().StringVar(&encoding, "encoding", "", "transcript encoding: utf-8, latin1, windows-1252")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output format: text, json, yaml")

	return cmd
}

func inspect(source string, tr *transcript.Transcript) InspectResult {
	stats := tr.Stats()
	result := InspectResult{
		Source:  source,
		Dialect: tr.Dialect().String(),
		Lines:   stats.Lines,
		Matched: stats.Matched,
		Dropped: stats.Dropped,
		Authors: tr.Authors(),
	}
	if result.Authors == nil {
		result.Authors = []string{}
	}
	first, last := tr.Span()
	if !first.IsZero() {
		result.First = first.Format(inspectTimeLayout)
		result.Last = last.Format(inspectTimeLayout)
		result.SpanDays = int(last.Sub(first)/(24*time.Hour)) + 1
	}
	return result
}

func printInspect(w io.Writer, r InspectResult) {
	fmt.Fprintf(w, "Source:   %s\n", r.Source)
	fmt.Fprintf(w, "Dialect:  %s\n", r.Dialect)
	fmt.Fprintf(w, "Lines:    %d (%d matched, %d dropped)\n", r.Lines, r.Matched, r.Dropped)
	if len(r.Authors) == 0 {
		fmt.Fprintln(w, "Authors:  none")
	} else {
		fmt.Fprintf(w, "Authors:  %d (%s)\n", len(r.Authors), strings.Join(r.Authors, ", "))
	}
	if r.First != "" {
		fmt.Fprintf(w, "First:    %s\n", r.First)
		fmt.Fprintf(w, "Last:     %s\n", r.Last)
		fmt.Fprintf(w, "Span:     %d days\n", r.SpanDays)
	}
}
