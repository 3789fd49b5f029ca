// Package cmd provides CLI commands for the conversa tool.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/credentials"
	"github.com/otherjamesbrown/conversa/pkg/classify"
	"github.com/otherjamesbrown/conversa/pkg/logging"
)

// CommandDeps holds the dependencies shared by all commands.
type CommandDeps struct {
	// LoadConfig returns the effective configuration (file, env and
	// global flags applied).
	LoadConfig func() (*config.Config, error)

	// Credentials resolves the OpenAI API key.
	Credentials *credentials.Store

	// NewLogger builds the logger for one command run.
	NewLogger func(cfg *config.Config, command string) logging.Logger

	// NewClassifier builds the spelling and sentiment backend.
	NewClassifier func(ctx context.Context, opts classify.Options, logger logging.Logger) (classify.Classifier, func() error, error)

	// ReadSecret prompts for a secret on the command's input.
	ReadSecret func(cmd *cobra.Command, prompt string) (string, error)

	// NewRunID returns the identifier attached to an analysis run.
	NewRunID func() string
}

// DefaultDeps returns the default dependencies for production use.
func DefaultDeps() *CommandDeps {
	return &CommandDeps{
		LoadConfig:    func() (*config.Config, error) { return config.LoadConfig("") },
		Credentials:   credentials.NewStore(),
		NewLogger:     NewLogger,
		NewClassifier: classify.New,
		ReadSecret:    readSecret,
		NewRunID:      uuid.NewString,
	}
}

func (d *CommandDeps) withDefaults() *CommandDeps {
	if d == nil {
		return DefaultDeps()
	}
	def := DefaultDeps()
	out := *d
	if out.LoadConfig == nil {
		out.LoadConfig = def.LoadConfig
	}
	if out.Credentials == nil {
		out.Credentials = def.Credentials
	}
	if out.NewLogger == nil {
		out.NewLogger = def.NewLogger
	}
	if out.NewClassifier == nil {
		out.NewClassifier = def.NewClassifier
	}
	if out.ReadSecret == nil {
		out.ReadSecret = def.ReadSecret
	}
	if out.NewRunID == nil {
		out.NewRunID = def.NewRunID
	}
	return &out
}

// NewLogger builds a stderr logger from the configuration. Console output
// is colored only when stderr is a terminal.
func NewLogger(cfg *config.Config, command string) logging.Logger {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.Config{
		Level:      level,
		Command:    command,
		JSONFormat: cfg.LogFormat == config.LogFormatJSON,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
		Output:     os.Stderr,
	})
}

// readSecret reads a secret without echo when the input is a terminal and
// as a plain line otherwise.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
