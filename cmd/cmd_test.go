package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/credentials"
	"github.com/otherjamesbrown/conversa/pkg/classify"
	"github.com/otherjamesbrown/conversa/pkg/logging"
)

const secondsChat = `[01/02/23, 10:00:00] Ana: bom dia kkkk
[01/02/23, 10:00:30] Bruno: tudo bem?
[01/02/23, 10:01:00] Ana: sim 😂
Mensagens apagadas
`

// fakeClassifier labels "bom" positive and counts one error per message.
type fakeClassifier struct{}

func (fakeClassifier) Name() string { return "fake" }

func (fakeClassifier) Sentiment(_ context.Context, text string) (classify.Label, error) {
	if strings.Contains(text, "bom") {
		return classify.Positive, nil
	}
	return classify.Neutral, nil
}

func (fakeClassifier) Misspellings(_ context.Context, _ string) (int, error) {
	return 1, nil
}

// testEnv isolates config, keyring and working directory for one test.
type testEnv struct {
	dir  string
	cfg  *config.Config
	deps *CommandDeps

	// classifierOpts records the options the last classifier was built with.
	classifierOpts *classify.Options
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv("CONVERSA_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv(credentials.EnvAPIKey, "")
	t.Chdir(dir)

	env := &testEnv{dir: dir, cfg: config.DefaultConfig()}
	env.deps = &CommandDeps{
		LoadConfig: func() (*config.Config, error) {
			cp := *env.cfg
			return &cp, nil
		},
		Credentials: credentials.NewStore(),
		NewLogger: func(*config.Config, string) logging.Logger {
			return logging.NewNopLogger()
		},
		NewClassifier: func(_ context.Context, opts classify.Options, _ logging.Logger) (classify.Classifier, func() error, error) {
			env.classifierOpts = &opts
			if opts.Kind == classify.KindNone {
				return nil, func() error { return nil }, nil
			}
			return fakeClassifier{}, func() error { return nil }, nil
		},
		ReadSecret: func(cmd *cobra.Command, _ string) (string, error) {
			return readSecret(cmd, "")
		},
		NewRunID: func() string { return "run-test" },
	}
	return env
}

func (e *testEnv) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes cmd with args and stdin, returning stdout.
func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// findSubcommand returns the direct child of parent with the given name.
func findSubcommand(parent *cobra.Command, name string) *cobra.Command {
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
