package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONVERSA_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("CONVERSA_DEBUG", "")
	t.Setenv("CONVERSA_LOG_FORMAT", "")
	t.Chdir(dir)
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(nil)
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd(nil)
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"analyze", "inspect", "auth", "config", "version"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"config", "debug", "log-format"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	isolate(t)
	out, err := execute(t, "version", "--output", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "conversa", info["name"])
	assert.NotEmpty(t, info["go_version"])
}

func TestGlobalFlags_AppliedToConfig(t *testing.T) {
	isolate(t)
	out, err := execute(t, "config", "show", "--debug", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "debug: true")
	assert.Contains(t, out, "log_format: json")
}

func TestGlobalFlags_InvalidLogFormat(t *testing.T) {
	isolate(t)
	_, err := execute(t, "config", "show", "--log-format", "xml")
	require.Error(t, err)
}

func TestConfigFlag_MissingFile(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "config", "show", "--config", filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}

func TestConfigFlag_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dialect: minutes\noutput_path: saida.txt\n"), 0o600))

	out, err := execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dialect: minutes")
	assert.Contains(t, out, "output_path: saida.txt")
}

func TestAnalyze_EndToEnd(t *testing.T) {
	dir := isolate(t)
	chat := strings.Join([]string{
		"[01/02/23, 10:00:00] Ana: bom dia kkkk",
		"[01/02/23, 10:00:30] Bruno: tudo bem?",
		"[01/02/23, 10:01:00] Ana: sim 😂",
	}, "\n") + "\n"
	src := filepath.Join(dir, "conversa.txt")
	require.NoError(t, os.WriteFile(src, []byte(chat), 0o600))
	dst := filepath.Join(dir, "out", "resumo.txt")

	_, err := execute(t, "analyze", src, "--out", dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Usuário que mais faz perguntas: Bruno com 1 perguntas")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(data)), "Análises concluídas e salvas no arquivo."))
}
