package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/otherjamesbrown/conversa/pkg/classify"
	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
	"github.com/otherjamesbrown/conversa/pkg/media"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// isolate points the config dir and working directory at fresh temp
// dirs so no real config or .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONVERSA_CONFIG_DIR", dir)
	t.Chdir(t.TempDir())
	return dir
}

// TestDefaultConfig verifies default configuration values.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dialect != transcript.DialectAuto {
		t.Errorf("Dialect = %v, want auto", cfg.Dialect)
	}
	if cfg.Encoding != transcript.EncodingUTF8 {
		t.Errorf("Encoding = %v, want utf-8", cfg.Encoding)
	}
	if cfg.OutputPath != "resumo_analises_final.txt" {
		t.Errorf("OutputPath = %v", cfg.OutputPath)
	}
	if cfg.OutputFormat != OutputFormatText {
		t.Errorf("OutputFormat = %v, want text", cfg.OutputFormat)
	}
	if cfg.Classifier.Kind != classify.KindNone {
		t.Errorf("Classifier.Kind = %v, want none", cfg.Classifier.Kind)
	}
	if cfg.Media.AudioLimit != media.DefaultAudioLimit {
		t.Errorf("Media.AudioLimit = %v", cfg.Media.AudioLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// TestDefaultConfig_ExtensionsAreCopies ensures callers cannot mutate the
// package defaults through a config.
func TestDefaultConfig_ExtensionsAreCopies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Media.StickerExtensions[0] = ".png"
	if media.DefaultStickerExtensions[0] != ".webp" {
		t.Error("DefaultConfig shares the media defaults slice")
	}
}

// TestOutputFormat_IsValid verifies output format validation.
func TestOutputFormat_IsValid(t *testing.T) {
	tests := []struct {
		format OutputFormat
		valid  bool
	}{
		{OutputFormatText, true},
		{OutputFormatJSON, true},
		{OutputFormatYAML, true},
		{"invalid", false},
		{"", false},
		{"JSON", false}, // Case sensitive
	}

	for _, tc := range tests {
		if got := tc.format.IsValid(); got != tc.valid {
			t.Errorf("OutputFormat(%q).IsValid() = %v, want %v", tc.format, got, tc.valid)
		}
	}
}

// TestValidate covers each rejected field.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"dialect", func(c *Config) { c.Dialect = "hours" }},
		{"encoding", func(c *Config) { c.Encoding = "ebcdic" }},
		{"output path", func(c *Config) { c.OutputPath = " " }},
		{"output format", func(c *Config) { c.OutputFormat = "xml" }},
		{"log format", func(c *Config) { c.LogFormat = "logfmt" }},
		{"audio limit", func(c *Config) { c.Media.AudioLimit = -1 }},
		{"fingerprint", func(c *Config) { c.Media.Fingerprint = "md5" }},
		{"classifier", func(c *Config) { c.Classifier.Kind = "bert" }},
		{"cache", func(c *Config) { c.Classifier.Cache = "memcached" }},
		{"cache ttl", func(c *Config) {
			c.Classifier.Cache = classify.CacheRedis
			c.Classifier.CacheTTL = 0
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if !cverrors.IsValidation(err) {
				t.Errorf("Validate() = %v, want validation error", err)
			}
		})
	}
}

// TestConfigDir verifies the env override.
func TestConfigDir(t *testing.T) {
	dir := isolate(t)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %v, want %v", got, dir)
	}

	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error = %v", err)
	}
	if path != filepath.Join(dir, "config.yaml") {
		t.Errorf("ConfigPath() = %v", path)
	}
}

// TestLoadConfig_NoFile returns defaults when the default file is absent.
func TestLoadConfig_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputPath != DefaultOutputPath {
		t.Errorf("OutputPath = %v", cfg.OutputPath)
	}
}

// TestLoadConfig_ExplicitMissingFile fails for a named file that does not exist.
func TestLoadConfig_ExplicitMissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfig(filepath.Join(dir, "nope.yaml"))
	if !cverrors.IsNotFound(err) {
		t.Errorf("LoadConfig() = %v, want not found", err)
	}
}

// TestLoadConfig_FromFile reads a partial file over the defaults.
func TestLoadConfig_FromFile(t *testing.T) {
	dir := isolate(t)

	content := `dialect: minutes
output_format: json
media_dir: ./stickers
report:
  all_sections: true
classifier:
  kind: lexicon
  cache: redis
  cache_ttl: 2h
lexicons:
  slang: [blz, tmj]
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Dialect != transcript.MinutesDialect {
		t.Errorf("Dialect = %v", cfg.Dialect)
	}
	if cfg.OutputFormat != OutputFormatJSON {
		t.Errorf("OutputFormat = %v", cfg.OutputFormat)
	}
	if cfg.MediaDir != "./stickers" {
		t.Errorf("MediaDir = %v", cfg.MediaDir)
	}
	if !cfg.Report.AllSections {
		t.Error("Report.AllSections should be true")
	}
	if cfg.Classifier.Kind != classify.KindLexicon {
		t.Errorf("Classifier.Kind = %v", cfg.Classifier.Kind)
	}
	if cfg.Classifier.CacheTTL != 2*time.Hour {
		t.Errorf("Classifier.CacheTTL = %v", cfg.Classifier.CacheTTL)
	}
	if cfg.Classifier.RedisURL != DefaultRedisURL {
		t.Errorf("Classifier.RedisURL = %v, want default kept", cfg.Classifier.RedisURL)
	}
	if len(cfg.Lexicons.Slang) != 2 {
		t.Errorf("Lexicons.Slang = %v", cfg.Lexicons.Slang)
	}
	if cfg.Encoding != transcript.EncodingUTF8 {
		t.Errorf("Encoding = %v, want default kept", cfg.Encoding)
	}
}

// TestLoadConfig_InvalidFile rejects values that fail validation.
func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("output_format: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(path)
	if !cverrors.IsValidation(err) {
		t.Errorf("LoadConfig() = %v, want validation error", err)
	}
}

// TestLoadConfig_Malformed rejects unparseable YAML.
func TestLoadConfig_Malformed(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("report: [unclosed\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); !cverrors.IsValidation(err) {
		t.Errorf("LoadConfig() = %v, want validation error", err)
	}
}

// TestLoadConfig_EnvOverridesFile verifies environment precedence.
func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output_format: json\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONVERSA_OUTPUT_FORMAT", "yaml")
	t.Setenv("CONVERSA_PARALLEL", "true")
	t.Setenv("CONVERSA_CLASSIFIER", "openai")
	t.Setenv("CONVERSA_CACHE_TTL", "30m")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.OutputFormat != OutputFormatYAML {
		t.Errorf("OutputFormat = %v, want yaml", cfg.OutputFormat)
	}
	if !cfg.Report.Parallel {
		t.Error("Report.Parallel should be true")
	}
	if cfg.Classifier.Kind != classify.KindOpenAI {
		t.Errorf("Classifier.Kind = %v", cfg.Classifier.Kind)
	}
	if cfg.Classifier.CacheTTL != 30*time.Minute {
		t.Errorf("Classifier.CacheTTL = %v", cfg.Classifier.CacheTTL)
	}
}

// TestLoadConfig_BadEnv rejects unparseable env values.
func TestLoadConfig_BadEnv(t *testing.T) {
	tests := map[string]string{
		"CONVERSA_DEBUG":     "sometimes",
		"CONVERSA_CACHE_TTL": "forever",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(name, value)
			if _, err := LoadConfig(""); !cverrors.IsValidation(err) {
				t.Errorf("LoadConfig() = %v, want validation error", err)
			}
		})
	}
}

// TestLoadConfig_DotEnv reads variables from a .env file.
func TestLoadConfig_DotEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CONVERSA_AUDIO_DIR", "")
	os.Unsetenv("CONVERSA_AUDIO_DIR")
	t.Cleanup(func() { os.Unsetenv("CONVERSA_AUDIO_DIR") })

	if err := os.WriteFile(DefaultEnvFile, []byte("CONVERSA_AUDIO_DIR=./audios\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AudioDir != "./audios" {
		t.Errorf("AudioDir = %v, want ./audios", cfg.AudioDir)
	}
}

// TestSaveConfig round-trips through the config file.
func TestSaveConfig(t *testing.T) {
	dir := isolate(t)

	cfg := DefaultConfig()
	cfg.AudioDir = "/data/audio"
	cfg.Classifier.CacheTTL = 90 * time.Minute

	path, err := SaveConfig(cfg)
	if err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	if path != filepath.Join(dir, "config.yaml") {
		t.Errorf("SaveConfig() path = %v", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.AudioDir != "/data/audio" {
		t.Errorf("AudioDir = %v", loaded.AudioDir)
	}
	if loaded.Classifier.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v", loaded.Classifier.CacheTTL)
	}
}

// TestExpandPath verifies home directory expansion.
func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
		{"~/chats", filepath.Join(home, "chats")},
		{"~", home},
	}
	for _, tc := range tests {
		got, err := ExpandPath(tc.in)
		if err != nil {
			t.Errorf("ExpandPath(%q) error = %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
