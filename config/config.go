// Package config provides configuration management for the conversa CLI.
// It supports loading configuration from a YAML file, a .env file,
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/conversa/pkg/classify"
	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
	"github.com/otherjamesbrown/conversa/pkg/media"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// OutputFormat defines the supported report formats.
type OutputFormat string

const (
	// OutputFormatText is the human-readable report.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Default configuration values.
const (
	DefaultOutputPath   = "resumo_analises_final.txt"
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".conversa"
	DefaultConfigFile   = "config.yaml"
	DefaultCacheTTL     = 7 * 24 * time.Hour
	DefaultRedisURL     = "redis://localhost:6379/0"
	DefaultEnvFile      = ".env"
)

// ReportConfig controls which sections are computed and how.
type ReportConfig struct {
	// AllSections renders the extended sections for every dialect.
	AllSections bool `yaml:"all_sections,omitempty"`

	// Parallel computes sections concurrently.
	Parallel bool `yaml:"parallel,omitempty"`

	// MetricsFile, when set, receives the run metrics in the Prometheus
	// text format.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// MediaConfig controls the attachment folder scans.
type MediaConfig struct {
	StickerExtensions []string `yaml:"sticker_extensions,omitempty"`
	AudioExtensions   []string `yaml:"audio_extensions,omitempty"`
	AudioLimit        int      `yaml:"audio_limit,omitempty"`

	// Fingerprint is bytes (raw content) or pixels (decoded WebP).
	Fingerprint string `yaml:"fingerprint,omitempty"`
}

// ClassifierConfig selects the spelling and sentiment backend.
type ClassifierConfig struct {
	Kind classify.Kind `yaml:"kind"`

	// OpenAI settings. The API key is never stored here; see the
	// credentials package.
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`

	// Lexicon backend word lists.
	PositiveWordsFile string `yaml:"positive_words_file,omitempty"`
	NegativeWordsFile string `yaml:"negative_words_file,omitempty"`
	DictionaryFile    string `yaml:"dictionary_file,omitempty"`

	// Cache is none, memory or redis.
	Cache    string        `yaml:"cache,omitempty"`
	RedisURL string        `yaml:"redis_url,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl,omitempty"`
}

// LexiconConfig overrides the built-in vocabularies. Empty lists keep
// the defaults.
type LexiconConfig struct {
	Slang       []string `yaml:"slang,omitempty"`
	Endearment  []string `yaml:"endearment,omitempty"`
	Frustration []string `yaml:"frustration,omitempty"`
}

// Config holds the CLI configuration settings.
type Config struct {
	// Dialect pins the transcript grammar: auto, seconds or minutes.
	Dialect transcript.Dialect `yaml:"dialect"`

	// Encoding is the transcript charset: utf-8, latin1 or windows-1252.
	Encoding string `yaml:"encoding"`

	// OutputPath is where the report is written. "-" means stdout.
	OutputPath string `yaml:"output_path"`

	// OutputFormat is the report format.
	OutputFormat OutputFormat `yaml:"output_format"`

	// MediaDir and AudioDir are the default attachment folders.
	MediaDir string `yaml:"media_dir,omitempty"`
	AudioDir string `yaml:"audio_dir,omitempty"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`

	// LogFormat is console or json.
	LogFormat string `yaml:"log_format,omitempty"`

	Report     ReportConfig     `yaml:"report"`
	Media      MediaConfig      `yaml:"media"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Lexicons   LexiconConfig    `yaml:"lexicons,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Dialect:      transcript.DialectAuto,
		Encoding:     transcript.EncodingUTF8,
		OutputPath:   DefaultOutputPath,
		OutputFormat: DefaultOutputFormat,
		LogFormat:    LogFormatConsole,
		Media: MediaConfig{
			StickerExtensions: append([]string(nil), media.DefaultStickerExtensions...),
			AudioExtensions:   append([]string(nil), media.DefaultAudioExtensions...),
			AudioLimit:        media.DefaultAudioLimit,
			Fingerprint:       media.ModeBytes,
		},
		Classifier: ClassifierConfig{
			Kind:     classify.KindNone,
			Model:    classify.DefaultOpenAIModel,
			Cache:    classify.CacheNone,
			RedisURL: DefaultRedisURL,
			CacheTTL: DefaultCacheTTL,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $CONVERSA_CONFIG_DIR if set, otherwise ~/.conversa
func ConfigDir() (string, error) {
	if dir := os.Getenv("CONVERSA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration. Sources are applied in this order
// (later sources override earlier):
// 1. Default values
// 2. Config file (path, or ~/.conversa/config.yaml when path is empty)
// 3. A .env file in the working directory
// 4. Environment variables (CONVERSA_*)
//
// An explicit path that does not exist is an error; a missing default
// file is not.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("getting config path: %w", err)
		}
		path = p
	}

	if err := loadFromFile(cfg, path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		if explicit {
			return nil, fmt.Errorf("%w: config file %s", cverrors.ErrNotFound, path)
		}
	}

	// The .env file never overrides variables already in the environment.
	_ = godotenv.Load(DefaultEnvFile)

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Keys absent from the file keep their current values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: parsing config file: %v", cverrors.ErrValidation, err)
	}
	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("CONVERSA_DIALECT"); v != "" {
		cfg.Dialect = transcript.Dialect(v)
	}
	if v := os.Getenv("CONVERSA_ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := os.Getenv("CONVERSA_OUTPUT"); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv("CONVERSA_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("CONVERSA_MEDIA_DIR"); v != "" {
		cfg.MediaDir = v
	}
	if v := os.Getenv("CONVERSA_AUDIO_DIR"); v != "" {
		cfg.AudioDir = v
	}
	if v := os.Getenv("CONVERSA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("CONVERSA_METRICS_FILE"); v != "" {
		cfg.Report.MetricsFile = v
	}
	if v := os.Getenv("CONVERSA_FINGERPRINT"); v != "" {
		cfg.Media.Fingerprint = v
	}
	if v := os.Getenv("CONVERSA_CLASSIFIER"); v != "" {
		cfg.Classifier.Kind = classify.Kind(v)
	}
	if v := os.Getenv("CONVERSA_OPENAI_MODEL"); v != "" {
		cfg.Classifier.Model = v
	}
	if v := os.Getenv("CONVERSA_OPENAI_BASE_URL"); v != "" {
		cfg.Classifier.BaseURL = v
	}
	if v := os.Getenv("CONVERSA_CACHE"); v != "" {
		cfg.Classifier.Cache = v
	}
	if v := os.Getenv("CONVERSA_REDIS_URL"); v != "" {
		cfg.Classifier.RedisURL = v
	}

	if v := os.Getenv("CONVERSA_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: CONVERSA_CACHE_TTL: %v", cverrors.ErrValidation, err)
		}
		cfg.Classifier.CacheTTL = ttl
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"CONVERSA_DEBUG", &cfg.Debug},
		{"CONVERSA_ALL_SECTIONS", &cfg.Report.AllSections},
		{"CONVERSA_PARALLEL", &cfg.Report.Parallel},
	}
	for _, b := range bools {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", cverrors.ErrValidation, b.name, err)
		}
		*b.dst = parsed
	}

	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if !c.Dialect.IsValid() {
		return fmt.Errorf("%w: invalid dialect: %q (must be auto, seconds, or minutes)", cverrors.ErrValidation, c.Dialect)
	}
	if !transcript.ValidEncoding(c.Encoding) {
		return fmt.Errorf("%w: invalid encoding: %q (must be utf-8, latin1, or windows-1252)", cverrors.ErrValidation, c.Encoding)
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return fmt.Errorf("%w: output_path is required", cverrors.ErrValidation)
	}
	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("%w: invalid output_format: %q (must be text, json, or yaml)", cverrors.ErrValidation, c.OutputFormat)
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: invalid log_format: %q (must be console or json)", cverrors.ErrValidation, c.LogFormat)
	}
	if c.Media.AudioLimit < 0 {
		return fmt.Errorf("%w: media.audio_limit must not be negative", cverrors.ErrValidation)
	}
	if _, err := media.NewFingerprinter(c.Media.Fingerprint); err != nil {
		return fmt.Errorf("%w: media.fingerprint: %v", cverrors.ErrValidation, err)
	}
	if !c.Classifier.Kind.IsValid() {
		return fmt.Errorf("%w: invalid classifier.kind: %q (must be none, lexicon, or openai)", cverrors.ErrValidation, c.Classifier.Kind)
	}
	switch c.Classifier.Cache {
	case classify.CacheNone, classify.CacheMemory, classify.CacheRedis:
	default:
		return fmt.Errorf("%w: invalid classifier.cache: %q (must be none, memory, or redis)", cverrors.ErrValidation, c.Classifier.Cache)
	}
	if c.Classifier.Cache == classify.CacheRedis && c.Classifier.CacheTTL <= 0 {
		return fmt.Errorf("%w: classifier cache_ttl must be positive", cverrors.ErrValidation)
	}
	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// Marshal renders cfg as the YAML stored by SaveConfig. Durations are
// written in time.Duration string form.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// SaveConfig saves the configuration to the config file and returns its path.
func SaveConfig(cfg *Config) (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}

	// Ensure config directory exists.
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
