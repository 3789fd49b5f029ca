package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/conversa/config"
	"github.com/otherjamesbrown/conversa/pkg/analysis"
	"github.com/otherjamesbrown/conversa/pkg/classify"
	"github.com/otherjamesbrown/conversa/pkg/logging"
	"github.com/otherjamesbrown/conversa/pkg/media"
	"github.com/otherjamesbrown/conversa/pkg/observability"
	"github.com/otherjamesbrown/conversa/pkg/report"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// stdioPath selects stdin for the transcript and stdout for the report.
const stdioPath = "-"

// analyzeFlags are the per-run overrides of the configuration.
type analyzeFlags struct {
	mediaDir    string
	audioDir    string
	out         string
	dialect     string
	encoding    string
	classifier  string
	output      string
	metricsFile string
	allSections bool
	parallel    bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(deps *CommandDeps) *cobra.Command {
	deps = deps.withDefaults()
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <transcript>",
		Short: "Analyze a chat transcript and write the report",
		Long: `Analyze an exported chat transcript and write a report of activity
patterns, response latency, lexical habits, humor and sentiment signals and
duplicate media.

The transcript is one message per line in one of two timestamp dialects:
  seconds   [DD/MM/YY, HH:MM:SS] Author: Body
  minutes   DD/MM/YYYY HH:MM - Author: Body

Lines that do not match (system notices, continuation lines) are skipped.
The dialect is detected from the first lines unless --dialect pins it.

The extended sections (daily averages, social graph, lexicons, style,
spelling, sentiment, quotes, records) are rendered for minutes transcripts,
or for every transcript with --all-sections.

Use "-" as the transcript to read stdin and as --out to write stdout.`,
		Example: `  # Analyze with stickers and audio folders
  conversa analyze conversa.txt --media pastaconversa --audio pastaaudio

  # JSON report to stdout
  conversa analyze conversa.txt --output json --out -

  # Every section, classified locally, computed in parallel
  conversa analyze conversa.txt --all-sections --classifier lexicon --parallel`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			return runAnalyze(cmd, deps, cfg, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.mediaDir, "media", "", "sticker folder to scan for duplicates")
	f.StringVar(&flags.audioDir, "audio", "", "audio folder to rank by size")
	f.StringVarP(&flags.out, "out", "o", "", "report path, - for stdout (default resumo_analises_final.txt)")
	f.StringVar(&flags.dialect, "dialect", "", "transcript dialect: auto, seconds, minutes")
	f.StringVar(&flags.encoding, "encoding", "", "transcript encoding: utf-8, latin1, windows-1252")
	f.StringVar(&flags.classifier, "classifier", "", "spelling and sentiment backend: none, lexicon, openai")
	f.StringVar(&flags.output, "output", "", "report format: text, json, yaml")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this path")
	f.BoolVar(&flags.allSections, "all-sections", false, "render the extended sections for every dialect")
	f.BoolVar(&flags.parallel, "parallel", false, "compute report sections concurrently")

	return cmd
}

// apply overlays the flags the user set onto cfg.
func (f *analyzeFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("media") {
		cfg.MediaDir = f.mediaDir
	}
	if changed("audio") {
		cfg.AudioDir = f.audioDir
	}
	if changed("out") {
		cfg.OutputPath = f.out
	}
	if changed("dialect") {
		cfg.Dialect = transcript.Dialect(f.dialect)
	}
	if changed("encoding") {
		cfg.Encoding = f.encoding
	}
	if changed("classifier") {
		cfg.Classifier.Kind = classify.Kind(f.classifier)
	}
	if changed("output") {
		cfg.OutputFormat = config.OutputFormat(f.output)
	}
	if changed("metrics-file") {
		cfg.Report.MetricsFile = f.metricsFile
	}
	if changed("all-sections") {
		cfg.Report.AllSections = f.allSections
	}
	if changed("parallel") {
		cfg.Report.Parallel = f.parallel
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, deps *CommandDeps, cfg *config.Config, source string) error {
	start := time.Now()
	runID := deps.NewRunID()
	ctx := logging.ContextWithRunID(cmd.Context(), runID)
	logger := deps.NewLogger(cfg, "analyze").WithContext(ctx)

	tracer := observability.NewTracer()
	metrics := observability.NewMetrics()
	ctx, span := tracer.StartRunSpan(ctx, runID, source)
	defer span.End()
	runSpan := observability.NewSpanHelper(span)

	err := analyze(ctx, cmd, deps, cfg, source, logger, tracer, metrics)
	metrics.RunDurationSeconds.Set(time.Since(start).Seconds())
	if cfg.Report.MetricsFile != "" {
		if werr := metrics.WriteTextfile(cfg.Report.MetricsFile); werr != nil {
			logger.Warn("Metrics file not written", logging.Err(werr))
		}
	}
	if err != nil {
		runSpan.SetError(err)
		return err
	}
	runSpan.SetSuccess()
	return nil
}

func analyze(ctx context.Context, cmd *cobra.Command, deps *CommandDeps, cfg *config.Config, source string,
	logger logging.Logger, tracer *observability.Tracer, metrics *observability.Metrics) error {

	tr, err := readTranscript(ctx, cmd, cfg, source, tracer)
	if err != nil {
		return err
	}
	stats := tr.Stats()
	metrics.RecordLines(stats.Matched, stats.Dropped)
	logger.Info("Transcript parsed",
		logging.F("source", source),
		logging.F("dialect", tr.Dialect().String()),
		logging.F("messages", stats.Matched),
		logging.F("dropped", stats.Dropped))

	fingerprinter, err := media.NewFingerprinter(cfg.Media.Fingerprint)
	if err != nil {
		return err
	}
	scanner := media.NewScanner(media.Options{
		StickerExtensions: cfg.Media.StickerExtensions,
		AudioExtensions:   cfg.Media.AudioExtensions,
		AudioLimit:        cfg.Media.AudioLimit,
		Fingerprinter:     fingerprinter,
	}, logger)

	clf, closeClassifier, err := buildClassifier(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeClassifier(); err != nil {
			logger.Debug("Classifier close failed", logging.Err(err))
		}
	}()

	rep, err := report.Build(ctx, report.Input{
		Transcript:  tr,
		MediaDir:    cfg.MediaDir,
		AudioDir:    cfg.AudioDir,
		Scanner:     scanner,
		Classifier:  clf,
		Slang:       lexicon("slang", cfg.Lexicons.Slang, analysis.DefaultSlang),
		Endearment:  lexicon("endearment", cfg.Lexicons.Endearment, analysis.DefaultEndearment),
		Frustration: lexicon("frustration", cfg.Lexicons.Frustration, analysis.DefaultFrustration),
		AllSections: cfg.Report.AllSections,
		Parallel:    cfg.Report.Parallel,
		Tracer:      tracer,
		Metrics:     metrics,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	n, err := writeReport(ctx, cmd.OutOrStdout(), cfg, rep, tracer)
	if err != nil {
		return err
	}
	metrics.ReportBytes.Set(float64(n))

	logger.Info("Analysis complete",
		logging.F("output", cfg.OutputPath),
		logging.F("format", cfg.OutputFormat.String()),
		logging.F("size", humanize.Bytes(uint64(n))))
	return nil
}

func readTranscript(ctx context.Context, cmd *cobra.Command, cfg *config.Config, source string,
	tracer *observability.Tracer) (*transcript.Transcript, error) {

	_, span := tracer.StartParseSpan(ctx)
	defer span.End()
	helper := observability.NewSpanHelper(span)

	opts := transcript.ReadOptions{Dialect: cfg.Dialect, Encoding: cfg.Encoding}
	var (
		tr  *transcript.Transcript
		err error
	)
	if source == stdioPath {
		tr, err = transcript.Read(cmd.InOrStdin(), opts)
	} else {
		tr, err = transcript.ReadFile(source, opts)
	}
	if err != nil {
		helper.SetError(err)
		return nil, err
	}
	helper.SetTranscript(tr.Dialect().String(), tr.Len())
	helper.SetSuccess()
	return tr, nil
}

// buildClassifier resolves the API key when needed and builds the
// configured backend. A missing key for openai is fatal.
func buildClassifier(ctx context.Context, deps *CommandDeps, cfg *config.Config, logger logging.Logger) (classify.Classifier, func() error, error) {
	opts := classify.Options{
		Kind: cfg.Classifier.Kind,
		OpenAI: classify.OpenAIOptions{
			Model:   cfg.Classifier.Model,
			BaseURL: cfg.Classifier.BaseURL,
		},
		PositiveWordsFile: cfg.Classifier.PositiveWordsFile,
		NegativeWordsFile: cfg.Classifier.NegativeWordsFile,
		DictionaryFile:    cfg.Classifier.DictionaryFile,
		CacheBackend:      cfg.Classifier.Cache,
		RedisURL:          cfg.Classifier.RedisURL,
		CacheTTL:          cfg.Classifier.CacheTTL,
	}
	if opts.Kind == classify.KindOpenAI {
		key, source, err := deps.Credentials.APIKey()
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Using OpenAI API key", logging.F("source", source))
		opts.OpenAI.APIKey = key
	}

	clf, closeFn, err := deps.NewClassifier(ctx, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	if clf != nil {
		logger.Info("Classifier ready", logging.F("classifier", clf.Name()))
	}
	return clf, closeFn, nil
}

func lexicon(name string, words, defaults []string) *analysis.Lexicon {
	if len(words) == 0 {
		words = defaults
	}
	return analysis.NewLexicon(name, words)
}

// writeReport renders rep in memory and writes it to stdout or, atomically,
// to the configured path. It returns the report size.
func writeReport(ctx context.Context, stdout io.Writer, cfg *config.Config, rep *report.Report,
	tracer *observability.Tracer) (int, error) {

	_, span := tracer.StartWriteSpan(ctx)
	defer span.End()
	helper := observability.NewSpanHelper(span)

	format, err := report.ParseFormat(cfg.OutputFormat.String())
	if err != nil {
		helper.SetError(err)
		return 0, err
	}
	data, err := report.Render(rep, format)
	if err != nil {
		helper.SetError(err)
		return 0, err
	}

	if cfg.OutputPath == stdioPath {
		_, err = stdout.Write(data)
	} else {
		err = report.WriteFile(cfg.OutputPath, data)
	}
	if err != nil {
		helper.SetError(err)
		return 0, err
	}
	helper.SetSuccess()
	return len(data), nil
}
