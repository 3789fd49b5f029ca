// Package report assembles the results of every reducer into one report
// and renders it in a fixed section order.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/otherjamesbrown/conversa/pkg/analysis"
	"github.com/otherjamesbrown/conversa/pkg/classify"
	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
	"github.com/otherjamesbrown/conversa/pkg/logging"
	"github.com/otherjamesbrown/conversa/pkg/media"
	"github.com/otherjamesbrown/conversa/pkg/observability"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// Input is everything one analysis run needs.
type Input struct {
	Transcript *transcript.Transcript

	// MediaDir and AudioDir are the attachment folders. Empty means not
	// provided.
	MediaDir string
	AudioDir string
	Scanner  *media.Scanner

	// Classifier backs the spelling and sentiment sections. Nil renders
	// those sections as unavailable.
	Classifier classify.Classifier

	Slang       *analysis.Lexicon
	Endearment  *analysis.Lexicon
	Frustration *analysis.Lexicon

	// AllSections renders the extended sections for every dialect, not
	// only for MinutesDialect transcripts.
	AllSections bool

	// Parallel computes sections concurrently.
	Parallel bool

	Tracer  *observability.Tracer
	Metrics *observability.Metrics
	Logger  logging.Logger
}

// Report holds the results of one run.
type Report struct {
	Dialect     transcript.Dialect     `json:"dialect" yaml:"dialect"`
	Stats       transcript.Stats       `json:"stats" yaml:"stats"`
	Stickers    media.StickerResult    `json:"stickers" yaml:"stickers"`
	Audio       media.AudioResult      `json:"audio" yaml:"audio"`
	Questioner  analysis.AuthorCount   `json:"questioner" yaml:"questioner"`
	Streaks     []analysis.StreakEntry `json:"streaks" yaml:"streaks"`
	Laughs      []analysis.AuthorCount `json:"laughs" yaml:"laughs"`
	Emoji       []analysis.EmojiCount  `json:"emoji" yaml:"emoji"`
	Latency     []analysis.AuthorMean  `json:"latency" yaml:"latency"`
	AuthorWords []analysis.AuthorWord  `json:"author_words" yaml:"author_words"`
	GroupWord   analysis.GroupWord     `json:"group_word" yaml:"group_word"`
	Bands       analysis.BandResult    `json:"bands" yaml:"bands"`
	Monthly     []analysis.MonthCount  `json:"monthly" yaml:"monthly"`
	Extended    *Extended              `json:"extended,omitempty" yaml:"extended,omitempty"`
}

// Extended holds the sections rendered for MinutesDialect transcripts.
// Spelling and Sentiment are nil when no classifier is configured.
type Extended struct {
	DailyAverage    []analysis.AuthorMean     `json:"daily_average" yaml:"daily_average"`
	WordCounts      []analysis.AuthorCount    `json:"word_counts" yaml:"word_counts"`
	AllPriorLatency []analysis.AuthorMean     `json:"all_prior_latency" yaml:"all_prior_latency"`
	SocialGraph     []analysis.Interaction    `json:"social_graph" yaml:"social_graph"`
	Slang           []analysis.AuthorCount    `json:"slang" yaml:"slang"`
	Formality       []analysis.AuthorMean     `json:"formality" yaml:"formality"`
	Style           []analysis.StyleEntry     `json:"style" yaml:"style"`
	Spelling        *analysis.SpellingResult  `json:"spelling,omitempty" yaml:"spelling,omitempty"`
	Sentiment       *analysis.SentimentResult `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
	Endearment      []analysis.AuthorCount    `json:"endearment" yaml:"endearment"`
	Frustration     []analysis.AuthorCount    `json:"frustration" yaml:"frustration"`
	Quotes          []analysis.QuoteCount     `json:"quotes" yaml:"quotes"`
	Longest         *analysis.Longest         `json:"longest,omitempty" yaml:"longest,omitempty"`
	DailyRecord     *analysis.DayRecord       `json:"daily_record,omitempty" yaml:"daily_record,omitempty"`
}

// section computes one part of the report. It returns how many entries
// it produced and how many inputs it had to leave out.
type section struct {
	name    string
	compute func(ctx context.Context) (items, failures int)
}

type builder struct {
	in   Input
	msgs []transcript.Message
	rep  *Report
}

// Build computes every section of the report. Sections only read the
// transcript and each one writes its own field, so with Parallel set
// they run concurrently. Build fails only when ctx is canceled.
func Build(ctx context.Context, in Input) (*Report, error) {
	if in.Transcript == nil {
		return nil, fmt.Errorf("%w: no transcript", cverrors.ErrValidation)
	}
	in = in.withDefaults()

	b := &builder{
		in:   in,
		msgs: in.Transcript.Messages(),
		rep: &Report{
			Dialect: in.Transcript.Dialect(),
			Stats:   in.Transcript.Stats(),
		},
	}
	if in.AllSections || b.rep.Dialect == transcript.MinutesDialect {
		b.rep.Extended = &Extended{}
	}

	sections := b.sections()
	if !in.Parallel {
		for _, s := range sections {
			if err := b.run(ctx, s); err != nil {
				return nil, err
			}
		}
		return b.rep, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sections {
		g.Go(func() error {
			return b.run(gctx, s)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b.rep, nil
}

func (in Input) withDefaults() Input {
	if in.Logger == nil {
		in.Logger = logging.NewNopLogger()
	}
	if in.Scanner == nil {
		in.Scanner = media.NewScanner(media.Options{}, in.Logger)
	}
	if in.Tracer == nil {
		in.Tracer = observability.NewTracer()
	}
	if in.Metrics == nil {
		in.Metrics = observability.NewMetrics()
	}
	if in.Slang == nil {
		in.Slang = analysis.NewLexicon("slang", analysis.DefaultSlang)
	}
	if in.Endearment == nil {
		in.Endearment = analysis.NewLexicon("endearment", analysis.DefaultEndearment)
	}
	if in.Frustration == nil {
		in.Frustration = analysis.NewLexicon("frustration", analysis.DefaultFrustration)
	}
	return in
}

func (b *builder) run(ctx context.Context, s section) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := b.in.Tracer.StartSectionSpan(ctx, s.name)
	defer span.End()
	helper := observability.NewSpanHelper(span)

	start := time.Now()
	items, failures := s.compute(ctx)
	elapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		helper.SetError(err)
		return err
	}

	b.in.Metrics.RecordSection(s.name, elapsed.Seconds())
	helper.SetItems(items, failures)
	helper.SetSuccess()
	b.in.Logger.Debug("Section computed",
		logging.F("section", s.name),
		logging.F("items", items),
		logging.F("duration", elapsed))
	return nil
}

func (b *builder) sections() []section {
	r, msgs := b.rep, b.msgs
	out := []section{
		{"stickers", func(context.Context) (int, int) {
			r.Stickers = b.in.Scanner.Stickers(b.in.MediaDir)
			failed := fileErrors(r.Stickers.Notices)
			b.in.Metrics.RecordMedia(observability.MediaSticker, r.Stickers.Scanned, failed)
			return r.Stickers.Scanned, failed
		}},
		{"audio", func(context.Context) (int, int) {
			r.Audio = b.in.Scanner.Audio(b.in.AudioDir)
			failed := fileErrors(r.Audio.Notices)
			b.in.Metrics.RecordMedia(observability.MediaAudio, len(r.Audio.Files), failed)
			return len(r.Audio.Files), failed
		}},
		{"questions", func(context.Context) (int, int) {
			r.Questioner = analysis.TopQuestioner(msgs)
			return r.Questioner.Count, 0
		}},
		{"streaks", func(context.Context) (int, int) {
			r.Streaks = analysis.Streaks(msgs, TopStreaks)
			return len(r.Streaks), 0
		}},
		{"laughs", func(context.Context) (int, int) {
			r.Laughs = analysis.Laughs(msgs)
			return len(r.Laughs), 0
		}},
		{"emoji", func(context.Context) (int, int) {
			r.Emoji = analysis.TopEmoji(msgs, analysis.TopEmojiCount)
			return len(r.Emoji), 0
		}},
		{"latency", func(context.Context) (int, int) {
			r.Latency = analysis.AdjacentLatency(msgs)
			return len(r.Latency), 0
		}},
		{"author_words", func(context.Context) (int, int) {
			r.AuthorWords = analysis.TopWordPerAuthor(msgs)
			return len(r.AuthorWords), 0
		}},
		{"group_word", func(context.Context) (int, int) {
			r.GroupWord = analysis.TopWord(msgs)
			return r.GroupWord.Count, 0
		}},
		{"bands", func(context.Context) (int, int) {
			r.Bands = analysis.TimeBands(msgs)
			return len(r.Bands.Counts), 0
		}},
		{"monthly", func(context.Context) (int, int) {
			r.Monthly = analysis.MonthlyVolume(msgs)
			return len(r.Monthly), 0
		}},
	}
	if r.Extended == nil {
		return out
	}
	return append(out, b.extendedSections()...)
}

func (b *builder) extendedSections() []section {
	x, msgs := b.rep.Extended, b.msgs
	out := []section{
		{"daily_average", func(context.Context) (int, int) {
			x.DailyAverage = analysis.DailyAverage(msgs)
			return len(x.DailyAverage), 0
		}},
		{"word_counts", func(context.Context) (int, int) {
			x.WordCounts = analysis.WordCounts(msgs)
			return len(x.WordCounts), 0
		}},
		{"all_prior_latency", func(context.Context) (int, int) {
			x.AllPriorLatency = analysis.AllPriorLatency(msgs)
			return len(x.AllPriorLatency), 0
		}},
		{"social_graph", func(context.Context) (int, int) {
			x.SocialGraph = analysis.SocialGraph(msgs)
			return len(x.SocialGraph), 0
		}},
		{"slang", func(context.Context) (int, int) {
			x.Slang = analysis.LexiconUsage(msgs, b.in.Slang)
			return len(x.Slang), 0
		}},
		{"formality", func(context.Context) (int, int) {
			x.Formality = analysis.Formality(msgs)
			return len(x.Formality), 0
		}},
		{"style", func(context.Context) (int, int) {
			x.Style = analysis.Style(msgs)
			return len(x.Style), 0
		}},
		{"endearment", func(context.Context) (int, int) {
			x.Endearment = analysis.LexiconUsage(msgs, b.in.Endearment)
			return len(x.Endearment), 0
		}},
		{"frustration", func(context.Context) (int, int) {
			x.Frustration = analysis.LexiconUsage(msgs, b.in.Frustration)
			return len(x.Frustration), 0
		}},
		{"quotes", func(context.Context) (int, int) {
			x.Quotes = analysis.TopQuotes(msgs, analysis.TopQuoteCount)
			return len(x.Quotes), 0
		}},
		{"longest", func(context.Context) (int, int) {
			if l, ok := analysis.LongestMessage(msgs); ok {
				x.Longest = &l
				return 1, 0
			}
			return 0, 0
		}},
		{"daily_record", func(context.Context) (int, int) {
			if d, ok := analysis.DailyRecord(msgs); ok {
				x.DailyRecord = &d
				return 1, 0
			}
			return 0, 0
		}},
	}

	clf := b.in.Classifier
	if clf == nil {
		return out
	}
	return append(out,
		section{"spelling", func(ctx context.Context) (int, int) {
			res := analysis.Spelling(ctx, msgs, clf)
			x.Spelling = &res
			b.recordFailures("spelling", res.Failures)
			return len(res.Authors), len(res.Failures)
		}},
		section{"sentiment", func(ctx context.Context) (int, int) {
			res := analysis.Sentiment(ctx, msgs, clf)
			x.Sentiment = &res
			b.recordFailures("sentiment", res.Failures)
			return len(res.Groups), len(res.Failures)
		}},
	)
}

func (b *builder) recordFailures(metric string, failures []analysis.Failure) {
	for _, f := range failures {
		reason := cverrors.ReasonOf(f.Err)
		b.in.Metrics.RecordClassifierFailure(metric, string(reason))
		b.in.Logger.Debug("Classifier failed, message excluded",
			logging.F("metric", metric),
			logging.F("line", f.Line),
			logging.F("reason", string(reason)),
			logging.F("retryable", reason.IsRetryable()),
			logging.Err(f.Err))
	}
	b.in.Metrics.RecordClassifications(metric, len(b.msgs)-len(failures), len(failures))
}

func fileErrors(notices []media.Notice) int {
	n := 0
	for _, notice := range notices {
		if notice.Kind == media.NoticeFileError {
			n++
		}
	}
	return n
}
