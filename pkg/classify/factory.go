package classify

import (
	"context"
	"fmt"
	"time"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
	"github.com/otherjamesbrown/conversa/pkg/logging"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Options selects and configures a classifier backend.
type Options struct {
	Kind Kind

	OpenAI OpenAIOptions

	// PositiveWordsFile, NegativeWordsFile and DictionaryFile point to
	// word lists for the lexicon backend. Empty sentiment files use the
	// built-in lists; an empty dictionary disables spell checking.
	PositiveWordsFile string
	NegativeWordsFile string
	DictionaryFile    string

	CacheBackend string
	RedisURL     string
	CacheTTL     time.Duration
}

// New builds the configured classifier. It returns a nil Classifier for
// KindNone. The returned close function releases any cache connection and
// is never nil.
func New(ctx context.Context, opts Options, logger logging.Logger) (Classifier, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	var inner Classifier
	switch opts.Kind {
	case KindNone, "":
		return nil, noop, nil
	case KindLexicon:
		lex, err := newLexiconFromFiles(opts)
		if err != nil {
			return nil, noop, err
		}
		inner = lex
	case KindOpenAI:
		oa, err := NewOpenAI(opts.OpenAI)
		if err != nil {
			return nil, noop, err
		}
		inner = oa
	default:
		return nil, noop, fmt.Errorf("%w: unknown classifier %q", cverrors.ErrValidation, opts.Kind)
	}

	switch opts.CacheBackend {
	case CacheNone, "":
		return inner, noop, nil
	case CacheMemory:
		return NewCached(inner, NewMemoryStore(), logger), noop, nil
	case CacheRedis:
		store, err := NewRedisStoreFromURL(ctx, opts.RedisURL, opts.CacheTTL)
		if err != nil {
			// Run uncached when Redis is unreachable.
			logger.Warn("Classifier cache unavailable, continuing without it", logging.Err(err))
			return inner, noop, nil
		}
		return NewCached(inner, store, logger), store.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown cache backend %q", cverrors.ErrValidation, opts.CacheBackend)
	}
}

func newLexiconFromFiles(opts Options) (*Lexicon, error) {
	var lo LexiconOptions
	var err error
	if opts.PositiveWordsFile != "" {
		if lo.Positive, err = LoadWordList(opts.PositiveWordsFile); err != nil {
			return nil, fmt.Errorf("%w: %v", cverrors.ErrValidation, err)
		}
	}
	if opts.NegativeWordsFile != "" {
		if lo.Negative, err = LoadWordList(opts.NegativeWordsFile); err != nil {
			return nil, fmt.Errorf("%w: %v", cverrors.ErrValidation, err)
		}
	}
	if opts.DictionaryFile != "" {
		if lo.Dictionary, err = LoadWordList(opts.DictionaryFile); err != nil {
			return nil, fmt.Errorf("%w: %v", cverrors.ErrValidation, err)
		}
	}
	return NewLexicon(lo), nil
}
