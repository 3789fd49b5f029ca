package classify

import (
	"context"
	"errors"
	"strings"
)

// Default sentiment vocabularies for the local classifier.
var (
	DefaultPositiveWords = []string{
		"bom", "boa", "ótimo", "ótima", "excelente", "feliz", "alegre", "legal",
		"show", "massa", "top", "lindo", "linda", "maravilhoso", "maravilhosa",
		"incrível", "obrigado", "obrigada", "parabéns", "adoro", "amo", "gostei",
		"sucesso", "perfeito", "perfeita", "demais", "valeu",
	}

	DefaultNegativeWords = []string{
		"ruim", "péssimo", "péssima", "horrível", "triste", "raiva", "odeio",
		"pior", "chato", "chata", "droga", "irritado", "irritada", "cansado",
		"cansada", "estressado", "estressada", "frustrado", "frustrada",
		"chateado", "chateada", "problema", "infelizmente",
	}
)

// errNoDictionary is returned by Misspellings when no dictionary is loaded.
var errNoDictionary = errors.New("no spelling dictionary loaded")

// Lexicon classifies text locally from word lists. Sentiment is the sign
// of positive minus negative word hits; spelling counts distinct words
// missing from the dictionary.
type Lexicon struct {
	positive   map[string]struct{}
	negative   map[string]struct{}
	dictionary map[string]struct{}
}

// LexiconOptions configures a Lexicon classifier. Empty sentiment lists
// fall back to the defaults. A nil Dictionary disables spell checking.
type LexiconOptions struct {
	Positive   []string
	Negative   []string
	Dictionary []string
}

// NewLexicon builds a Lexicon classifier.
func NewLexicon(opts LexiconOptions) *Lexicon {
	if len(opts.Positive) == 0 {
		opts.Positive = DefaultPositiveWords
	}
	if len(opts.Negative) == 0 {
		opts.Negative = DefaultNegativeWords
	}
	l := &Lexicon{
		positive: toSet(opts.Positive),
		negative: toSet(opts.Negative),
	}
	if opts.Dictionary != nil {
		l.dictionary = toSet(opts.Dictionary)
	}
	return l
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}

// Name implements Classifier.
func (l *Lexicon) Name() string {
	return string(KindLexicon)
}

// Sentiment implements SentimentClassifier.
func (l *Lexicon) Sentiment(ctx context.Context, text string) (Label, error) {
	if err := ctx.Err(); err != nil {
		return "", classificationError("sentiment", err)
	}
	score := 0
	for _, tok := range strings.Fields(text) {
		w, ok := normalizeToken(tok)
		if !ok {
			continue
		}
		if _, hit := l.positive[w]; hit {
			score++
		}
		if _, hit := l.negative[w]; hit {
			score--
		}
	}
	switch {
	case score > 0:
		return Positive, nil
	case score < 0:
		return Negative, nil
	default:
		return Neutral, nil
	}
}

// Misspellings implements SpellChecker.
func (l *Lexicon) Misspellings(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, classificationError("spelling", err)
	}
	if l.dictionary == nil {
		return 0, classificationError("spelling", errNoDictionary)
	}
	unknown := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		w, ok := normalizeToken(tok)
		if !ok {
			continue
		}
		if _, known := l.dictionary[w]; !known {
			unknown[w] = struct{}{}
		}
	}
	return len(unknown), nil
}
