// Package classify provides the text classifiers used by the sentiment
// and spelling metrics: a local word-list classifier, an OpenAI-backed
// classifier and a cache decorator for either.
package classify

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"unicode"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// Label is a sentiment class.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
	Neutral  Label = "neutral"
)

// Labels lists the sentiment classes in report order.
var Labels = []Label{Positive, Negative, Neutral}

// ParseLabel maps free text to a Label. Anything that is not clearly
// positive or negative is neutral.
func ParseLabel(s string) Label {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "positive"):
		return Positive
	case strings.Contains(s, "negative"):
		return Negative
	default:
		return Neutral
	}
}

// SentimentClassifier labels the sentiment of a single message.
type SentimentClassifier interface {
	Sentiment(ctx context.Context, text string) (Label, error)
}

// SpellChecker counts the distinct misspelled words of a single message.
type SpellChecker interface {
	Misspellings(ctx context.Context, text string) (int, error)
}

// Classifier is both a SentimentClassifier and a SpellChecker.
type Classifier interface {
	SentimentClassifier
	SpellChecker

	// Name identifies the backend in logs and cache keys.
	Name() string
}

// Kind selects a classifier backend.
type Kind string

const (
	KindNone    Kind = "none"
	KindLexicon Kind = "lexicon"
	KindOpenAI  Kind = "openai"
)

// IsValid checks if the kind is a supported value.
func (k Kind) IsValid() bool {
	switch k {
	case KindNone, KindLexicon, KindOpenAI:
		return true
	}
	return false
}

// classificationError wraps err so callers can match ErrClassification.
func classificationError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", cverrors.ErrClassification, op, err)
}

// LoadWordList reads one word per line from path. Blank lines and lines
// starting with # are skipped.
func LoadWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return words, nil
}

// normalizeToken lowercases tok and strips surrounding non-letters. It
// returns false for tokens that are not plain words.
func normalizeToken(tok string) (string, bool) {
	tok = strings.TrimFunc(strings.ToLower(tok), func(r rune) bool { return !unicode.IsLetter(r) })
	if tok == "" || strings.HasPrefix(tok, "http") {
		return "", false
	}
	for _, r := range tok {
		if unicode.IsDigit(r) {
			return "", false
		}
	}
	return tok, true
}
