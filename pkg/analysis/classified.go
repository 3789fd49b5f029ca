package analysis

import (
	"context"

	"github.com/otherjamesbrown/conversa/pkg/classify"
	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// MaxSentimentInput is the longest prefix, in runes, sent for sentiment.
const MaxSentimentInput = 512

// Failure records a message a classifier could not handle.
type Failure struct {
	Line int
	Err  error
}

// SpellingResult is the per-author misspelling tally.
type SpellingResult struct {
	Authors  []AuthorCount `json:"authors" yaml:"authors"`
	Failures []Failure     `json:"-" yaml:"-"`
}

// Spelling sums, per author, the misspellings reported by checker. A
// message the checker fails on is left out of the tally.
func Spelling(ctx context.Context, msgs []transcript.Message, checker classify.SpellChecker) SpellingResult {
	var res SpellingResult
	c := NewCounter[string]()
	for _, m := range msgs {
		n, err := checker.Misspellings(ctx, m.Body)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Line: m.Line, Err: err})
			continue
		}
		c.Add(m.Author, n)
	}
	res.Authors = authorCounts(c.Entries())
	return res
}

// SentimentGroup lists, for one label, how many messages of each author
// received it.
type SentimentGroup struct {
	Label   classify.Label `json:"label" yaml:"label"`
	Authors []AuthorCount  `json:"authors" yaml:"authors"`
}

// SentimentResult holds one group per label in classify.Labels order.
type SentimentResult struct {
	Groups   []SentimentGroup `json:"groups" yaml:"groups"`
	Failures []Failure        `json:"-" yaml:"-"`
}

// Sentiment labels every message with clf and counts labels per author.
// Bodies are truncated to MaxSentimentInput runes. A message the
// classifier fails on is left out.
func Sentiment(ctx context.Context, msgs []transcript.Message, clf classify.SentimentClassifier) SentimentResult {
	var res SentimentResult
	perLabel := make(map[classify.Label]*Counter[string], len(classify.Labels))
	for _, l := range classify.Labels {
		perLabel[l] = NewCounter[string]()
	}

	for _, m := range msgs {
		label, err := clf.Sentiment(ctx, truncateRunes(m.Body, MaxSentimentInput))
		if err != nil {
			res.Failures = append(res.Failures, Failure{Line: m.Line, Err: err})
			continue
		}
		c, ok := perLabel[label]
		if !ok {
			c = perLabel[classify.Neutral]
		}
		c.Inc(m.Author)
	}

	for _, l := range classify.Labels {
		res.Groups = append(res.Groups, SentimentGroup{Label: l, Authors: authorCounts(perLabel[l].Entries())})
	}
	return res
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
