package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

const (
	// MinWordLength is the shortest token counted as a word, in runes.
	MinWordLength = 4

	// MaxWordCountBody is the longest body, in runes, included in word counts.
	MaxWordCountBody = 500
)

// attachmentMarkers identify placeholder bodies for media and system notices.
var attachmentMarkers = []string{"(arquivo", "<mídia", "whatsapp"}

// AuthorWord is an author's most used word. Found is false when none of
// the author's eligible messages produced a word.
type AuthorWord struct {
	Author string `json:"author" yaml:"author"`
	Word   string `json:"word,omitempty" yaml:"word,omitempty"`
	Count  int    `json:"count" yaml:"count"`
	Found  bool   `json:"found" yaml:"found"`
}

// GroupWord is the most used word across the whole transcript.
type GroupWord struct {
	Word  string `json:"word,omitempty" yaml:"word,omitempty"`
	Count int    `json:"count" yaml:"count"`
	Found bool   `json:"found" yaml:"found"`
}

// eligibleWords lowercases body and returns its words, or false when the
// body is an attachment placeholder.
func eligibleWords(body string) ([]string, bool) {
	lower := strings.ToLower(body)
	for _, marker := range attachmentMarkers {
		if strings.Contains(lower, marker) {
			return nil, false
		}
	}
	var words []string
	for _, tok := range strings.Fields(lower) {
		if utf8.RuneCountInString(tok) >= MinWordLength {
			words = append(words, tok)
		}
	}
	return words, true
}

// TopWordPerAuthor returns each author's most frequent word. Authors whose
// every message is an attachment placeholder are omitted.
func TopWordPerAuthor(msgs []transcript.Message) []AuthorWord {
	perAuthor := make(map[string]*Counter[string])
	var order []string

	for _, m := range msgs {
		words, ok := eligibleWords(m.Body)
		if !ok {
			continue
		}
		c, exists := perAuthor[m.Author]
		if !exists {
			c = NewCounter[string]()
			perAuthor[m.Author] = c
			order = append(order, m.Author)
		}
		for _, w := range words {
			c.Inc(w)
		}
	}

	out := make([]AuthorWord, 0, len(order))
	for _, a := range order {
		entry := AuthorWord{Author: a}
		if top := perAuthor[a].MostCommon(1); len(top) == 1 {
			entry.Word, entry.Count, entry.Found = top[0].Key, top[0].Count, true
		}
		out = append(out, entry)
	}
	return out
}

// TopWord returns the most frequent word of the transcript.
func TopWord(msgs []transcript.Message) GroupWord {
	c := NewCounter[string]()
	for _, m := range msgs {
		words, ok := eligibleWords(m.Body)
		if !ok {
			continue
		}
		for _, w := range words {
			c.Inc(w)
		}
	}
	top := c.MostCommon(1)
	if len(top) == 0 {
		return GroupWord{}
	}
	return GroupWord{Word: top[0].Key, Count: top[0].Count, Found: true}
}

// WordCounts sums whitespace tokens per author over messages no longer
// than MaxWordCountBody runes.
func WordCounts(msgs []transcript.Message) []AuthorCount {
	c := NewCounter[string]()
	for _, m := range msgs {
		if utf8.RuneCountInString(m.Body) > MaxWordCountBody {
			continue
		}
		c.Add(m.Author, len(strings.Fields(m.Body)))
	}
	return authorCounts(c.Entries())
}
