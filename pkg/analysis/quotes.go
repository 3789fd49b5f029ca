package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// TopQuoteCount is the number of quotes shown in the report.
const TopQuoteCount = 5

// QuoteCount is a quoted text with the number of times it was sent.
type QuoteCount struct {
	Text  string `json:"text" yaml:"text"`
	Count int    `json:"count" yaml:"count"`
}

// quotedText returns the text inside body when the whole trimmed body is
// wrapped in exactly one pair of double quotes.
func quotedText(body string) (string, bool) {
	s := strings.TrimSpace(body)
	if len(s) < 3 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return "", false
	}
	inner := s[1 : len(s)-1]
	if strings.Contains(inner, `"`) {
		return "", false
	}
	return inner, true
}

// TopQuotes returns the n most repeated quoted messages.
func TopQuotes(msgs []transcript.Message, n int) []QuoteCount {
	c := NewCounter[string]()
	for _, m := range msgs {
		if q, ok := quotedText(m.Body); ok {
			c.Inc(q)
		}
	}
	top := c.MostCommon(n)
	out := make([]QuoteCount, 0, len(top))
	for _, e := range top {
		out = append(out, QuoteCount{Text: e.Key, Count: e.Count})
	}
	return out
}

// Longest is the longest message body.
type Longest struct {
	Author string `json:"author" yaml:"author"`
	Body   string `json:"body" yaml:"body"`
	Length int    `json:"length" yaml:"length"`
}

// LongestMessage returns the message with the most runes; the first one
// wins among equals. It reports false for an empty transcript.
func LongestMessage(msgs []transcript.Message) (Longest, bool) {
	if len(msgs) == 0 {
		return Longest{}, false
	}
	best := Longest{Author: msgs[0].Author, Body: msgs[0].Body, Length: utf8.RuneCountInString(msgs[0].Body)}
	for _, m := range msgs[1:] {
		if n := utf8.RuneCountInString(m.Body); n > best.Length {
			best = Longest{Author: m.Author, Body: m.Body, Length: n}
		}
	}
	return best, true
}
