package analysis

import (
	"strings"
	"unicode"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

const punctuationMarks = ".,!?;:"

// isTitle reports whether s is title-cased: it has at least one cased
// rune, uppercase runes only follow uncased ones and lowercase runes only
// follow cased ones.
func isTitle(s string) bool {
	cased, prevCased := false, false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

// Formality averages, per author, the percentage of title-cased tokens in
// each message. Messages without tokens are skipped.
func Formality(msgs []transcript.Message) []AuthorMean {
	means := newMeanTracker()
	for _, m := range msgs {
		tokens := strings.Fields(m.Body)
		if len(tokens) == 0 {
			continue
		}
		titled := 0
		for _, tok := range tokens {
			if isTitle(tok) {
				titled++
			}
		}
		means.add(m.Author, float64(titled)/float64(len(tokens))*100)
	}
	return means.means()
}

// StyleEntry is an author's average share of uppercase letters and
// punctuation marks per message, as percentages.
type StyleEntry struct {
	Author      string  `json:"author" yaml:"author"`
	Uppercase   float64 `json:"uppercase" yaml:"uppercase"`
	Punctuation float64 `json:"punctuation" yaml:"punctuation"`
}

// Style computes StyleEntry for every author with a non-empty message.
func Style(msgs []transcript.Message) []StyleEntry {
	upper := newMeanTracker()
	punct := newMeanTracker()
	for _, m := range msgs {
		total, nUpper, nPunct := 0, 0, 0
		for _, r := range m.Body {
			total++
			if unicode.IsUpper(r) {
				nUpper++
			}
			if strings.ContainsRune(punctuationMarks, r) {
				nPunct++
			}
		}
		if total == 0 {
			continue
		}
		upper.add(m.Author, float64(nUpper)/float64(total)*100)
		punct.add(m.Author, float64(nPunct)/float64(total)*100)
	}

	up, pu := upper.means(), punct.means()
	out := make([]StyleEntry, 0, len(up))
	for i := range up {
		out = append(out, StyleEntry{Author: up[i].Author, Uppercase: up[i].Mean, Punctuation: pu[i].Mean})
	}
	return out
}
