package analysis

import (
	"strings"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// Lexicon is a closed vocabulary matched against whole lowercased tokens.
type Lexicon struct {
	Name  string
	words map[string]struct{}
}

// NewLexicon builds a Lexicon from words. Entries are lowercased and
// deduplicated. Entries containing whitespace are discarded because they
// can never equal a single token.
func NewLexicon(name string, words []string) *Lexicon {
	l := &Lexicon{Name: name, words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || len(strings.Fields(w)) != 1 {
			continue
		}
		l.words[w] = struct{}{}
	}
	return l
}

// Contains reports whether token is in the vocabulary.
func (l *Lexicon) Contains(token string) bool {
	_, ok := l.words[token]
	return ok
}

// Len returns the vocabulary size.
func (l *Lexicon) Len() int {
	return len(l.words)
}

// Default vocabularies.
var (
	DefaultSlang = []string{
		"blz", "vc", "pq", "tb", "td", "q", "kd", "n", "vlw", "vlr", "qq", "eh",
		"krl", "mano", "ta", "tá", "tmj", "vcs", "tbm", "aff", "kkkk", "kkk",
	}

	DefaultEndearment = []string{
		"parabéns", "obrigado", "valeu", "gostei", "amigo", "amiga", "querido",
		"querida", "saudades", "desculpa", "amo", "adoro",
	}

	DefaultFrustration = []string{
		"estressado", "cansado", "chateado", "raiva", "triste", "irritado",
		"frustrado", "pior", "odeio",
	}
)

// LexiconUsage counts, per author, the tokens that belong to lex. Every
// author appears, with zero when they never used the vocabulary.
func LexiconUsage(msgs []transcript.Message, lex *Lexicon) []AuthorCount {
	c := NewCounter[string]()
	for _, m := range msgs {
		n := 0
		for _, tok := range strings.Fields(strings.ToLower(m.Body)) {
			if lex.Contains(tok) {
				n++
			}
		}
		c.Add(m.Author, n)
	}
	return authorCounts(c.Entries())
}
