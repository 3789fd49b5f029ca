package analysis

import (
	"strings"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// Nobody is the author reported when no one asked a question.
const Nobody = "Ninguém"

// TopQuestioner returns the author with the most messages containing "?".
// When there are none it returns Nobody with a zero count.
func TopQuestioner(msgs []transcript.Message) AuthorCount {
	c := NewCounter[string]()
	for _, m := range msgs {
		if strings.Contains(m.Body, "?") {
			c.Inc(m.Author)
		}
	}
	top := c.MostCommon(1)
	if len(top) == 0 {
		return AuthorCount{Author: Nobody}
	}
	return AuthorCount{Author: top[0].Key, Count: top[0].Count}
}

// Interaction counts how often To spoke right after From.
type Interaction struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Count int    `json:"count" yaml:"count"`
}

type authorPair struct {
	from, to string
}

// SocialGraph ranks every directed pair of consecutive, distinct authors
// by frequency.
func SocialGraph(msgs []transcript.Message) []Interaction {
	c := NewCounter[authorPair]()
	for i := 1; i < len(msgs); i++ {
		prev, cur := msgs[i-1].Author, msgs[i].Author
		if prev != cur {
			c.Inc(authorPair{from: prev, to: cur})
		}
	}

	top := c.MostCommon(0)
	out := make([]Interaction, 0, len(top))
	for _, e := range top {
		out = append(out, Interaction{From: e.Key.from, To: e.Key.to, Count: e.Count})
	}
	return out
}
