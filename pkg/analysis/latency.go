package analysis

import (
	"time"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// AdjacentLatency averages, per responder, the seconds elapsed since the
// immediately preceding message whenever the author changes. Authors that
// never answered anyone are omitted.
func AdjacentLatency(msgs []transcript.Message) []AuthorMean {
	means := newMeanTracker()
	for i := 1; i < len(msgs); i++ {
		prev, cur := msgs[i-1], msgs[i]
		if cur.Author == prev.Author {
			continue
		}
		means.add(cur.Author, cur.Timestamp().Sub(prev.Timestamp()).Seconds())
	}
	return means.means()
}

// AllPriorLatency averages, per author, the seconds elapsed since the last
// message of every other author seen so far. Each message contributes one
// sample per other author already present in the transcript.
func AllPriorLatency(msgs []transcript.Message) []AuthorMean {
	means := newMeanTracker()
	last := make(map[string]time.Time)
	var seen []string

	for _, m := range msgs {
		ts := m.Timestamp()
		for _, other := range seen {
			if other == m.Author {
				continue
			}
			means.add(m.Author, ts.Sub(last[other]).Seconds())
		}
		if _, ok := last[m.Author]; !ok {
			seen = append(seen, m.Author)
		}
		last[m.Author] = ts
	}
	return means.means()
}
