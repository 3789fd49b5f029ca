package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// parse builds messages from dialect A lines, failing on any dropped line.
func parse(t *testing.T, lines ...string) []transcript.Message {
	t.Helper()
	tr, err := transcript.Read(strings.NewReader(strings.Join(lines, "\n")), transcript.ReadOptions{Dialect: transcript.SecondsDialect})
	require.NoError(t, err)
	require.Equal(t, len(lines), tr.Len(), "every fixture line must parse")
	return tr.Messages()
}

// authored builds one message per author at 09:00:00, with body "x".
func authored(authors ...string) []transcript.Message {
	msgs := make([]transcript.Message, 0, len(authors))
	for i, a := range authors {
		msgs = append(msgs, transcript.Message{
			Line:   i + 1,
			Date:   transcript.Date{Year: 2024, Month: 1, Day: 1},
			Clock:  transcript.Clock{Hour: 9},
			Author: a,
			Body:   "x",
		})
	}
	return msgs
}

// bodies builds messages alternating authors A and B with the given bodies.
func bodies(texts ...string) []transcript.Message {
	msgs := make([]transcript.Message, 0, len(texts))
	for i, b := range texts {
		author := "A"
		if i%2 == 1 {
			author = "B"
		}
		msgs = append(msgs, transcript.Message{
			Line:   i + 1,
			Date:   transcript.Date{Year: 2024, Month: 1, Day: 1},
			Clock:  transcript.Clock{Hour: 9},
			Author: author,
			Body:   b,
		})
	}
	return msgs
}
