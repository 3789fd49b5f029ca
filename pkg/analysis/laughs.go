package analysis

import (
	"regexp"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// laughRegex recognizes written laughter in Portuguese chats.
var laughRegex = regexp.MustCompile(`(?i)(k{2,}|(?:ha){2,}|ha{2,}|(?:rs){2,}|rs{2,}|😂|🤣)`)

// IsLaugh reports whether body contains laughter.
func IsLaugh(body string) bool {
	return laughRegex.MatchString(body)
}

// Laughs credits the author of each message that was immediately followed
// by laughter. The point goes to the provoker, never to the laugher.
// Authors are ranked by points, descending.
func Laughs(msgs []transcript.Message) []AuthorCount {
	points := NewCounter[string]()
	for i := 1; i < len(msgs); i++ {
		if IsLaugh(msgs[i].Body) {
			points.Inc(msgs[i-1].Author)
		}
	}
	return authorCounts(points.MostCommon(0))
}
