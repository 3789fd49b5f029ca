package analysis

import (
	"sort"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// TopEmojiCount is the number of emoji shown in the report.
const TopEmojiCount = 3

// EmojiCount is one emoji with its number of uses.
type EmojiCount struct {
	Emoji string `json:"emoji" yaml:"emoji"`
	Count int    `json:"count" yaml:"count"`
}

// TopEmoji counts emoji grapheme clusters across all bodies and returns
// the n most used. Equal counts are ordered by codepoint.
func TopEmoji(msgs []transcript.Message, n int) []EmojiCount {
	counts := make(map[string]int)
	for _, m := range msgs {
		gr := uniseg.NewGraphemes(m.Body)
		for gr.Next() {
			cluster := gr.Str()
			if gomoji.ContainsEmoji(cluster) {
				counts[cluster]++
			}
		}
	}

	out := make([]EmojiCount, 0, len(counts))
	for e, c := range counts {
		out = append(out, EmojiCount{Emoji: e, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emoji < out[j].Emoji
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
