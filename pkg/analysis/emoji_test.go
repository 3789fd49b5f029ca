package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopEmoji_CountsAndRanks(t *testing.T) {
	msgs := bodies("bom dia 😀😀", "😂 kkk 😂 😂", "👍🏽 valeu", "😀")

	got := TopEmoji(msgs, TopEmojiCount)
	assert.Equal(t, []EmojiCount{
		{Emoji: "😀", Count: 3},
		{Emoji: "😂", Count: 3},
		{Emoji: "👍🏽", Count: 1},
	}, got)
}

func TestTopEmoji_TiesAreDeterministic(t *testing.T) {
	msgs := bodies("🤣 😂 😀 🎉")

	first := TopEmoji(msgs, 3)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, TopEmoji(msgs, 3))
	}
	// Equal counts fall back to codepoint order.
	assert.Equal(t, []EmojiCount{{"🎉", 1}, {"😀", 1}, {"😂", 1}}, first)
}

func TestTopEmoji_IgnoresText(t *testing.T) {
	assert.Empty(t, TopEmoji(bodies("sem emoji aqui", "só texto"), 3))
}
