package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotedText(t *testing.T) {
	tests := []struct {
		body  string
		want  string
		quote bool
	}{
		{`"a vida é bela"`, "a vida é bela", true},
		{`  "espaços"  `, "espaços", true},
		{`"x"`, "x", true},
		{`""`, "", false},
		{`"`, "", false},
		{`"um" e "dois"`, "", false},
		{`sem aspas`, "", false},
		{`"só abre`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got, ok := quotedText(tt.body)
			assert.Equal(t, tt.quote, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopQuotes(t *testing.T) {
	msgs := bodies(`"carpe diem"`, `"hakuna matata"`, `"hakuna matata"`, "normal", `"carpe diem"`, `"yolo"`)

	got := TopQuotes(msgs, 2)
	assert.Equal(t, []QuoteCount{{"carpe diem", 2}, {"hakuna matata", 2}}, got)
}

func TestLongestMessage(t *testing.T) {
	msgs := bodies("curta", "ação!", "maior de todas", "outra de todas")

	got, ok := LongestMessage(msgs)
	require.True(t, ok)
	assert.Equal(t, Longest{Author: "A", Body: "maior de todas", Length: 14}, got)

	_, ok = LongestMessage(nil)
	assert.False(t, ok)
}
