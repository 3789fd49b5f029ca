package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

func TestParseLine_SecondsDialect(t *testing.T) {
	msg, ok := ParseLine(SecondsDialect, "[05/03/24, 14:07:09] Ana Lima: bom dia: tudo bem?")
	require.True(t, ok)

	assert.Equal(t, Date{Year: 2024, Month: time.March, Day: 5}, msg.Date)
	assert.Equal(t, Clock{Hour: 14, Minute: 7, Second: 9}, msg.Clock)
	assert.Equal(t, "Ana Lima", msg.Author)
	// Author stops at the first ": ", the rest belongs to the body.
	assert.Equal(t, "bom dia: tudo bem?", msg.Body)
}

func TestParseLine_MinutesDialect(t *testing.T) {
	msg, ok := ParseLine(MinutesDialect, "31/12/2023 23:59 - Bruno: feliz ano novo 🎉")
	require.True(t, ok)

	assert.Equal(t, Date{Year: 2023, Month: time.December, Day: 31}, msg.Date)
	assert.Equal(t, Clock{Hour: 23, Minute: 59}, msg.Clock)
	assert.Equal(t, "Bruno", msg.Author)
	assert.Equal(t, "feliz ano novo 🎉", msg.Body)
}

func TestParseLine_EmptyBody(t *testing.T) {
	msg, ok := ParseLine(SecondsDialect, "[05/03/24, 14:07:09] Ana: ")
	require.True(t, ok)
	assert.Equal(t, "", msg.Body)
}

func TestParseLine_NonMatching(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		line    string
	}{
		{"blank", SecondsDialect, ""},
		{"continuation", SecondsDialect, "segunda linha da mensagem"},
		{"system notice", MinutesDialect, "31/12/2023 23:59 - Bruno entrou usando o link"},
		{"wrong dialect", SecondsDialect, "31/12/2023 23:59 - Bruno: oi"},
		{"wrong dialect reverse", MinutesDialect, "[05/03/24, 14:07:09] Ana: oi"},
		{"invalid calendar date", SecondsDialect, "[31/02/24, 10:00:00] Ana: oi"},
		{"invalid hour", MinutesDialect, "01/01/2024 25:00 - Ana: oi"},
		{"unknown dialect", Dialect("other"), "[05/03/24, 14:07:09] Ana: oi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, ok := ParseLine(tt.dialect, tt.line)
				assert.False(t, ok)
			})
		})
	}
}

func TestParseLine_TwoDigitYearPivot(t *testing.T) {
	msg, ok := ParseLine(SecondsDialect, "[01/01/68, 00:00:00] A: x")
	require.True(t, ok)
	assert.Equal(t, 2068, msg.Date.Year)

	msg, ok = ParseLine(SecondsDialect, "[01/01/99, 00:00:00] A: x")
	require.True(t, ok)
	assert.Equal(t, 1999, msg.Date.Year)
}

func TestParseLine_Deterministic(t *testing.T) {
	line := "[05/03/24, 14:07:09] Ana: kkkk"
	first, ok1 := ParseLine(SecondsDialect, line)
	second, ok2 := ParseLine(SecondsDialect, line)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestDetectDialect(t *testing.T) {
	seconds := []string{
		"[05/03/24, 14:07:09] Ana: oi",
		"[05/03/24, 14:07:10] Bia: olá",
	}
	minutes := []string{
		"",
		"05/03/2024 14:07 - Ana: oi",
		"continuação",
		"05/03/2024 14:08 - Bia: olá",
	}

	assert.Equal(t, SecondsDialect, DetectDialect(seconds))
	assert.Equal(t, MinutesDialect, DetectDialect(minutes))
	assert.Equal(t, SecondsDialect, DetectDialect(nil))
	assert.Equal(t, SecondsDialect, DetectDialect([]string{"nothing", "matches"}))
}

func TestDetectDialect_SamplesLeadingLinesOnly(t *testing.T) {
	var lines []string
	for i := 0; i < detectSample; i++ {
		lines = append(lines, "[05/03/24, 14:07:09] Ana: oi")
	}
	for i := 0; i < detectSample*2; i++ {
		lines = append(lines, "05/03/2024 14:07 - Ana: oi")
	}
	assert.Equal(t, SecondsDialect, DetectDialect(lines))
}

func TestRead_PreservesOrderAndCountsDropped(t *testing.T) {
	src := strings.Join([]string{
		"[05/03/24, 14:07:09] Ana: primeira",
		"continuação da primeira",
		"[05/03/24, 14:07:10] Bia: segunda",
		"",
		"[05/03/24, 14:07:11] Ana: terceira",
	}, "\n")

	tr, err := Read(strings.NewReader(src), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, SecondsDialect, tr.Dialect())
	require.Equal(t, 3, tr.Len())

	msgs := tr.Messages()
	assert.Equal(t, "primeira", msgs[0].Body)
	assert.Equal(t, "segunda", msgs[1].Body)
	assert.Equal(t, "terceira", msgs[2].Body)
	assert.Equal(t, []int{1, 3, 5}, []int{msgs[0].Line, msgs[1].Line, msgs[2].Line})

	assert.Equal(t, Stats{Lines: 5, Matched: 3, Dropped: 2}, tr.Stats())
	assert.Equal(t, []string{"Ana", "Bia"}, tr.Authors())
}

func TestRead_MessagesReturnsCopy(t *testing.T) {
	tr, err := Read(strings.NewReader("[05/03/24, 14:07:09] Ana: oi\n"), ReadOptions{})
	require.NoError(t, err)

	msgs := tr.Messages()
	msgs[0].Body = "mudou"
	assert.Equal(t, "oi", tr.Messages()[0].Body)
}

func TestRead_StripsCarriageReturnAndBOM(t *testing.T) {
	src := "\ufeff05/03/2024 14:07 - Ana: oi\r\n05/03/2024 14:08 - Bia: olá\r\n"

	tr, err := Read(strings.NewReader(src), ReadOptions{})
	require.NoError(t, err)

	require.Equal(t, 2, tr.Len())
	msgs := tr.Messages()
	assert.Equal(t, "Ana", msgs[0].Author)
	assert.Equal(t, "oi", msgs[0].Body)
	assert.Equal(t, "olá", msgs[1].Body)
}

func TestRead_Latin1(t *testing.T) {
	// "olá" with á encoded as a single ISO-8859-1 byte.
	src := "05/03/2024 14:07 - Jo\xe3o: ol\xe1\n"

	tr, err := Read(strings.NewReader(src), ReadOptions{Encoding: EncodingLatin1})
	require.NoError(t, err)

	require.Equal(t, 1, tr.Len())
	assert.Equal(t, "João", tr.Messages()[0].Author)
	assert.Equal(t, "olá", tr.Messages()[0].Body)
}

func TestRead_PinnedDialect(t *testing.T) {
	src := "[05/03/24, 14:07:09] Ana: oi\n"

	tr, err := Read(strings.NewReader(src), ReadOptions{Dialect: MinutesDialect})
	require.NoError(t, err)
	assert.Equal(t, MinutesDialect, tr.Dialect())
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 1, tr.Stats().Dropped)
}

func TestRead_InvalidOptions(t *testing.T) {
	_, err := Read(strings.NewReader(""), ReadOptions{Encoding: "ebcdic"})
	require.Error(t, err)
	assert.True(t, cverrors.IsValidation(err))

	_, err = Read(strings.NewReader(""), ReadOptions{Dialect: Dialect("bogus")})
	require.Error(t, err)
	assert.True(t, cverrors.IsValidation(err))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.txt"), ReadOptions{})
	require.Error(t, err)
	assert.True(t, cverrors.IsTranscriptUnavailable(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.txt")
	require.NoError(t, os.WriteFile(path, []byte("[05/03/24, 14:07:09] Ana: oi\n"), 0644))

	tr, err := ReadFile(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.Len())
}

func TestTranscript_Span(t *testing.T) {
	tr := New(SecondsDialect, []Message{
		{Date: Date{2024, time.March, 5}, Clock: Clock{10, 0, 0}, Author: "A"},
		{Date: Date{2024, time.March, 4}, Clock: Clock{9, 0, 0}, Author: "B"},
		{Date: Date{2024, time.March, 6}, Clock: Clock{8, 0, 0}, Author: "A"},
	})

	first, last := tr.Span()
	assert.Equal(t, time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2024, time.March, 6, 8, 0, 0, 0, time.UTC), last)

	first, last = New(SecondsDialect, nil).Span()
	assert.True(t, first.IsZero())
	assert.True(t, last.IsZero())
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, DialectAuto, d)

	d, err = ParseDialect("minutes")
	require.NoError(t, err)
	assert.Equal(t, MinutesDialect, d)

	_, err = ParseDialect("hours")
	assert.Error(t, err)
}

func TestDate_Formatting(t *testing.T) {
	d := Date{Year: 2024, Month: time.March, Day: 5}
	assert.Equal(t, "05/03/2024", d.String())
	assert.Equal(t, "2024-03", d.MonthKey())
}
