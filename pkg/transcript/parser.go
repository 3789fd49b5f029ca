package transcript

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// Line grammars. The author group is non-greedy so it stops at the first ": ".
var (
	// Matches: [31/12/23, 21:04:59] Author: Body
	secondsLineRegex = regexp.MustCompile(`^\[(\d{2}/\d{2}/\d{2}), (\d{2}:\d{2}:\d{2})\] (.*?): (.*)$`)

	// Matches: 31/12/2023 21:04 - Author: Body
	minutesLineRegex = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4}) (\d{2}:\d{2}) - (.*?): (.*)$`)
)

const (
	secondsLayout = "02/01/06 15:04:05"
	minutesLayout = "02/01/2006 15:04"

	// detectSample is how many non-blank lines DetectDialect inspects.
	detectSample = 200

	// maxLineSize bounds a single physical line.
	maxLineSize = 4 * 1024 * 1024
)

// Supported source encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin1"
	EncodingWindows1252 = "windows-1252"
)

// ReadOptions controls how a transcript source is decoded and parsed.
type ReadOptions struct {
	// Dialect pins the grammar. DialectAuto (or empty) samples the source.
	Dialect Dialect

	// Encoding names the source charset. Empty means UTF-8.
	Encoding string
}

// ParseLine matches one physical line against the dialect's grammar. It
// reports false for anything that is not a message header: system
// notices, continuation lines, blank lines and timestamps that do not
// name a real calendar instant. It never fails.
func ParseLine(dialect Dialect, line string) (Message, bool) {
	var re *regexp.Regexp
	var layout string
	switch dialect {
	case SecondsDialect:
		re, layout = secondsLineRegex, secondsLayout
	case MinutesDialect:
		re, layout = minutesLineRegex, minutesLayout
	default:
		return Message{}, false
	}

	matches := re.FindStringSubmatch(line)
	if matches == nil {
		return Message{}, false
	}

	ts, err := time.Parse(layout, matches[1]+" "+matches[2])
	if err != nil {
		return Message{}, false
	}

	return Message{
		Date:   Date{Year: ts.Year(), Month: ts.Month(), Day: ts.Day()},
		Clock:  Clock{Hour: ts.Hour(), Minute: ts.Minute(), Second: ts.Second()},
		Author: matches[3],
		Body:   matches[4],
	}, true
}

// DetectDialect picks the dialect whose grammar matches the most of the
// first non-blank lines. Ties, including no matches at all, resolve to
// SecondsDialect.
func DetectDialect(lines []string) Dialect {
	var seconds, minutes, sampled int
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sampled == detectSample {
			break
		}
		sampled++
		if _, ok := ParseLine(SecondsDialect, line); ok {
			seconds++
		}
		if _, ok := ParseLine(MinutesDialect, line); ok {
			minutes++
		}
	}
	if minutes > seconds {
		return MinutesDialect
	}
	return SecondsDialect
}

// Read decodes r and parses it into a Transcript. Lines that do not match
// the grammar are counted in Stats.Dropped and otherwise ignored.
func Read(r io.Reader, opts ReadOptions) (*Transcript, error) {
	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cverrors.ErrValidation, err)
	}

	lines, err := readLines(transform.NewReader(r, unicode.BOMOverride(dec.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("%w: reading transcript: %v", cverrors.ErrTranscriptUnavailable, err)
	}

	dialect := opts.Dialect
	if dialect == "" || dialect == DialectAuto {
		dialect = DetectDialect(lines)
	}
	if !dialect.IsValid() {
		return nil, fmt.Errorf("%w: invalid dialect %q", cverrors.ErrValidation, dialect)
	}

	t := &Transcript{
		messages: make([]Message, 0, len(lines)),
		dialect:  dialect,
		stats:    Stats{Lines: len(lines)},
	}
	for i, line := range lines {
		msg, ok := ParseLine(dialect, line)
		if !ok {
			t.stats.Dropped++
			continue
		}
		msg.Line = i + 1
		t.messages = append(t.messages, msg)
	}
	t.stats.Matched = len(t.messages)

	return t, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string, opts ReadOptions) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cverrors.ErrTranscriptUnavailable, err)
	}
	defer f.Close()

	return Read(f, opts)
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// decoderFor maps an encoding name to its decoder. The UTF-8 decoder is
// also the fallback used by BOMOverride when no BOM is present.
func decoderFor(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8":
		return unicode.UTF8, nil
	case EncodingLatin1, "iso-8859-1":
		return charmap.ISO8859_1, nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ValidEncoding reports whether name is an accepted encoding.
func ValidEncoding(name string) bool {
	_, err := decoderFor(name)
	return err == nil
}
