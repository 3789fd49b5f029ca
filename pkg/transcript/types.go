package transcript

import (
	"fmt"
	"time"
)

// Dialect identifies one of the supported transcript line grammars.
type Dialect string

const (
	// DialectAuto selects the dialect by sampling the transcript.
	DialectAuto Dialect = "auto"

	// SecondsDialect matches "[DD/MM/YY, HH:MM:SS] Author: Body".
	SecondsDialect Dialect = "seconds"

	// MinutesDialect matches "DD/MM/YYYY HH:MM - Author: Body".
	MinutesDialect Dialect = "minutes"
)

// IsValid checks if the dialect is a supported value.
func (d Dialect) IsValid() bool {
	switch d {
	case DialectAuto, SecondsDialect, MinutesDialect:
		return true
	}
	return false
}

// String returns the string representation of the dialect.
func (d Dialect) String() string {
	return string(d)
}

// ParseDialect converts a user-supplied value to a Dialect. The empty
// string selects DialectAuto.
func ParseDialect(s string) (Dialect, error) {
	if s == "" {
		return DialectAuto, nil
	}
	d := Dialect(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid dialect %q: must be auto, seconds, or minutes", s)
	}
	return d, nil
}

// Date is a calendar date as written in the transcript.
type Date struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	Day   int        `json:"day" yaml:"day"`
}

// String formats the date as DD/MM/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, int(d.Month), d.Year)
}

// MonthKey formats the date's month as YYYY-MM.
func (d Date) MonthKey() string {
	return fmt.Sprintf("%04d-%02d", d.Year, int(d.Month))
}

// Clock is a time of day. Second is zero for dialects without seconds.
type Clock struct {
	Hour   int `json:"hour" yaml:"hour"`
	Minute int `json:"minute" yaml:"minute"`
	Second int `json:"second" yaml:"second"`
}

// Message is a single parsed transcript line.
type Message struct {
	// Line is the 1-based physical line number in the source.
	Line   int    `json:"line" yaml:"line"`
	Date   Date   `json:"date" yaml:"date"`
	Clock  Clock  `json:"clock" yaml:"clock"`
	Author string `json:"author" yaml:"author"`
	Body   string `json:"body" yaml:"body"`
}

// Timestamp combines the message date and clock in UTC.
func (m Message) Timestamp() time.Time {
	return time.Date(m.Date.Year, m.Date.Month, m.Date.Day, m.Clock.Hour, m.Clock.Minute, m.Clock.Second, 0, time.UTC)
}

// Stats describes how the source lines were consumed.
type Stats struct {
	Lines   int `json:"lines" yaml:"lines"`
	Matched int `json:"matched" yaml:"matched"`
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Transcript is the ordered, read-only sequence of parsed messages.
type Transcript struct {
	messages []Message
	dialect  Dialect
	stats    Stats
}

// New builds a Transcript from already parsed messages.
func New(dialect Dialect, messages []Message) *Transcript {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return &Transcript{
		messages: msgs,
		dialect:  dialect,
		stats:    Stats{Lines: len(msgs), Matched: len(msgs)},
	}
}

// Messages returns a copy of the messages in transcript order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Dialect returns the grammar the transcript was parsed with.
func (t *Transcript) Dialect() Dialect {
	return t.dialect
}

// Stats returns line accounting for the parse.
func (t *Transcript) Stats() Stats {
	return t.stats
}

// Authors returns distinct authors in first-seen order.
func (t *Transcript) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, m := range t.messages {
		if !seen[m.Author] {
			seen[m.Author] = true
			authors = append(authors, m.Author)
		}
	}
	return authors
}

// Span returns the earliest and latest message timestamps. Both are zero
// for an empty transcript.
func (t *Transcript) Span() (first, last time.Time) {
	for _, m := range t.messages {
		ts := m.Timestamp()
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if last.IsZero() || ts.After(last) {
			last = ts
		}
	}
	return first, last
}
